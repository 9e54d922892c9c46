package services

import "errors"

// Failure categories surfaced to callers. Extraction and generation failures
// abort the attempted phase transition; synthesis failures degrade to a
// question without audio; transcription and analysis failures leave a single
// question unscored without blocking the interview.
var (
	ErrExtraction    = errors.New("resume feature extraction failed")
	ErrGeneration    = errors.New("question generation failed")
	ErrTranscription = errors.New("audio transcription failed")
	ErrAnalysis      = errors.New("answer analysis failed")
	ErrSynthesis     = errors.New("speech synthesis failed")
	ErrPersistence   = errors.New("response log persistence failed")

	ErrInvalidPhase   = errors.New("operation not allowed in current phase")
	ErrTurnIncomplete = errors.New("current question turn is not complete")
	ErrStaleSession   = errors.New("session was restarted")
	ErrNoCapture      = errors.New("no active answer capture")
)
