package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/alirezabazmara/InterviewApp/metrics"
	"github.com/alirezabazmara/InterviewApp/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransitionAnnouncement is spoken between the topic and resume phases.
const TransitionAnnouncement = "Now, let's move on and ask a few questions about your resume and work experience."

// InterviewService owns a single interview session and drives its phase
// transitions. Long-running external calls execute outside the lock and
// commit against the session version, so results arriving after a restart
// are dropped.
type InterviewService struct {
	extractor   *FeatureExtractor
	questions   *QuestionService
	analyzer    *Analyzer
	synthesizer SpeechSynthesizer
	log         ResponseLog
	coordinator *AudioCoordinator
	logger      *zap.Logger

	mu      sync.Mutex
	session models.Session
}

// NewInterviewService wires the interview engine together.
func NewInterviewService(
	extractor *FeatureExtractor,
	questions *QuestionService,
	analyzer *Analyzer,
	synthesizer SpeechSynthesizer,
	log ResponseLog,
	coordinator *AudioCoordinator,
	logger *zap.Logger,
) *InterviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &InterviewService{
		extractor:   extractor,
		questions:   questions,
		analyzer:    analyzer,
		synthesizer: synthesizer,
		log:         log,
		coordinator: coordinator,
		logger:      logger,
	}
	s.session = freshSession()
	return s
}

func freshSession() models.Session {
	return models.Session{
		Version: uuid.NewString(),
		Phase:   models.PhaseIdle,
	}
}

// Snapshot returns a copy of the current session state.
func (s *InterviewService) Snapshot() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *InterviewService) snapshotLocked() models.Session {
	snap := s.session
	snap.Questions = append([]models.Question(nil), s.session.Questions...)
	snap.Results = append([]models.AnswerResult(nil), s.session.Results...)
	return snap
}

// Start runs the Idle → TopicQuestions transition: response log cleared,
// features extracted, resume scored and the topic question set generated, in
// that order. Any failure leaves the session Idle.
func (s *InterviewService) Start(ctx context.Context, resumeText, topic string) (models.Session, error) {
	s.mu.Lock()
	if s.session.Phase != models.PhaseIdle {
		s.mu.Unlock()
		return models.Session{}, fmt.Errorf("%w: interview already in progress", ErrInvalidPhase)
	}
	version := s.session.Version
	s.mu.Unlock()

	if err := s.log.Clear(ctx); err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	features, err := s.extractor.Extract(ctx, resumeText)
	if err != nil {
		return models.Session{}, err
	}

	score := ScoreResume(features, topic)

	questions, err := s.questions.GenerateTopicQuestions(ctx, topic)
	if err != nil {
		return models.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Version != version || s.session.Phase != models.PhaseIdle {
		return models.Session{}, ErrStaleSession
	}

	s.session.Topic = topic
	s.session.Phase = models.PhaseTopicQuestions
	s.session.Questions = questions
	s.session.CurrentIndex = 0
	s.session.ResumeFeatures = &features
	s.session.ResumeScore = &score
	s.session.AnnouncementURL = ""
	s.session.Results = nil
	s.coordinator.Reset()

	metrics.SessionsStarted.Inc()
	s.logger.Info("interview started",
		zap.String("topic", topic),
		zap.Int("questions", len(questions)),
		zap.Int("resumeScore", score.Score),
		zap.String("level", score.Level),
	)
	return s.snapshotLocked(), nil
}

// Advance moves to the next question. Past the last topic question it runs
// the Transitioning step (resume question generation plus the spoken
// announcement); past the last resume question it completes the interview.
// Advancing requires the current question's turn to be complete.
func (s *InterviewService) Advance(ctx context.Context) (models.Session, error) {
	s.mu.Lock()

	switch s.session.Phase {
	case models.PhaseCompleted:
		// Terminal until restart: further advance calls are no-ops.
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil

	case models.PhaseTopicQuestions:
		idx := s.session.CurrentIndex
		if !s.coordinator.TurnComplete(idx) {
			s.mu.Unlock()
			return models.Session{}, ErrTurnIncomplete
		}
		if idx < len(s.session.Questions)-1 {
			s.session.CurrentIndex = idx + 1
			snap := s.snapshotLocked()
			s.mu.Unlock()
			return snap, nil
		}
		return s.transitionToResume(ctx)

	case models.PhaseResumeQuestions:
		idx := s.session.CurrentIndex
		if !s.coordinator.TurnComplete(idx) {
			s.mu.Unlock()
			return models.Session{}, ErrTurnIncomplete
		}
		if idx < len(s.session.Questions)-1 {
			s.session.CurrentIndex = idx + 1
			snap := s.snapshotLocked()
			s.mu.Unlock()
			return snap, nil
		}
		snap, err := s.completeLocked(ctx)
		s.mu.Unlock()
		return snap, err

	default:
		s.mu.Unlock()
		return models.Session{}, fmt.Errorf("%w: phase %s", ErrInvalidPhase, s.session.Phase)
	}
}

// transitionToResume is entered with the lock held and on the last topic
// question. On generation failure the session stays on that question so the
// user can retry the advance.
func (s *InterviewService) transitionToResume(ctx context.Context) (models.Session, error) {
	s.session.Phase = models.PhaseTransitioning
	version := s.session.Version
	features := *s.session.ResumeFeatures
	topic := s.session.Topic
	s.mu.Unlock()

	questions, err := s.questions.GenerateResumeQuestions(ctx, features, topic)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.session.Version == version && s.session.Phase == models.PhaseTransitioning {
			s.session.Phase = models.PhaseTopicQuestions
		}
		return models.Session{}, err
	}

	announcementURL := ""
	if s.synthesizer != nil {
		url, synthErr := s.synthesizer.Synthesize(ctx, TransitionAnnouncement)
		if synthErr != nil {
			s.logger.Warn("transition announcement synthesis failed", zap.Error(synthErr))
		} else {
			announcementURL = url
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Version != version || s.session.Phase != models.PhaseTransitioning {
		return models.Session{}, ErrStaleSession
	}

	s.session.Phase = models.PhaseResumeQuestions
	s.session.Questions = questions
	s.session.CurrentIndex = 0
	s.session.AnnouncementURL = announcementURL
	s.coordinator.Reset()

	s.logger.Info("entered resume phase", zap.Int("questions", len(questions)))
	return s.snapshotLocked(), nil
}

// completeLocked reads the results first and commits the Completed phase
// only on success, so a failed read leaves the prior phase intact and the
// advance retryable.
func (s *InterviewService) completeLocked(ctx context.Context) (models.Session, error) {
	results, err := s.log.All(ctx)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.session.Phase = models.PhaseCompleted
	s.session.Results = results
	s.logger.Info("interview completed", zap.Int("results", len(results)))
	return s.snapshotLocked(), nil
}

// Finish ends the interview from the caller's side and returns the
// accumulated results.
func (s *InterviewService) Finish(ctx context.Context) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Phase == models.PhaseIdle {
		return models.Session{}, fmt.Errorf("%w: no interview in progress", ErrInvalidPhase)
	}
	s.coordinator.Cancel()
	return s.completeLocked(ctx)
}

// SubmitAnswer analyzes a whole recorded answer blob for the current
// question. The turn is marked complete even when analysis fails, so an
// unscored question never blocks the interview.
func (s *InterviewService) SubmitAnswer(ctx context.Context, audio []byte) (models.AnswerResult, error) {
	s.mu.Lock()
	if s.session.Phase != models.PhaseTopicQuestions && s.session.Phase != models.PhaseResumeQuestions {
		s.mu.Unlock()
		return models.AnswerResult{}, fmt.Errorf("%w: phase %s", ErrInvalidPhase, s.session.Phase)
	}
	question, ok := s.session.CurrentQuestion()
	if !ok {
		s.mu.Unlock()
		return models.AnswerResult{}, fmt.Errorf("%w: no current question", ErrInvalidPhase)
	}
	index := s.session.CurrentIndex
	version := s.session.Version
	s.mu.Unlock()

	return s.analyzeAnswer(ctx, version, index, question, audio)
}

func (s *InterviewService) analyzeAnswer(ctx context.Context, version string, index int, question models.Question, audio []byte) (models.AnswerResult, error) {
	result, err := s.analyzer.Analyze(ctx, question, audio)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Version != version {
		return models.AnswerResult{}, ErrStaleSession
	}
	s.coordinator.CompleteTurn(index)
	if err != nil {
		return models.AnswerResult{}, err
	}
	s.session.Results = append(s.session.Results, result)
	return result, nil
}

// BeginTurn starts the audio turn for the question at index and returns the
// URL to play, or "" when playback is skipped. A capture still open from a
// previous turn is stopped and its buffered audio analyzed.
func (s *InterviewService) BeginTurn(index int) (string, error) {
	s.mu.Lock()
	if s.session.Phase != models.PhaseTopicQuestions && s.session.Phase != models.PhaseResumeQuestions {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: phase %s", ErrInvalidPhase, s.session.Phase)
	}
	if index != s.session.CurrentIndex {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: question %d is not current", ErrInvalidPhase, index)
	}
	question := s.session.Questions[index]
	version := s.session.Version
	flushQuestion := s.session.Questions
	s.mu.Unlock()

	directive := s.coordinator.BeginTurn(index, question.AudioURL != "")
	if directive.Flush != nil && directive.Flush.Index >= 0 && directive.Flush.Index < len(flushQuestion) {
		flushed := *directive.Flush
		prev := flushQuestion[flushed.Index]
		go func() {
			if _, err := s.analyzeAnswer(context.Background(), version, flushed.Index, prev, flushed.Audio); err != nil {
				s.logger.Warn("flushed capture analysis failed", zap.Int("index", flushed.Index), zap.Error(err))
			}
		}()
	}

	if directive.Play {
		return question.AudioURL, nil
	}
	return "", nil
}

// PlaybackEnded reports that the client finished (or failed) playing the
// question's audio. Capture opens after the settle delay. Frames for a
// question that is not current are ignored so a stray index can never mark a
// future turn played.
func (s *InterviewService) PlaybackEnded(index int) {
	s.mu.Lock()
	current := s.session.Phase == models.PhaseTopicQuestions || s.session.Phase == models.PhaseResumeQuestions
	current = current && index == s.session.CurrentIndex
	s.mu.Unlock()
	if !current {
		return
	}
	s.coordinator.PlaybackEnded(index)
}

// SetCaptureNotifier registers the callback invoked when a capture window
// opens. Pass nil to detach.
func (s *InterviewService) SetCaptureNotifier(fn func(index int)) {
	s.coordinator.SetCaptureNotifier(fn)
}

// CancelCapture drops any in-flight capture without marking the turn done.
func (s *InterviewService) CancelCapture() {
	s.coordinator.Cancel()
}

// PushChunk buffers a streamed capture chunk.
func (s *InterviewService) PushChunk(index int, chunk []byte) error {
	return s.coordinator.PushChunk(index, chunk)
}

// StopAndAnalyze ends the streaming capture for the question and runs the
// analyzer over the concatenated audio.
func (s *InterviewService) StopAndAnalyze(ctx context.Context, index int) (models.AnswerResult, error) {
	audio, err := s.coordinator.StopCapture(index)
	if err != nil {
		return models.AnswerResult{}, err
	}

	s.mu.Lock()
	if index < 0 || index >= len(s.session.Questions) {
		s.mu.Unlock()
		return models.AnswerResult{}, fmt.Errorf("%w: question %d out of range", ErrInvalidPhase, index)
	}
	question := s.session.Questions[index]
	version := s.session.Version
	s.mu.Unlock()

	return s.analyzeAnswer(ctx, version, index, question, audio)
}

// Restart is the destructive reset: in-flight capture dropped, response log
// truncated and a fresh Idle session installed under a new version.
func (s *InterviewService) Restart(ctx context.Context) (models.Session, error) {
	s.coordinator.Cancel()
	s.coordinator.Reset()

	clearErr := s.log.Clear(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = freshSession()
	s.logger.Info("interview restarted")
	if clearErr != nil {
		return s.snapshotLocked(), fmt.Errorf("%w: %v", ErrPersistence, clearErr)
	}
	return s.snapshotLocked(), nil
}

// Results returns the full response log.
func (s *InterviewService) Results(ctx context.Context) ([]models.AnswerResult, error) {
	results, err := s.log.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return results, nil
}

// Status returns the response log size and its latest record.
func (s *InterviewService) Status(ctx context.Context) (int, *models.AnswerResult, error) {
	count, last, err := s.log.Status(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return count, last, nil
}
