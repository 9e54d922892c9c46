package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alirezabazmara/InterviewApp/models"
)

func judgmentJSON(score float64) string {
	return fmt.Sprintf(`{
  "score": %g,
  "explanation": "solid answer",
  "strengths": ["clear"],
  "weaknesses": ["shallow"],
  "suggestion": "add an example"
}`, score)
}

func newTestAnalyzer(gen *fakeGenerator, tr *fakeTranscriber, log ResponseLog) *Analyzer {
	a := NewAnalyzer(gen, tr, log, nil)
	a.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestAnalyzeAnswer(t *testing.T) {
	gen := &fakeGenerator{responses: []string{judgmentJSON(0.75)}}
	log := NewMemoryResponseLog()
	a := newTestAnalyzer(gen, &fakeTranscriber{text: "channels synchronize goroutines"}, log)

	question := models.Question{Text: "What is a channel?", Category: models.CategoryBasic}
	result, err := a.Analyze(context.Background(), question, []byte("audio"))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Answer != "channels synchronize goroutines" {
		t.Errorf("answer = %q", result.Answer)
	}
	if result.Score != 0.75 {
		t.Errorf("score = %v, want 0.75", result.Score)
	}
	if result.Decision != models.DecisionRequestMoreDetail {
		t.Errorf("decision = %q, want %q", result.Decision, models.DecisionRequestMoreDetail)
	}
	if result.Question.Text != question.Text || result.Question.Category != question.Category {
		t.Errorf("question ref = %+v", result.Question)
	}
	if result.Timestamp != "2024-06-01T12:00:00Z" {
		t.Errorf("timestamp = %q", result.Timestamp)
	}

	// The result must have been appended to the response log.
	all, err := log.All(context.Background())
	if err != nil {
		t.Fatalf("log.All failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 logged result, got %d", len(all))
	}
}

func TestAnalyzeClampsScore(t *testing.T) {
	gen := &fakeGenerator{responses: []string{judgmentJSON(1.5)}}
	a := newTestAnalyzer(gen, &fakeTranscriber{text: "answer"}, NewMemoryResponseLog())
	result, err := a.Analyze(context.Background(), models.Question{Text: "Q?"}, []byte("audio"))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Score != 1 {
		t.Errorf("score = %v, want clamped to 1", result.Score)
	}

	gen = &fakeGenerator{responses: []string{judgmentJSON(-0.2)}}
	a = newTestAnalyzer(gen, &fakeTranscriber{text: "answer"}, NewMemoryResponseLog())
	result, err = a.Analyze(context.Background(), models.Question{Text: "Q?"}, []byte("audio"))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Score != 0 {
		t.Errorf("score = %v, want clamped to 0", result.Score)
	}
}

func TestAnalyzeTranscriptionFailure(t *testing.T) {
	transcribeErr := errors.New("whisper down")
	gen := &fakeGenerator{responses: []string{judgmentJSON(0.75)}}
	a := newTestAnalyzer(gen, &fakeTranscriber{err: transcribeErr}, NewMemoryResponseLog())

	if _, err := a.Analyze(context.Background(), models.Question{Text: "Q?"}, []byte("audio")); err == nil {
		t.Fatal("expected transcription error")
	}
	if gen.promptCount() != 0 {
		t.Error("judgment must not run after transcription failure")
	}
}

func TestAnalyzeBadJudgmentPayload(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"not json at all"}}
	a := newTestAnalyzer(gen, &fakeTranscriber{text: "answer"}, NewMemoryResponseLog())

	if _, err := a.Analyze(context.Background(), models.Question{Text: "Q?"}, []byte("audio")); !errors.Is(err, ErrAnalysis) {
		t.Errorf("expected ErrAnalysis, got %v", err)
	}
}

func TestDecisionForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{1.0, models.DecisionAdvanceToResume},
		{0.9, models.DecisionAdvanceToResume},
		{0.89, models.DecisionRequestMoreDetail},
		{0.7, models.DecisionRequestMoreDetail},
		{0.69, models.DecisionSimplerSameTopic},
		{0.5, models.DecisionSimplerSameTopic},
		{0.49, models.DecisionChangeTopic},
		{0, models.DecisionChangeTopic},
	}
	for _, tt := range tests {
		if got := DecisionForScore(tt.score); got != tt.want {
			t.Errorf("DecisionForScore(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
