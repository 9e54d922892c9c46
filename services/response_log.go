package services

import (
	"context"
	"sync"

	"github.com/alirezabazmara/InterviewApp/models"
)

// ResponseLog is the append-only store of answer judgments. It is read in
// full for the final report and truncated to empty on restart.
type ResponseLog interface {
	Append(ctx context.Context, result models.AnswerResult) error
	All(ctx context.Context) ([]models.AnswerResult, error)
	Status(ctx context.Context) (count int, last *models.AnswerResult, err error)
	Clear(ctx context.Context) error
}

// MemoryResponseLog keeps results in memory. Used by tests and by
// deployments without a database configured.
type MemoryResponseLog struct {
	mu      sync.Mutex
	results []models.AnswerResult
}

func NewMemoryResponseLog() *MemoryResponseLog {
	return &MemoryResponseLog{}
}

func (l *MemoryResponseLog) Append(_ context.Context, result models.AnswerResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, result)
	return nil
}

func (l *MemoryResponseLog) All(_ context.Context) ([]models.AnswerResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.AnswerResult, len(l.results))
	copy(out, l.results)
	return out, nil
}

func (l *MemoryResponseLog) Status(_ context.Context) (int, *models.AnswerResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.results) == 0 {
		return 0, nil, nil
	}
	last := l.results[len(l.results)-1]
	return len(l.results), &last, nil
}

func (l *MemoryResponseLog) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = nil
	return nil
}
