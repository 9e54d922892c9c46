package services

import (
	"context"
	"sync"

	"github.com/alirezabazmara/InterviewApp/models"
)

// AskedQuestionStore remembers which question texts have already been asked
// for a topic, across sessions, so new batches never repeat them. Retention
// is unbounded; Reset and Clear exist so a pruning policy can be applied
// operationally.
type AskedQuestionStore interface {
	Asked(ctx context.Context, topic string) ([]string, error)
	Add(ctx context.Context, topic string, texts []string) error
	Reset(ctx context.Context, topic string) error
	Clear(ctx context.Context) error
}

// MemoryAskedStore is the in-process AskedQuestionStore.
type MemoryAskedStore struct {
	mu     sync.RWMutex
	topics map[string][]string
	seen   map[string]map[string]bool
}

func NewMemoryAskedStore() *MemoryAskedStore {
	return &MemoryAskedStore{
		topics: make(map[string][]string),
		seen:   make(map[string]map[string]bool),
	}
}

func (s *MemoryAskedStore) Asked(_ context.Context, topic string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	texts := s.topics[topic]
	out := make([]string, len(texts))
	copy(out, texts)
	return out, nil
}

func (s *MemoryAskedStore) Add(_ context.Context, topic string, texts []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.seen[topic]
	if keys == nil {
		keys = make(map[string]bool)
		s.seen[topic] = keys
	}
	for _, text := range texts {
		key := models.DedupKey(text)
		if key == "" || keys[key] {
			continue
		}
		keys[key] = true
		s.topics[topic] = append(s.topics[topic], text)
	}
	return nil
}

func (s *MemoryAskedStore) Reset(_ context.Context, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.topics, topic)
	delete(s.seen, topic)
	return nil
}

func (s *MemoryAskedStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = make(map[string][]string)
	s.seen = make(map[string]map[string]bool)
	return nil
}
