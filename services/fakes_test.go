package services

import (
	"context"
	"errors"
	"sync"

	"github.com/alirezabazmara/InterviewApp/models"
)

// fakeGenerator returns scripted responses in order and records the prompts
// it received.
type fakeGenerator struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("fakeGenerator: no responses left")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeGenerator) promptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeSynthesizer struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.err != nil {
		return "", f.err
	}
	return "/audio/fake.mp3", nil
}

// failingResponseLog is a response log whose reads can be made to fail.
type failingResponseLog struct {
	MemoryResponseLog
	failAll bool
}

func (l *failingResponseLog) All(ctx context.Context) ([]models.AnswerResult, error) {
	if l.failAll {
		return nil, errors.New("log read failed")
	}
	return l.MemoryResponseLog.All(ctx)
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}
