package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExtractFeatures(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"```json\n" + featuresJSON + "\n```"}}
	e := NewFeatureExtractor(gen, nil)

	features, err := e.Extract(context.Background(), resumeText)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(features.Skills) != 2 {
		t.Errorf("skills = %v", features.Skills)
	}
	if len(features.Experience) != 1 {
		t.Fatalf("experience = %v", features.Experience)
	}
	if features.Experience[0].Title != "Backend Developer" {
		t.Errorf("title = %q", features.Experience[0].Title)
	}
	if len(features.Education) != 1 {
		t.Errorf("education = %v", features.Education)
	}

	// The resume text is part of the prompt.
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], resumeText) {
		t.Error("prompt does not carry the resume text")
	}
}

func TestExtractFeaturesErrors(t *testing.T) {
	e := NewFeatureExtractor(&fakeGenerator{}, nil)
	if _, err := e.Extract(context.Background(), ""); !errors.Is(err, ErrExtraction) {
		t.Errorf("empty resume: expected ErrExtraction, got %v", err)
	}

	e = NewFeatureExtractor(&fakeGenerator{err: errors.New("model down")}, nil)
	if _, err := e.Extract(context.Background(), resumeText); !errors.Is(err, ErrExtraction) {
		t.Errorf("service failure: expected ErrExtraction, got %v", err)
	}

	e = NewFeatureExtractor(&fakeGenerator{responses: []string{"not json"}}, nil)
	if _, err := e.Extract(context.Background(), resumeText); !errors.Is(err, ErrExtraction) {
		t.Errorf("bad payload: expected ErrExtraction, got %v", err)
	}
}
