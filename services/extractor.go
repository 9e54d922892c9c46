package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alirezabazmara/InterviewApp/models"
	"go.uber.org/zap"
)

const extractionPrompt = `Extract key features from the resume and return them in the following JSON format:
{
  "skills": ["skill1", "skill2", ...],
  "experience": [
    {
      "title": "job title",
      "duration": "duration",
      "technologies": ["tech1", "tech2", ...]
    }
  ],
  "education": ["education1", "education2", ...],
  "certifications": ["cert1", "cert2", ...]
}
Provide ONLY the JSON output without additional text or markdown formatting.

Resume:
`

// FeatureExtractor derives a structured FeatureSet from raw resume text via
// the generation service.
type FeatureExtractor struct {
	generator TextGenerator
	logger    *zap.Logger
}

func NewFeatureExtractor(generator TextGenerator, logger *zap.Logger) *FeatureExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeatureExtractor{generator: generator, logger: logger}
}

// Extract requests feature extraction for the resume text. Any service or
// parse failure is reported as an extraction error.
func (e *FeatureExtractor) Extract(ctx context.Context, resumeText string) (models.FeatureSet, error) {
	if resumeText == "" {
		return models.FeatureSet{}, fmt.Errorf("%w: empty resume text", ErrExtraction)
	}

	raw, err := e.generator.GenerateContent(ctx, extractionPrompt+resumeText)
	if err != nil {
		return models.FeatureSet{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var features models.FeatureSet
	if err := json.Unmarshal([]byte(cleanModelOutput(raw)), &features); err != nil {
		return models.FeatureSet{}, fmt.Errorf("%w: invalid feature payload: %v", ErrExtraction, err)
	}

	e.logger.Info("extracted resume features",
		zap.Int("skills", len(features.Skills)),
		zap.Int("experience", len(features.Experience)),
	)
	return features, nil
}
