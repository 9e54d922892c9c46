package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alirezabazmara/InterviewApp/metrics"
	"github.com/alirezabazmara/InterviewApp/models"
	"go.uber.org/zap"
)

// Analyzer transcribes a recorded answer, asks the generation service for a
// rubric-based judgment and appends the result to the response log.
type Analyzer struct {
	generator   TextGenerator
	transcriber Transcriber
	log         ResponseLog
	logger      *zap.Logger
	now         func() time.Time
}

func NewAnalyzer(generator TextGenerator, transcriber Transcriber, log ResponseLog, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		generator:   generator,
		transcriber: transcriber,
		log:         log,
		logger:      logger,
		now:         time.Now,
	}
}

// Analyze judges one spoken answer to the given question. The transcription
// failing or coming back empty leaves the question unscored; a judgment call
// or payload failure does the same. Both are surfaced but non-fatal to the
// session.
func (a *Analyzer) Analyze(ctx context.Context, question models.Question, audio []byte) (models.AnswerResult, error) {
	if a.transcriber == nil {
		return models.AnswerResult{}, fmt.Errorf("%w: no transcriber configured", ErrTranscription)
	}
	answer, err := a.transcriber.Transcribe(ctx, audio, "answer.webm")
	if err != nil {
		metrics.TranscriptionFailures.Inc()
		return models.AnswerResult{}, err
	}

	raw, err := a.generator.GenerateContent(ctx, analysisPrompt(question.Text, answer))
	if err != nil {
		return models.AnswerResult{}, fmt.Errorf("%w: %v", ErrAnalysis, err)
	}

	var judgment struct {
		Score       float64  `json:"score"`
		Explanation string   `json:"explanation"`
		Strengths   []string `json:"strengths"`
		Weaknesses  []string `json:"weaknesses"`
		Suggestion  string   `json:"suggestion"`
	}
	if err := json.Unmarshal([]byte(cleanModelOutput(raw)), &judgment); err != nil {
		return models.AnswerResult{}, fmt.Errorf("%w: invalid judgment payload: %v", ErrAnalysis, err)
	}
	if judgment.Score < 0 {
		judgment.Score = 0
	}
	if judgment.Score > 1 {
		judgment.Score = 1
	}

	result := models.AnswerResult{
		Question: models.QuestionRef{
			Text:     question.Text,
			Category: question.Category,
		},
		Answer:      answer,
		Score:       judgment.Score,
		Explanation: judgment.Explanation,
		Strengths:   judgment.Strengths,
		Weaknesses:  judgment.Weaknesses,
		Suggestion:  judgment.Suggestion,
		Decision:    DecisionForScore(judgment.Score),
		Timestamp:   a.now().UTC().Format(time.RFC3339),
	}

	metrics.AnswersAnalyzed.WithLabelValues(result.Decision).Inc()
	a.logger.Info("answer analyzed",
		zap.String("question", question.Text),
		zap.Float64("score", result.Score),
		zap.String("decision", result.Decision),
	)

	if err := a.log.Append(ctx, result); err != nil {
		return result, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return result, nil
}

// DecisionForScore maps a judgment score onto the follow-up decision. The
// decision is recorded with the result but never alters question flow.
func DecisionForScore(score float64) string {
	switch {
	case score >= 0.9:
		return models.DecisionAdvanceToResume
	case score >= 0.7:
		return models.DecisionRequestMoreDetail
	case score >= 0.5:
		return models.DecisionSimplerSameTopic
	default:
		return models.DecisionChangeTopic
	}
}

func analysisPrompt(question, answer string) string {
	return fmt.Sprintf(`You are an expert technical interviewer. Analyze interview answers objectively and provide detailed feedback.

Question: %q
Answer: %q

Analyze the answer based on the following criteria:
1. Relevance to the question
2. Technical accuracy
3. Depth of knowledge
4. Practical experience demonstration
5. Communication clarity

Return the analysis in this exact JSON format:
{
  "score": <number between 0 and 1>,
  "explanation": "<detailed explanation>",
  "strengths": ["<point 1>", "<point 2>", ...],
  "weaknesses": ["<point 1>", "<point 2>", ...],
  "suggestion": "<suggestion for improvement>"
}
Provide ONLY the JSON output without additional text or markdown formatting.`, question, answer)
}
