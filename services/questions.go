package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/alirezabazmara/InterviewApp/metrics"
	"github.com/alirezabazmara/InterviewApp/models"
	"go.uber.org/zap"
)

const (
	DefaultTopicQuestionCount  = 10
	DefaultResumeQuestionCount = 7
)

var listNumberPrefix = regexp.MustCompile(`^\d+[.)]\s*`)

// QuestionService generates non-repeating question sets through the
// generation service and attaches synthesized audio to each question.
type QuestionService struct {
	generator   TextGenerator
	synthesizer SpeechSynthesizer
	asked       AskedQuestionStore
	logger      *zap.Logger
	topicCount  int
	resumeCount int
}

func NewQuestionService(generator TextGenerator, synthesizer SpeechSynthesizer, asked AskedQuestionStore, logger *zap.Logger) *QuestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionService{
		generator:   generator,
		synthesizer: synthesizer,
		asked:       asked,
		logger:      logger,
		topicCount:  DefaultTopicQuestionCount,
		resumeCount: DefaultResumeQuestionCount,
	}
}

// WithCounts overrides the target batch sizes.
func (s *QuestionService) WithCounts(topicCount, resumeCount int) *QuestionService {
	if topicCount > 0 {
		s.topicCount = topicCount
	}
	if resumeCount > 0 {
		s.resumeCount = resumeCount
	}
	return s
}

// GenerateTopicQuestions produces up to the configured number of unique
// basic questions for the topic. Questions already asked for this topic in
// earlier sessions are excluded; duplicates inside the batch are dropped
// silently. One backfill round covers a shortfall; a shortfall remaining
// after backfill is accepted.
func (s *QuestionService) GenerateTopicQuestions(ctx context.Context, topic string) ([]models.Question, error) {
	previouslyAsked, err := s.asked.Asked(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("%w: asked-question store: %v", ErrGeneration, err)
	}

	raw, err := s.generator.GenerateContent(ctx, topicQuestionPrompt(topic, s.topicCount, previouslyAsked))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	batch := parseQuestions(raw, models.CategoryBasic)
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: no questions generated", ErrGeneration)
	}

	exclusion := make(map[string]bool, len(previouslyAsked))
	for _, text := range previouslyAsked {
		exclusion[models.DedupKey(text)] = true
	}

	accepted := dedupeQuestions(batch, exclusion)

	if len(accepted) < s.topicCount {
		accepted = s.backfill(ctx, topic, accepted, previouslyAsked, exclusion)
	}
	if len(accepted) > s.topicCount {
		accepted = accepted[:s.topicCount]
	}

	texts := make([]string, len(accepted))
	for i, q := range accepted {
		texts[i] = q.Text
	}
	if err := s.asked.Add(ctx, topic, texts); err != nil {
		s.logger.Warn("failed to record asked questions", zap.String("topic", topic), zap.Error(err))
	}

	metrics.QuestionsGenerated.WithLabelValues(models.CategoryBasic).Add(float64(len(accepted)))
	s.logger.Info("generated topic questions",
		zap.String("topic", topic),
		zap.Int("count", len(accepted)),
		zap.Int("previouslyAsked", len(previouslyAsked)),
	)

	s.attachAudio(ctx, accepted)
	return accepted, nil
}

// backfill issues one follow-up request seeded with the enlarged exclusion
// set. Backfill failures are not fatal; the shortfall is kept.
func (s *QuestionService) backfill(ctx context.Context, topic string, accepted []models.Question, previouslyAsked []string, exclusion map[string]bool) []models.Question {
	needed := s.topicCount - len(accepted)

	excluded := make([]string, 0, len(previouslyAsked)+len(accepted))
	excluded = append(excluded, previouslyAsked...)
	for _, q := range accepted {
		excluded = append(excluded, q.Text)
	}

	raw, err := s.generator.GenerateContent(ctx, backfillQuestionPrompt(topic, needed, excluded))
	if err != nil {
		s.logger.Warn("backfill generation failed", zap.String("topic", topic), zap.Error(err))
		return accepted
	}

	extra := dedupeQuestions(parseQuestions(raw, models.CategoryBasic), exclusion)
	return append(accepted, extra...)
}

// GenerateResumeQuestions produces the resume-phase question set from the
// extracted features. Single request, best effort, no dedup loop.
func (s *QuestionService) GenerateResumeQuestions(ctx context.Context, features models.FeatureSet, topic string) ([]models.Question, error) {
	raw, err := s.generator.GenerateContent(ctx, resumeQuestionPrompt(features, topic, s.resumeCount))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	questions := parseQuestions(raw, models.CategoryResumeBased)
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions generated", ErrGeneration)
	}
	for i := range questions {
		questions[i].Type = "technical"
	}
	if len(questions) > s.resumeCount {
		questions = questions[:s.resumeCount]
	}

	metrics.QuestionsGenerated.WithLabelValues(models.CategoryResumeBased).Add(float64(len(questions)))
	s.logger.Info("generated resume questions", zap.String("topic", topic), zap.Int("count", len(questions)))

	s.attachAudio(ctx, questions)
	return questions, nil
}

// attachAudio synthesizes speech for each question concurrently. The calls
// are independent; a failure leaves that question without audio and playback
// is skipped for it downstream.
func (s *QuestionService) attachAudio(ctx context.Context, questions []models.Question) {
	if s.synthesizer == nil {
		return
	}

	var wg sync.WaitGroup
	for i := range questions {
		wg.Add(1)
		go func(q *models.Question) {
			defer wg.Done()
			url, err := s.synthesizer.Synthesize(ctx, q.Text)
			if err != nil {
				metrics.SynthesisFailures.Inc()
				s.logger.Warn("speech synthesis failed", zap.String("question", q.Text), zap.Error(err))
				return
			}
			q.AudioURL = url
		}(&questions[i])
	}
	wg.Wait()
}

// dedupeQuestions keeps the first question per dedup key, skipping keys
// already present in the exclusion set. Accepted keys are added to the set,
// so it grows across successive calls.
func dedupeQuestions(batch []models.Question, exclusion map[string]bool) []models.Question {
	unique := make([]models.Question, 0, len(batch))
	for _, q := range batch {
		key := q.DedupKey()
		if key == "" {
			continue
		}
		if exclusion[key] {
			metrics.DuplicateQuestionsDiscarded.Inc()
			continue
		}
		exclusion[key] = true
		unique = append(unique, q)
	}
	return unique
}

// parseQuestions turns raw model output into questions. It first tries the
// requested JSON shape and falls back to line parsing, tolerating markdown
// numbering, stray quotes and fragments of JSON field syntax.
func parseQuestions(raw string, category string) []models.Question {
	cleaned := cleanModelOutput(raw)

	var payload struct {
		Questions []models.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil && len(payload.Questions) > 0 {
		out := make([]models.Question, 0, len(payload.Questions))
		for _, q := range payload.Questions {
			q.Text = strings.TrimSpace(q.Text)
			if q.Text == "" {
				continue
			}
			if q.Category == "" {
				q.Category = category
			}
			out = append(out, q)
		}
		return out
	}

	var bare []models.Question
	if err := json.Unmarshal([]byte(cleaned), &bare); err == nil && len(bare) > 0 {
		out := make([]models.Question, 0, len(bare))
		for _, q := range bare {
			q.Text = strings.TrimSpace(q.Text)
			if q.Text == "" {
				continue
			}
			if q.Category == "" {
				q.Category = category
			}
			out = append(out, q)
		}
		return out
	}

	var out []models.Question
	for _, line := range strings.Split(cleaned, "\n") {
		text := cleanQuestionLine(line)
		if text == "" || !strings.Contains(text, "?") {
			continue
		}
		out = append(out, models.Question{Text: text, Category: category})
	}
	return out
}

func cleanQuestionLine(line string) string {
	text := strings.TrimSpace(line)
	text = listNumberPrefix.ReplaceAllString(text, "")
	text = strings.TrimPrefix(text, "- ")
	text = strings.TrimPrefix(text, "* ")
	if idx := strings.Index(text, `"text":`); idx >= 0 {
		text = text[idx+len(`"text":`):]
	}
	text = strings.Trim(text, ` ",{}`)
	return strings.TrimSpace(text)
}

func topicQuestionPrompt(topic string, count int, previouslyAsked []string) string {
	excluded, _ := json.Marshal(previouslyAsked)
	return fmt.Sprintf(`You are an interviewer. Generate unique and simple questions that are easy to understand and answer. Avoid repetition.

Generate %d simple and basic interview questions about %s.
Requirements:
- Questions should be very basic and straightforward
- Focus on fundamental concepts
- Make questions short and easy to understand
- No complex scenarios or advanced topics
- Avoid any questions similar to these previous questions: %s
- Each question should be unique and different from others
- Questions should cover different aspects of the topic

Return the response in this exact format:
{
  "questions": [
    {
      "text": "Question text here",
      "difficulty": "basic",
      "category": "basic"
    }
  ]
}`, count, topic, string(excluded))
}

func backfillQuestionPrompt(topic string, count int, excluded []string) string {
	excludedJSON, _ := json.Marshal(excluded)
	return fmt.Sprintf(`Generate %d more unique and simple interview questions about %s.
Requirements:
- Questions must be completely different from these existing questions: %s
- Keep questions basic and straightforward
- Focus on different aspects of the topic

Return the response in this exact format:
{
  "questions": [
    {
      "text": "Question text here",
      "difficulty": "basic",
      "category": "basic"
    }
  ]
}`, count, topic, string(excludedJSON))
}

func resumeQuestionPrompt(features models.FeatureSet, topic string, count int) string {
	var sb strings.Builder
	sb.WriteString("Skills: ")
	sb.WriteString(strings.Join(features.Skills, ", "))
	sb.WriteString("\nExperience:\n")
	for _, exp := range features.Experience {
		sb.WriteString(fmt.Sprintf("%s (%s): %s\n", exp.Title, exp.Duration, strings.Join(exp.Technologies, ", ")))
	}

	return fmt.Sprintf(`You are an expert technical interviewer. Based on the following resume features and the topic %q, generate exactly %d technical interview questions.
The questions should be specific to the candidate's skills mentioned in the resume.
Each question should be concise and end with a question mark.
Return one question per line.

Resume features:
%s`, topic, count, sb.String())
}
