package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuestionsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_questions_generated_total",
		Help: "Questions accepted into interview batches",
	}, []string{"category"})

	DuplicateQuestionsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_duplicate_questions_discarded_total",
		Help: "Generated questions dropped by deduplication",
	})

	SynthesisFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_speech_synthesis_failures_total",
		Help: "Per-question speech synthesis failures",
	})

	AnswersAnalyzed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_answers_analyzed_total",
		Help: "Answers scored by the analyzer",
	}, []string{"decision"})

	TranscriptionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_transcription_failures_total",
		Help: "Answer transcriptions that failed or came back empty",
	})

	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_sessions_started_total",
		Help: "Interview sessions successfully started",
	})
)
