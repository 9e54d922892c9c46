package models

// Phase is the interview session phase.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseTopicQuestions  Phase = "topic"
	PhaseTransitioning   Phase = "transitioning"
	PhaseResumeQuestions Phase = "resume"
	PhaseCompleted       Phase = "completed"
)

// Session is the state of a single interview run. Version changes on every
// restart so that results of in-flight calls from a previous run can be
// detected as stale and dropped.
type Session struct {
	Version         string         `json:"version"`
	Topic           string         `json:"topic"`
	Phase           Phase          `json:"phase"`
	Questions       []Question     `json:"questions"`
	CurrentIndex    int            `json:"currentIndex"`
	ResumeFeatures  *FeatureSet    `json:"resumeFeatures,omitempty"`
	ResumeScore     *ResumeScore   `json:"resumeScore,omitempty"`
	AnnouncementURL string         `json:"announcementUrl,omitempty"`
	Results         []AnswerResult `json:"results,omitempty"`
}

// CurrentQuestion returns the question at the current index, if any.
func (s Session) CurrentQuestion() (Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}
