package models

import "strings"

const (
	CategoryBasic       = "basic"
	CategoryResumeBased = "resume-based"
)

// Question is a single interview question. AudioURL is attached after speech
// synthesis and the question is not mutated again afterwards.
type Question struct {
	Text       string `json:"text" bson:"text"`
	Category   string `json:"category" bson:"category"`
	Difficulty string `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	Type       string `json:"type,omitempty" bson:"type,omitempty"`
	AudioURL   string `json:"audioUrl,omitempty" bson:"audioUrl,omitempty"`
}

// DedupKey returns the identity used for uniqueness checks across batches
// and across sessions for the same topic.
func (q Question) DedupKey() string {
	return DedupKey(q.Text)
}

// DedupKey normalizes question text into its uniqueness key.
func DedupKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
