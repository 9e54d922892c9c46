package models

// Decision values attached to an analyzed answer. They are advisory only:
// question flow always follows the pre-generated sequence.
const (
	DecisionAdvanceToResume   = "Next question from resume"
	DecisionRequestMoreDetail = "Answer was good but could be more detailed"
	DecisionSimplerSameTopic  = "Ask a simpler question in the same topic"
	DecisionChangeTopic       = "Change topic after two consecutive weak answers"
)

// QuestionRef is the trimmed-down question identity stored with an answer.
type QuestionRef struct {
	Text     string `json:"text" bson:"text"`
	Category string `json:"category" bson:"category"`
}

// AnswerResult is the judgment of one spoken answer. Created exactly once per
// answered question, appended to the response log and never mutated.
type AnswerResult struct {
	Question    QuestionRef `json:"question" bson:"question"`
	Answer      string      `json:"answer" bson:"answer"`
	Score       float64     `json:"score" bson:"score"`
	Explanation string      `json:"explanation" bson:"explanation"`
	Strengths   []string    `json:"strengths" bson:"strengths"`
	Weaknesses  []string    `json:"weaknesses" bson:"weaknesses"`
	Suggestion  string      `json:"suggestion" bson:"suggestion"`
	Decision    string      `json:"decision" bson:"decision"`
	Timestamp   string      `json:"timestamp" bson:"timestamp"`
}
