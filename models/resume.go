package models

// Experience is a single work history entry taken from a resume.
type Experience struct {
	Title        string   `json:"title" bson:"title"`
	Duration     string   `json:"duration" bson:"duration"`
	Technologies []string `json:"technologies" bson:"technologies"`
}

// FeatureSet holds the structured facts extracted from a resume. It is
// immutable for the lifetime of an interview session.
type FeatureSet struct {
	Skills         []string     `json:"skills" bson:"skills"`
	Experience     []Experience `json:"experience" bson:"experience"`
	Education      []string     `json:"education" bson:"education"`
	Certifications []string     `json:"certifications" bson:"certifications"`
}

// ScoreBreakdown is the per-category point split of a resume score.
// Experience tops out at 35, skills at 30, projects at 25 and complexity
// at 10, so the sum is always within [0,100].
type ScoreBreakdown struct {
	Experience int `json:"experience" bson:"experience"`
	Skills     int `json:"skills" bson:"skills"`
	Projects   int `json:"projects" bson:"projects"`
	Complexity int `json:"complexity" bson:"complexity"`
}

// ScoreDetails exposes the raw counts behind a score for auditing.
type ScoreDetails struct {
	ExperienceYears  int      `json:"experienceYears" bson:"experienceYears"`
	RelevantSkills   []string `json:"relevantSkills" bson:"relevantSkills"`
	RelevantProjects int      `json:"relevantProjects" bson:"relevantProjects"`
	ComplexProjects  int      `json:"complexProjects" bson:"complexProjects"`
}

// ResumeScore is the result of scoring a resume against an interview topic.
type ResumeScore struct {
	Score     int            `json:"score" bson:"score"`
	Level     string         `json:"level" bson:"level"`
	Breakdown ScoreBreakdown `json:"breakdown" bson:"breakdown"`
	Details   ScoreDetails   `json:"details" bson:"details"`
}
