package services

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/alirezabazmara/InterviewApp/models"
)

var (
	yearPattern = regexp.MustCompile(`(19|20)\d{2}`)
	rangeSplit  = regexp.MustCompile(`[–-]`)

	seniorityKeywords = []string{
		"senior", "lead", "architect", "manager",
		"supervisor", "director", "head", "chief",
	}
)

// ScoreResume rates a resume feature set against an interview topic. The
// result is deterministic for a given feature set, topic and calendar year.
func ScoreResume(features models.FeatureSet, topic string) models.ResumeScore {
	return scoreResumeAtYear(features, topic, time.Now().Year())
}

func scoreResumeAtYear(features models.FeatureSet, topic string, currentYear int) models.ResumeScore {
	var breakdown models.ScoreBreakdown

	years := relevantExperienceYears(features.Experience, topic, currentYear)
	breakdown.Experience = experiencePoints(years)

	relevantSkills := make([]string, 0, len(features.Skills))
	for _, skill := range features.Skills {
		if isRelevant(skill, topic) {
			relevantSkills = append(relevantSkills, skill)
		}
	}
	breakdown.Skills = capPoints(len(relevantSkills)*6, 30)

	relevantProjects := 0
	for _, exp := range features.Experience {
		if experienceRelevant(exp, topic) {
			relevantProjects++
		}
	}
	breakdown.Projects = capPoints(relevantProjects*5, 25)

	complexProjects := 0
	for _, exp := range features.Experience {
		if isComplexProject(exp, features.Skills) {
			complexProjects++
		}
	}
	breakdown.Complexity = capPoints(complexProjects*4, 10)

	total := breakdown.Experience + breakdown.Skills + breakdown.Projects + breakdown.Complexity

	return models.ResumeScore{
		Score:     total,
		Level:     levelForScore(total),
		Breakdown: breakdown,
		Details: models.ScoreDetails{
			ExperienceYears:  years,
			RelevantSkills:   relevantSkills,
			RelevantProjects: relevantProjects,
			ComplexProjects:  complexProjects,
		},
	}
}

func levelForScore(total int) string {
	switch {
	case total >= 71:
		return "Senior"
	case total >= 41:
		return "Mid-level"
	default:
		return "Junior"
	}
}

func experiencePoints(years int) int {
	switch {
	case years >= 15:
		return 35
	case years >= 10:
		return 28
	case years >= 8:
		return 20
	case years >= 5:
		return 16
	case years >= 3:
		return 8
	default:
		return 3
	}
}

func capPoints(points, limit int) int {
	if points > limit {
		return limit
	}
	return points
}

// relevantExperienceYears sums the time spans of topic-relevant experience
// entries. A span starting and ending in the same year counts as half a
// year; an unparseable duration contributes nothing.
func relevantExperienceYears(experience []models.Experience, topic string, currentYear int) int {
	total := 0.0
	for _, exp := range experience {
		if !experienceRelevant(exp, topic) {
			continue
		}
		total += durationYears(exp.Duration, currentYear)
	}
	return int(math.Round(total))
}

func durationYears(duration string, currentYear int) float64 {
	parts := rangeSplit.Split(duration, -1)
	if len(parts) != 2 {
		return 0
	}

	start, ok := parseYear(parts[0], currentYear)
	if !ok {
		return 0
	}
	end, ok := parseYear(parts[1], currentYear)
	if !ok {
		return 0
	}

	years := end - start
	switch {
	case years == 0:
		return 0.5
	case years < 0:
		return 0
	default:
		return float64(years)
	}
}

func parseYear(s string, currentYear int) (int, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "current") || strings.EqualFold(s, "present") {
		return currentYear, true
	}
	match := yearPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	year := 0
	for _, r := range match {
		year = year*10 + int(r-'0')
	}
	return year, true
}

// isRelevant reports whether a skill string relates to the topic. The check
// is a permissive case-insensitive containment heuristic: whole-string
// containment in either direction, token-level containment between the
// skill's words and the topic's words, or containment of any
// parenthetical-stripped segment.
func isRelevant(s, topic string) bool {
	sLower := strings.ToLower(strings.TrimSpace(s))
	topicLower := strings.ToLower(strings.TrimSpace(topic))
	if sLower == "" || topicLower == "" {
		return false
	}

	if strings.Contains(sLower, topicLower) || strings.Contains(topicLower, sLower) {
		return true
	}

	topicWords := strings.Fields(topicLower)
	for _, word := range strings.Fields(sLower) {
		for _, topicWord := range topicWords {
			if strings.Contains(word, topicWord) || strings.Contains(topicWord, word) {
				return true
			}
		}
	}

	for _, segment := range strings.FieldsFunc(sLower, func(r rune) bool { return r == '(' || r == ')' }) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if strings.Contains(segment, topicLower) || strings.Contains(topicLower, segment) {
			return true
		}
	}

	return false
}

// experienceRelevant reports whether an experience entry relates to the
// topic through its title, any of its technologies, or any title word.
func experienceRelevant(exp models.Experience, topic string) bool {
	titleLower := strings.ToLower(exp.Title)
	topicLower := strings.ToLower(strings.TrimSpace(topic))
	if topicLower == "" {
		return false
	}

	if strings.Contains(titleLower, topicLower) || strings.Contains(topicLower, titleLower) {
		return true
	}

	for _, tech := range exp.Technologies {
		techLower := strings.ToLower(tech)
		if strings.Contains(techLower, topicLower) || strings.Contains(topicLower, techLower) {
			return true
		}
	}

	for _, word := range strings.Fields(titleLower) {
		if strings.Contains(topicLower, word) || strings.Contains(word, topicLower) {
			return true
		}
	}

	return false
}

// isComplexProject flags experience entries with a seniority title, a broad
// technology stack, or at least three technologies matching the candidate's
// own skill list.
func isComplexProject(exp models.Experience, skills []string) bool {
	titleLower := strings.ToLower(exp.Title)
	for _, keyword := range seniorityKeywords {
		if strings.Contains(titleLower, keyword) {
			return true
		}
	}

	if len(exp.Technologies) >= 5 {
		return true
	}

	matching := 0
	for _, tech := range exp.Technologies {
		techLower := strings.ToLower(tech)
		for _, skill := range skills {
			skillLower := strings.ToLower(skill)
			if strings.Contains(skillLower, techLower) || strings.Contains(techLower, skillLower) {
				matching++
				break
			}
		}
	}
	return matching >= 3
}
