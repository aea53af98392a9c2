// Package triage derives an advisory urgency tier from appointment free-text
// fields. The tier orders dashboard review queues and never drives a state
// transition.
package triage

import "strings"

// Urgency tiers. First matching tier wins; keywords are not accumulated.
const (
	TierRoutine  = 1
	TierElevated = 3
	TierCritical = 5
)

var highSeverityKeywords = []string{
	"chest pain",
	"shortness of breath",
	"breathless",
	"unconscious",
	"stroke",
	"paralysis",
	"severe bleeding",
	"heavy bleeding",
	"severe pain",
	"collapse",
}

var mediumSeverityKeywords = []string{
	"fever",
	"high fever",
	"infection",
	"severe",
	"dizziness",
	"vomit",
	"vomiting",
	"dehydration",
	"loss of consciousness",
	"urgent",
}

// Score evaluates the chief complaint, an optional secondary reason, and any
// diagnosis text. A high-severity keyword anywhere yields TierCritical
// regardless of co-occurring medium keywords.
func Score(reason, secondaryReason, diagnosis string) int {
	text := strings.ToLower(reason + " " + secondaryReason + " " + diagnosis)

	for _, k := range highSeverityKeywords {
		if strings.Contains(text, k) {
			return TierCritical
		}
	}
	for _, k := range mediumSeverityKeywords {
		if strings.Contains(text, k) {
			return TierElevated
		}
	}
	return TierRoutine
}
