package services

import (
	"lifeline/models"
	"strings"
)

// PriorityClassifier assigns a triage priority to a new case.
type PriorityClassifier interface {
	Classify(cause string, vitals models.Vitals) string
}

var (
	criticalKeywords = []string{"cardiac", "heart attack", "stroke", "unconscious", "bleeding", "breathing", "choking", "seizure"}
	highKeywords     = []string{"fracture", "burn", "accident", "crash", "fall"}
	mediumKeywords   = []string{"fever", "sprain", "minor", "cut", "rash"}
)

// RuleClassifier grades by vitals first, then by keywords in the cause.
// Anything it cannot place is treated as High.
type RuleClassifier struct{}

func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

func (RuleClassifier) Classify(cause string, vitals models.Vitals) string {
	if vitals.Spo2 != nil && *vitals.Spo2 > 0 && *vitals.Spo2 < 90 {
		return models.PriorityCritical
	}
	if vitals.HeartRate != nil && *vitals.HeartRate > 0 && (*vitals.HeartRate < 40 || *vitals.HeartRate > 140) {
		return models.PriorityCritical
	}

	c := strings.ToLower(cause)
	switch {
	case containsAny(c, criticalKeywords):
		return models.PriorityCritical
	case containsAny(c, highKeywords):
		return models.PriorityHigh
	case containsAny(c, mediumKeywords):
		return models.PriorityMedium
	}
	return models.PriorityHigh
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
