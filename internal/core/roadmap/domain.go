// Package roadmap contains the pure business logic for roadmap progression.
// This is part of the Functional Core - no I/O, only pure functions.
package roadmap

import "strings"

// Domain is a life area a roadmap targets.
type Domain string

const (
	DomainHealth        Domain = "HEALTH"
	DomainFinance       Domain = "FINANCE"
	DomainLearning      Domain = "LEARNING"
	DomainRelationships Domain = "RELATIONSHIPS"
	DomainMental        Domain = "MENTAL"
)

var domainLabels = map[Domain]string{
	DomainHealth:        "Health & Fitness",
	DomainFinance:       "Personal Finance",
	DomainLearning:      "Learning & Skills",
	DomainRelationships: "Relationships",
	DomainMental:        "Mental Growth",
}

// Domains returns every supported domain in display order.
func Domains() []Domain {
	return []Domain{DomainHealth, DomainFinance, DomainLearning, DomainRelationships, DomainMental}
}

// ParseDomain normalizes raw input. Matching is case-insensitive.
func ParseDomain(raw string) (Domain, bool) {
	d := Domain(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := domainLabels[d]; !ok {
		return "", false
	}
	return d, true
}

// Label returns the human-readable name used in prompts and CLI output.
func (d Domain) Label() string {
	if label, ok := domainLabels[d]; ok {
		return label
	}
	return string(d)
}
