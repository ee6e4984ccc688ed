package enum

import (
	"fmt"
	"strings"
)

// ── Group A: Order streams ──

// Domain identifies one of the two independent order streams.
type Domain string

const (
	DomainRoom    Domain = "ROOM"
	DomainOutdoor Domain = "OUTDOOR"
)

// Domains lists every stream in display order.
var Domains = []Domain{DomainRoom, DomainOutdoor}

// ParseDomain accepts the path form used by the local API ("room", "outdoor")
// as well as the canonical upper-case value.
func ParseDomain(s string) (Domain, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(DomainRoom):
		return DomainRoom, nil
	case string(DomainOutdoor):
		return DomainOutdoor, nil
	}
	return "", fmt.Errorf("unknown order domain %q", s)
}

// Slug is the lower-case form used in URLs.
func (d Domain) Slug() string { return strings.ToLower(string(d)) }

// ── Group B: Feed tabs ──

// Tab is a UI-selectable status filter. It is independent of the text the
// backend uses for statuses; see Vocabulary.
type Tab string

const (
	TabActive     Tab = "ACTIVE"
	TabProcessing Tab = "PROCESSING"
	TabCompleted  Tab = "COMPLETED"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabActive, TabProcessing, TabCompleted}

func ParseTab(s string) (Tab, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(TabActive):
		return TabActive, nil
	case string(TabProcessing):
		return TabProcessing, nil
	case string(TabCompleted):
		return TabCompleted, nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// ── Group C: List-level status vocabularies (backend revisions) ──

const (
	StatusOrdered    = "Ordered"
	StatusProcessing = "Processing"
	StatusCompleted  = "Completed"
)

const (
	LegacyStatusPending   = "PENDING"
	LegacyStatusAccepted  = "ACCEPTED"
	LegacyStatusDelivered = "DELIVERED"
)

// Vocabulary maps each Tab to the exact status text one backend revision
// emits. A domain is bound to exactly one vocabulary; statuses from another
// revision never match.
type Vocabulary struct {
	Name   string
	labels map[Tab]string
}

var (
	LiveVocabulary = Vocabulary{
		Name: "live",
		labels: map[Tab]string{
			TabActive:     StatusOrdered,
			TabProcessing: StatusProcessing,
			TabCompleted:  StatusCompleted,
		},
	}
	LegacyVocabulary = Vocabulary{
		Name: "legacy",
		labels: map[Tab]string{
			TabActive:     LegacyStatusPending,
			TabProcessing: LegacyStatusAccepted,
			TabCompleted:  LegacyStatusDelivered,
		},
	}
)

// Label returns the status text for tab, or "" for an unknown tab.
func (v Vocabulary) Label(tab Tab) string {
	return v.labels[tab]
}

func ParseVocabulary(s string) (Vocabulary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case LiveVocabulary.Name:
		return LiveVocabulary, nil
	case LegacyVocabulary.Name:
		return LegacyVocabulary, nil
	}
	return Vocabulary{}, fmt.Errorf("unknown status vocabulary %q", s)
}

// ── Group D: Detail-level statuses (status selector) ──

const (
	DetailStatusActive     = "ACTIVE"
	DetailStatusProcessing = "PROCESSING"
	DetailStatusComplete   = "COMPLETE"
	DetailStatusCancel     = "CANCEL"
)

// SelectableStatuses are the values offered by the detail status selector.
var SelectableStatuses = []string{DetailStatusProcessing, DetailStatusComplete, DetailStatusCancel}

func IsSelectableStatus(s string) bool {
	for _, v := range SelectableStatuses {
		if v == s {
			return true
		}
	}
	return false
}
