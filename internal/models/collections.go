package models

import (
	"fmt"
	"strings"
)

// CollectionRule maps actions whose tag contains Keyword to the collection
// at Path. Rules are checked in order; put the more specific keyword first
// ("general_announcement" before "announcement").
type CollectionRule struct {
	Keyword string
	Path    string
}

// CollectionTable resolves action tags to storage collection paths. It is
// built once at startup and injected into the services that need it; adding
// an entity kind means adding a rule, not editing engine code.
type CollectionTable struct {
	rules []CollectionRule
}

func NewCollectionTable(rules []CollectionRule) *CollectionTable {
	return &CollectionTable{rules: rules}
}

// DefaultCollectionTable covers the built-in entity kinds.
func DefaultCollectionTable() *CollectionTable {
	return NewCollectionTable([]CollectionRule{
		{Keyword: "subject", Path: "subjects"},
		{Keyword: "event", Path: "events"},
		{Keyword: "fixed_timetable", Path: "timetable_slots"},
		{Keyword: "fixed_slot", Path: "timetable_slots"},
		{Keyword: "general_announcement", Path: "general_announcements"},
		{Keyword: "announcement", Path: "daily_announcements"},
		{Keyword: "settings", Path: "settings"},
	})
}

// WithRules returns a copy with extra rules checked before the existing ones,
// so deployment-specific rules can override the defaults.
func (t *CollectionTable) WithRules(rules []CollectionRule) *CollectionTable {
	merged := make([]CollectionRule, 0, len(rules)+len(t.rules))
	merged = append(merged, rules...)
	merged = append(merged, t.rules...)
	return NewCollectionTable(merged)
}

// Resolve returns the collection path for an action tag. An unmatched tag is
// an error: extending the action taxonomy requires extending the table, and
// the rollback engine must fail rather than guess a collection.
func (t *CollectionTable) Resolve(tag string) (string, error) {
	for _, r := range t.rules {
		if strings.Contains(tag, r.Keyword) {
			return r.Path, nil
		}
	}
	return "", fmt.Errorf("no collection rule matches action %q", tag)
}
