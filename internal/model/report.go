package model

import "time"

// ReviewSuggestion is a classification that cleared the review floor but not
// the auto-apply threshold. It is surfaced for manual confirmation together
// with the runner-up suggestions for context.
type ReviewSuggestion struct {
	Transaction Transaction
	Suggested   Suggestion
	Considered  []Suggestion
}

// BatchReport summarizes one batch auto-classification run.
type BatchReport struct {
	StartedAt    time.Time
	RunID        string
	Suggestions  []ReviewSuggestion
	Duration     time.Duration
	AutoCount    int
	SkippedCount int
	FailedCount  int
}
