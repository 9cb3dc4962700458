// Package model defines the core domain models used throughout the application.
package model

import "fmt"

// ClassificationMethod indicates which strategy produced a classification.
type ClassificationMethod string

// Classification method constants, in descending trust order.
const (
	MethodRule    ClassificationMethod = "rule"
	MethodLearned ClassificationMethod = "learned"
	MethodML      ClassificationMethod = "ml"
	MethodLLM     ClassificationMethod = "llm"
	MethodManual  ClassificationMethod = "manual"
)

// Valid reports whether m is a recognized classification method.
func (m ClassificationMethod) Valid() bool {
	switch m {
	case MethodRule, MethodLearned, MethodML, MethodLLM, MethodManual:
		return true
	}
	return false
}

// Suggestion is a single strategy's answer for one transaction. Suggestions
// are transient; they are consumed by the orchestrator and never persisted.
type Suggestion struct {
	Category   string
	Method     ClassificationMethod
	Rationale  string
	CategoryID int64
	Confidence float64
}

// Validate ensures the suggestion carries sane data.
func (s *Suggestion) Validate() error {
	if s.Category == "" {
		return fmt.Errorf("suggestion has no category")
	}
	if !s.Method.Valid() {
		return fmt.Errorf("unknown classification method %q", s.Method)
	}
	if s.Confidence < 0.0 || s.Confidence > 1.0 {
		return fmt.Errorf("confidence must be in [0,1], got %.2f", s.Confidence)
	}
	return nil
}

// Result is the orchestrator's final answer for one transaction: the winning
// suggestion plus every suggestion that was considered, in the order the
// strategies produced them, kept for audit and debugging.
type Result struct {
	Winner     Suggestion
	Considered []Suggestion
}

// Resolved reports whether any strategy produced a winning suggestion. An
// unresolved result leaves the transaction uncategorized.
func (r *Result) Resolved() bool {
	return r.Winner.Category != ""
}
