package engine

import "github.com/oskarw/kassa/internal/model"

// DefaultFastPathThreshold is the pattern confidence at which the slow path
// is skipped.
const DefaultFastPathThreshold = 0.85

// Router decides, per transaction, whether the slow strategies are consulted
// at all. Most transactions are clear-cut and the pattern classifier resolves
// them locally in microseconds; the external service call is reserved for the
// ambiguous remainder. The decision is a pure function of the pattern
// result's confidence and the configured threshold.
type Router struct {
	FastPathThreshold float64
}

// NewRouter creates a router, substituting the default threshold for a
// non-positive one.
func NewRouter(threshold float64) Router {
	if threshold <= 0 {
		threshold = DefaultFastPathThreshold
	}
	return Router{FastPathThreshold: threshold}
}

// ShouldEscalate reports whether the slow path is needed given the pattern
// classifier's outcome. A nil suggestion always escalates.
func (r Router) ShouldEscalate(pattern *model.Suggestion) bool {
	return pattern == nil || pattern.Confidence < r.FastPathThreshold
}
