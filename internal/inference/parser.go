package inference

import (
	"encoding/json"
	"sort"
	"strings"
)

// fallbackConfidence is assigned when the response is not valid JSON but
// plainly names a known category.
const fallbackConfidence = 0.75

// parseResponse extracts a category and confidence from the service's
// free-text output. categories maps known names to IDs; a response naming
// anything outside the known set is "no match", never an error. Returns
// ok=false when nothing usable could be extracted.
func parseResponse(content string, categories map[string]int64) (category string, categoryID int64, confidence float64, ok bool) {
	content = strings.TrimSpace(content)

	// Preferred format: {"category": "Mat", "confidence": 0.9}, possibly
	// surrounded by prose or a markdown fence.
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			var parsed struct {
				Category   *string `json:"category"`
				Confidence float64 `json:"confidence"`
			}
			if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err == nil {
				if parsed.Category == nil || *parsed.Category == "" {
					// Explicit "uncertain" answer.
					return "", 0, 0, false
				}
				if name, id, known := lookupCategory(*parsed.Category, categories); known {
					return name, id, clamp(parsed.Confidence), true
				}
				return "", 0, 0, false
			}
		}
	}

	// Fallback: the response mentions a known category name directly.
	// Names are scanned in sorted order so repeated calls agree when the
	// response happens to mention more than one.
	upper := strings.ToUpper(content)
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.Contains(upper, strings.ToUpper(name)) {
			return name, categories[name], fallbackConfidence, true
		}
	}

	return "", 0, 0, false
}

// lookupCategory resolves a response name against the catalog, tolerating
// case drift, and returns the catalog's canonical spelling.
func lookupCategory(name string, categories map[string]int64) (string, int64, bool) {
	if id, ok := categories[name]; ok {
		return name, id, true
	}
	for known, id := range categories {
		if strings.EqualFold(known, name) {
			return known, id, true
		}
	}
	return "", 0, false
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
