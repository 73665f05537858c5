package models

import "time"

// WordPairStatus is the lifecycle state of a catalog entry
type WordPairStatus string

const (
	// WordPairActive entries can be studied
	WordPairActive WordPairStatus = "active"
	// WordPairRetired entries are kept for history but never served
	WordPairRetired WordPairStatus = "retired"
)

// Tiers lists the supported CEFR difficulty tiers
var Tiers = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

// IsValidTier reports whether tier is one of Tiers
func IsValidTier(tier string) bool {
	for _, t := range Tiers {
		if t == tier {
			return true
		}
	}
	return false
}

// UsageExample is a sentence pair showing a word in context
type UsageExample struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// WordPair represents a catalog entry pairing a source term with its translation
type WordPair struct {
	ID            int            `json:"id"`
	SourceTerm    string         `json:"sourceTerm"`
	TargetTerm    string         `json:"targetTerm"`
	AudioURL      string         `json:"audioUrl,omitempty"`
	Tier          string         `json:"tier"`
	FrequencyRank *int           `json:"frequencyRank,omitempty"` // nil means unranked
	Tags          []string       `json:"tags"`
	Examples      []UsageExample `json:"examples"`
	Status        WordPairStatus `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// IsActive reports whether the word pair can be served
func (w *WordPair) IsActive() bool {
	return w.Status == WordPairActive
}
