package models

import "time"

// ReviewLogEntry is an immutable record of one processed review
type ReviewLogEntry struct {
	ID               int64     `json:"id"`
	UserID           int       `json:"userId"`
	WordPairID       int       `json:"wordPairId"`
	UserCardID       int64     `json:"userCardId"`
	Quality          int       `json:"quality"`
	ResponseTimeMs   *int      `json:"responseTimeMs,omitempty"`
	Source           string    `json:"source"`
	SessionID        *string   `json:"sessionId,omitempty"`
	EaseFactorBefore float64   `json:"easeFactorBefore"`
	EaseFactorAfter  float64   `json:"easeFactorAfter"`
	IntervalBefore   int       `json:"intervalBefore"`
	IntervalAfter    int       `json:"intervalAfter"`
	ReviewedAt       time.Time `json:"reviewedAt"`
}
