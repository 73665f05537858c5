package models

import "time"

// StudySession is the ephemeral set of word pairs currently shown to a user
type StudySession struct {
	ID            string         `json:"id"`
	UserID        int            `json:"userId"`
	ActivePairIDs []int          `json:"activePairIds"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	ExpiresAt     *time.Time     `json:"expiresAt,omitempty"`
}

// IsExpired reports whether the session has been superseded by time
func (s *StudySession) IsExpired(now time.Time) bool {
	if s.ExpiresAt == nil {
		return false
	}
	return now.After(*s.ExpiresAt)
}
