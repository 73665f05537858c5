package models

import "time"

// Achievement is a catalog entry describing an unlockable reward
type Achievement struct {
	ID               int    `json:"id"`
	Code             string `json:"code"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	RequirementType  string `json:"requirementType"`
	RequirementValue int    `json:"requirementValue"`
	Points           int    `json:"points"`
	IsActive         bool   `json:"isActive"`
}

// UserAchievement records that a user earned an achievement
type UserAchievement struct {
	ID            int       `json:"id"`
	UserID        int       `json:"userId"`
	AchievementID int       `json:"achievementId"`
	EarnedAt      time.Time `json:"earnedAt"`
	ContextData   string    `json:"contextData"`
}

// UserStreak tracks consecutive study days for a user
type UserStreak struct {
	UserID        int       `json:"userId"`
	CurrentStreak int       `json:"currentStreak"`
	LongestStreak int       `json:"longestStreak"`
	LastStudyDate time.Time `json:"lastStudyDate"`
}
