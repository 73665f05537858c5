package services

import (
	"context"
	"time"

	"github.com/pairlingua/backend/internal/models"
)

// WordPairRepository is the interface that wraps read access to the word pair catalog
type WordPairRepository interface {
	// Method GetByIDs retrieve word pairs by IDs regardless of their status.
	//
	// Unknown IDs are silently skipped, the order of the result is not guaranteed.
	GetByIDs(ctx context.Context, ids []int) ([]models.WordPair, error)
	// Method ExistingIDs return the subset of "ids" present in the catalog.
	ExistingIDs(ctx context.Context, ids []int) ([]int, error)
	// Method ListUnseen retrieve active word pairs the user has no card for.
	//
	// Pairs are ordered by frequency rank ascending with unranked pairs last, ties are broken randomly using "seed".
	// "filter" excludes IDs and optionally restricts difficulty tiers.
	ListUnseen(ctx context.Context, userID int, filter models.CardFilter, limit int, seed int64) ([]models.WordPair, error)
	// Method ListSimilar retrieve active word pairs of the same tier or close frequency rank, excluding "pair" itself.
	ListSimilar(ctx context.Context, pair models.WordPair, limit int, seed int64) ([]models.WordPair, error)
	// Method ListRandom retrieve random active word pairs not in "excludeIDs".
	ListRandom(ctx context.Context, excludeIDs []int, limit int, seed int64) ([]models.WordPair, error)
}

// UserCardRepository is the interface that wraps methods for per-user card state
type UserCardRepository interface {
	// Method ListOverdue retrieve active cards due at or before "now" whose word pair is active.
	//
	// Cards are ordered by due timestamp ascending (most overdue first). "filter" excludes word pair IDs
	// and optionally restricts difficulty tiers.
	ListOverdue(ctx context.Context, userID int, now time.Time, filter models.CardFilter, limit int) ([]models.UserCard, error)
	// Method GetByUserAndWordPair retrieve the card of a user for a word pair, or "nil" if none exists.
	GetByUserAndWordPair(ctx context.Context, userID, wordPairID int) (*models.UserCard, error)
	// Method EnsureCard return the card of a user for a word pair, creating it with "dueAt" as due timestamp when missing.
	//
	// Concurrent creation is resolved inside the repository. The boolean reports whether this call created the card.
	EnsureCard(ctx context.Context, userID, wordPairID int, dueAt time.Time) (*models.UserCard, bool, error)
	// Method Update persist the scheduling and statistics fields of a card.
	Update(ctx context.Context, card *models.UserCard) error
	// Method CountDue count all active cards of the user due at or before "now".
	CountDue(ctx context.Context, userID int, now time.Time) (int, error)
	// Method SetStatus change the status of a card. The boolean is false when the user has no card for the word pair.
	SetStatus(ctx context.Context, userID, wordPairID int, status models.CardStatus, now time.Time) (bool, error)
	// Method ProgressCounts aggregate card counts of the user.
	ProgressCounts(ctx context.Context, userID int, now time.Time) (*models.ProgressCounts, error)
}

// ReviewLogRepository is the interface that wraps methods for the append-only review history
type ReviewLogRepository interface {
	Insert(ctx context.Context, entry *models.ReviewLogEntry) error
	ListBySession(ctx context.Context, userID int, sessionID string) ([]models.ReviewLogEntry, error)
}

// StudySessionRepository is the interface that wraps methods for study session storage
type StudySessionRepository interface {
	// Method GetLatestLive retrieve the most recently created session whose expiry is unset or after "now".
	//
	// Returns "nil" without error when there is no live session.
	GetLatestLive(ctx context.Context, userID int, now time.Time) (*models.StudySession, error)
	// Method GetByID retrieve a session by ID, or "nil" when it does not exist.
	GetByID(ctx context.Context, id string) (*models.StudySession, error)
	Create(ctx context.Context, session *models.StudySession) error
	// Method UpdateActivePairs overwrite the active word pair set of a session.
	UpdateActivePairs(ctx context.Context, id string, pairIDs []int, now time.Time) error
}

// AchievementRepository is the interface that wraps methods for achievements
type AchievementRepository interface {
	// Method GetByCode retrieve an active achievement by code, or "nil" when none exists.
	GetByCode(ctx context.Context, code string) (*models.Achievement, error)
	HasUserAchievement(ctx context.Context, userID, achievementID int) (bool, error)
	// Method Grant record an earned achievement. The boolean is false when it was already earned.
	Grant(ctx context.Context, userID, achievementID int, earnedAt time.Time, contextData string) (bool, error)
}

// StreakRepository is the interface that wraps methods for daily study streaks
type StreakRepository interface {
	// Method Get retrieve the streak of a user, or "nil" when the user never studied.
	Get(ctx context.Context, userID int) (*models.UserStreak, error)
	Upsert(ctx context.Context, streak *models.UserStreak) error
}

// Transactor runs a unit of work atomically
type Transactor interface {
	// Method WithinTx run "fn" in a transaction carried by the context passed to it.
	//
	// The transaction is rolled back when "fn" returns an error.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Cache is the key/value store used for due-card listings
type Cache interface {
	// Method Get return the cached value. The boolean is false on a miss.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Method DeletePrefix remove every key starting with "prefix".
	DeletePrefix(ctx context.Context, prefix string) error
}
