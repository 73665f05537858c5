package services

import (
	"context"
	"strings"
	"time"

	"github.com/pairlingua/backend/internal/models"
	"github.com/pairlingua/backend/internal/sm2"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// mockWordPairRepository is a mock implementation of WordPairRepository
type mockWordPairRepository struct {
	pairs       map[int]models.WordPair
	unseen      []models.WordPair
	similar     []models.WordPair
	random      []models.WordPair
	getErr      error
	existingErr error
	unseenErr   error
	similarErr  error
	randomErr   error

	lastUnseenFilter  models.CardFilter
	lastUnseenLimit   int
	lastRandomExclude []int
}

func newMockWordPairRepository(pairs ...models.WordPair) *mockWordPairRepository {
	m := &mockWordPairRepository{pairs: map[int]models.WordPair{}}
	for _, p := range pairs {
		m.pairs[p.ID] = p
	}
	return m
}

func (m *mockWordPairRepository) GetByIDs(ctx context.Context, ids []int) ([]models.WordPair, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	result := []models.WordPair{}
	for _, id := range ids {
		if p, ok := m.pairs[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockWordPairRepository) ExistingIDs(ctx context.Context, ids []int) ([]int, error) {
	if m.existingErr != nil {
		return nil, m.existingErr
	}
	result := []int{}
	for _, id := range ids {
		if _, ok := m.pairs[id]; ok {
			result = append(result, id)
		}
	}
	return result, nil
}

func (m *mockWordPairRepository) ListUnseen(ctx context.Context, userID int, filter models.CardFilter, limit int, seed int64) ([]models.WordPair, error) {
	m.lastUnseenFilter = filter
	m.lastUnseenLimit = limit
	if m.unseenErr != nil {
		return nil, m.unseenErr
	}
	result := []models.WordPair{}
	for _, p := range m.unseen {
		if containsInt(filter.ExcludeIDs, p.ID) {
			continue
		}
		if len(result) == limit {
			break
		}
		result = append(result, p)
	}
	return result, nil
}

func (m *mockWordPairRepository) ListSimilar(ctx context.Context, pair models.WordPair, limit int, seed int64) ([]models.WordPair, error) {
	if m.similarErr != nil {
		return nil, m.similarErr
	}
	return firstN(m.similar, limit), nil
}

func (m *mockWordPairRepository) ListRandom(ctx context.Context, excludeIDs []int, limit int, seed int64) ([]models.WordPair, error) {
	m.lastRandomExclude = excludeIDs
	if m.randomErr != nil {
		return nil, m.randomErr
	}
	result := []models.WordPair{}
	for _, p := range m.random {
		if containsInt(excludeIDs, p.ID) {
			continue
		}
		result = append(result, p)
	}
	return firstN(result, limit), nil
}

// mockUserCardRepository is a mock implementation of UserCardRepository backed by a map keyed by word pair
type mockUserCardRepository struct {
	cards    map[int]*models.UserCard
	overdue  []models.UserCard
	dueCount int
	counts   *models.ProgressCounts
	nextID   int64

	overdueErr   error
	ensureErr    error
	updateErr    error
	updateErrAt  int
	countErr     error
	setStatusErr error
	progressErr  error

	updates          int
	lastOverdueLimit int
	lastStatus       models.CardStatus
}

func newMockUserCardRepository() *mockUserCardRepository {
	return &mockUserCardRepository{cards: map[int]*models.UserCard{}, nextID: 100}
}

func (m *mockUserCardRepository) ListOverdue(ctx context.Context, userID int, now time.Time, filter models.CardFilter, limit int) ([]models.UserCard, error) {
	m.lastOverdueLimit = limit
	if m.overdueErr != nil {
		return nil, m.overdueErr
	}
	result := []models.UserCard{}
	for _, c := range m.overdue {
		if containsInt(filter.ExcludeIDs, c.WordPairID) {
			continue
		}
		if len(result) == limit {
			break
		}
		result = append(result, c)
	}
	return result, nil
}

func (m *mockUserCardRepository) GetByUserAndWordPair(ctx context.Context, userID, wordPairID int) (*models.UserCard, error) {
	card, ok := m.cards[wordPairID]
	if !ok {
		return nil, nil
	}
	copied := *card
	return &copied, nil
}

func (m *mockUserCardRepository) EnsureCard(ctx context.Context, userID, wordPairID int, dueAt time.Time) (*models.UserCard, bool, error) {
	if m.ensureErr != nil {
		return nil, false, m.ensureErr
	}
	if card, ok := m.cards[wordPairID]; ok {
		copied := *card
		return &copied, false, nil
	}
	m.nextID++
	due := dueAt
	card := &models.UserCard{
		ID:         m.nextID,
		UserID:     userID,
		WordPairID: wordPairID,
		EaseFactor: sm2.InitialEaseFactor,
		DueAt:      &due,
		IsLearning: true,
		Status:     models.CardActive,
		CreatedAt:  dueAt,
		UpdatedAt:  dueAt,
	}
	m.cards[wordPairID] = card
	copied := *card
	return &copied, true, nil
}

func (m *mockUserCardRepository) Update(ctx context.Context, card *models.UserCard) error {
	m.updates++
	if m.updateErr != nil && (m.updateErrAt == 0 || m.updateErrAt == m.updates) {
		return m.updateErr
	}
	copied := *card
	m.cards[card.WordPairID] = &copied
	return nil
}

func (m *mockUserCardRepository) CountDue(ctx context.Context, userID int, now time.Time) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.dueCount, nil
}

func (m *mockUserCardRepository) SetStatus(ctx context.Context, userID, wordPairID int, status models.CardStatus, now time.Time) (bool, error) {
	if m.setStatusErr != nil {
		return false, m.setStatusErr
	}
	card, ok := m.cards[wordPairID]
	if !ok {
		return false, nil
	}
	card.Status = status
	m.lastStatus = status
	return true, nil
}

func (m *mockUserCardRepository) ProgressCounts(ctx context.Context, userID int, now time.Time) (*models.ProgressCounts, error) {
	if m.progressErr != nil {
		return nil, m.progressErr
	}
	if m.counts == nil {
		return &models.ProgressCounts{}, nil
	}
	return m.counts, nil
}

// mockReviewLogRepository is a mock implementation of ReviewLogRepository
type mockReviewLogRepository struct {
	entries   []models.ReviewLogEntry
	insertErr error
	listErr   error
}

func (m *mockReviewLogRepository) Insert(ctx context.Context, entry *models.ReviewLogEntry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockReviewLogRepository) ListBySession(ctx context.Context, userID int, sessionID string) ([]models.ReviewLogEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := []models.ReviewLogEntry{}
	for _, e := range m.entries {
		if e.UserID == userID && e.SessionID != nil && *e.SessionID == sessionID {
			result = append(result, e)
		}
	}
	return result, nil
}

// mockStudySessionRepository is a mock implementation of StudySessionRepository
type mockStudySessionRepository struct {
	sessions  map[string]*models.StudySession
	latestErr error
	getErr    error
	createErr error
	updateErr error
	created   int
	updates   int
}

func newMockStudySessionRepository(sessions ...*models.StudySession) *mockStudySessionRepository {
	m := &mockStudySessionRepository{sessions: map[string]*models.StudySession{}}
	for _, s := range sessions {
		m.sessions[s.ID] = s
	}
	return m
}

func (m *mockStudySessionRepository) GetLatestLive(ctx context.Context, userID int, now time.Time) (*models.StudySession, error) {
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	var latest *models.StudySession
	for _, s := range m.sessions {
		if s.UserID != userID || s.IsExpired(now) || (s.ExpiresAt != nil && s.ExpiresAt.Equal(now)) {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	copied.ActivePairIDs = append([]int(nil), latest.ActivePairIDs...)
	return &copied, nil
}

func (m *mockStudySessionRepository) GetByID(ctx context.Context, id string) (*models.StudySession, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	copied.ActivePairIDs = append([]int(nil), s.ActivePairIDs...)
	return &copied, nil
}

func (m *mockStudySessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created++
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *mockStudySessionRepository) UpdateActivePairs(ctx context.Context, id string, pairIDs []int, now time.Time) error {
	m.updates++
	if m.updateErr != nil {
		return m.updateErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	s.ActivePairIDs = append([]int(nil), pairIDs...)
	s.UpdatedAt = now
	return nil
}

// mockAchievementRepository is a mock implementation of AchievementRepository
type mockAchievementRepository struct {
	catalog map[string]*models.Achievement
	earned  map[int]bool
	getErr  error
	grants  int
}

func newMockAchievementRepository() *mockAchievementRepository {
	return &mockAchievementRepository{
		catalog: map[string]*models.Achievement{
			"perfect_day": {ID: 1, Code: "perfect_day", Title: "Perfect Day", Points: 50, IsActive: true},
		},
		earned: map[int]bool{},
	}
}

func (m *mockAchievementRepository) GetByCode(ctx context.Context, code string) (*models.Achievement, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.catalog[code], nil
}

func (m *mockAchievementRepository) HasUserAchievement(ctx context.Context, userID, achievementID int) (bool, error) {
	return m.earned[achievementID], nil
}

func (m *mockAchievementRepository) Grant(ctx context.Context, userID, achievementID int, earnedAt time.Time, contextData string) (bool, error) {
	if m.earned[achievementID] {
		return false, nil
	}
	m.grants++
	m.earned[achievementID] = true
	return true, nil
}

// mockStreakRepository is a mock implementation of StreakRepository
type mockStreakRepository struct {
	streak    *models.UserStreak
	getErr    error
	upsertErr error
	upserts   int
}

func (m *mockStreakRepository) Get(ctx context.Context, userID int) (*models.UserStreak, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.streak == nil {
		return nil, nil
	}
	copied := *m.streak
	return &copied, nil
}

func (m *mockStreakRepository) Upsert(ctx context.Context, streak *models.UserStreak) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	copied := *streak
	m.streak = &copied
	return nil
}

// mockTransactor is a mock implementation of Transactor that runs fn directly
type mockTransactor struct {
	calls int
	err   error
	// attempts runs fn this many times, like a transaction retried after a deadlock
	attempts int
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	for i := 1; i < m.attempts; i++ {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return fn(ctx)
}

// mockCache is a mock implementation of Cache
type mockCache struct {
	values          map[string]string
	getErr          error
	setErr          error
	deleteErr       error
	deletedPrefixes []string
	sets            int
	lastTTL         time.Duration
}

func newMockCache() *mockCache {
	return &mockCache{values: map[string]string{}}
}

func (m *mockCache) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *mockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.lastTTL = ttl
	m.values[key] = value
	return nil
}

func (m *mockCache) DeletePrefix(ctx context.Context, prefix string) error {
	m.deletedPrefixes = append(m.deletedPrefixes, prefix)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for key := range m.values {
		if strings.HasPrefix(key, prefix) {
			delete(m.values, key)
		}
	}
	return nil
}

// sequenceRandom returns scripted Intn results, cycling through them, and a fixed Int63
type sequenceRandom struct {
	picks []int
	next  int
}

func (r *sequenceRandom) Intn(n int) int {
	if len(r.picks) == 0 {
		return 0
	}
	v := r.picks[r.next%len(r.picks)]
	r.next++
	return v % n
}

func (r *sequenceRandom) Int63() int64 {
	return 42
}

// mockSelector is a mock implementation of cardSelector
type mockSelector struct {
	selection *Selection
	err       error
	lastReq   SelectionRequest
}

func (m *mockSelector) Select(ctx context.Context, req SelectionRequest, now time.Time) (*Selection, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.selection, nil
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func firstN(pairs []models.WordPair, n int) []models.WordPair {
	if len(pairs) <= n {
		return append([]models.WordPair(nil), pairs...)
	}
	return append([]models.WordPair(nil), pairs[:n]...)
}

func wordPair(id int, source, target, tier string) models.WordPair {
	return models.WordPair{ID: id, SourceTerm: source, TargetTerm: target, Tier: tier, Status: models.WordPairActive}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func intPtr(v int) *int {
	return &v
}
