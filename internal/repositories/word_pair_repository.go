package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pairlingua/backend/internal/models"
)

// defaultFrequencyRank stands in for unranked word pairs when looking for neighbours
const defaultFrequencyRank = 1000

// distractorRankWindow is how far apart two frequency ranks may be to count as similar
const distractorRankWindow = 100

const wordPairColumns = `wp.id, wp.source_term, wp.target_term, wp.audio_url, wp.tier, wp.frequency_rank,
	wp.tags, wp.examples, wp.status, wp.created_at, wp.updated_at`

// wordPairRepository implements the catalog reads used by the study services
type wordPairRepository struct {
	db *sql.DB
}

// NewWordPairRepository creates a new word pair repository
func NewWordPairRepository(db *sql.DB) *wordPairRepository {
	return &wordPairRepository{
		db: db,
	}
}

// GetByIDs retrieves word pairs by their IDs regardless of status
func (r *wordPairRepository) GetByIDs(ctx context.Context, ids []int) ([]models.WordPair, error) {
	if len(ids) == 0 {
		return []models.WordPair{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM word_pairs wp
		WHERE wp.id IN (%s)
	`, wordPairColumns, placeholders(len(ids)))

	return r.queryWordPairs(ctx, query, intArgs(ids)...)
}

// ExistingIDs returns the subset of ids that exist in the catalog
func (r *wordPairRepository) ExistingIDs(ctx context.Context, ids []int) ([]int, error) {
	if len(ids) == 0 {
		return []int{}, nil
	}

	query := fmt.Sprintf(`SELECT id FROM word_pairs WHERE id IN (%s)`, placeholders(len(ids)))

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, intArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query word pair IDs: %w", err)
	}
	defer rows.Close()

	existing := make([]int, 0, len(ids))
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan word pair ID: %w", err)
		}
		existing = append(existing, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return existing, nil
}

// ListUnseen retrieves active word pairs the user has no card for yet
//
// Results are ordered by frequency rank with unranked pairs last, ties broken by RAND seeded with "seed".
// "filter" excludes IDs and optionally restricts tiers and tags.
func (r *wordPairRepository) ListUnseen(ctx context.Context, userID int, filter models.CardFilter, limit int, seed int64) ([]models.WordPair, error) {
	var sb strings.Builder
	args := []any{userID}

	fmt.Fprintf(&sb, `
		SELECT %s
		FROM word_pairs wp
		WHERE wp.status = 'active'
		AND NOT EXISTS (SELECT 1 FROM user_cards uc WHERE uc.user_id = ? AND uc.word_pair_id = wp.id)`, wordPairColumns)

	if len(filter.ExcludeIDs) > 0 {
		fmt.Fprintf(&sb, " AND wp.id NOT IN (%s)", placeholders(len(filter.ExcludeIDs)))
		args = append(args, intArgs(filter.ExcludeIDs)...)
	}
	if len(filter.Tiers) > 0 {
		fmt.Fprintf(&sb, " AND wp.tier IN (%s)", placeholders(len(filter.Tiers)))
		args = append(args, stringArgs(filter.Tiers)...)
	}
	if len(filter.Tags) > 0 {
		sb.WriteString(" AND JSON_OVERLAPS(wp.tags, CAST(? AS JSON))")
		args = append(args, tagsJSON(filter.Tags))
	}

	sb.WriteString(" ORDER BY wp.frequency_rank IS NULL, wp.frequency_rank ASC, RAND(?) LIMIT ?")
	args = append(args, seed, limit)

	return r.queryWordPairs(ctx, sb.String(), args...)
}

// ListSimilar retrieves active word pairs sharing the tier of "pair" or within 100 frequency ranks of it,
// in random order
func (r *wordPairRepository) ListSimilar(ctx context.Context, pair models.WordPair, limit int, seed int64) ([]models.WordPair, error) {
	rank := defaultFrequencyRank
	if pair.FrequencyRank != nil {
		rank = *pair.FrequencyRank
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM word_pairs wp
		WHERE wp.id <> ? AND wp.status = 'active'
		AND (wp.tier = ? OR wp.frequency_rank BETWEEN ? AND ?)
		ORDER BY RAND(?)
		LIMIT ?
	`, wordPairColumns)

	return r.queryWordPairs(ctx, query, pair.ID, pair.Tier, rank-distractorRankWindow, rank+distractorRankWindow, seed, limit)
}

// ListRandom retrieves random active word pairs not in "excludeIDs"
func (r *wordPairRepository) ListRandom(ctx context.Context, excludeIDs []int, limit int, seed int64) ([]models.WordPair, error) {
	var sb strings.Builder
	args := []any{}

	fmt.Fprintf(&sb, `
		SELECT %s
		FROM word_pairs wp
		WHERE wp.status = 'active'`, wordPairColumns)

	if len(excludeIDs) > 0 {
		fmt.Fprintf(&sb, " AND wp.id NOT IN (%s)", placeholders(len(excludeIDs)))
		args = append(args, intArgs(excludeIDs)...)
	}

	sb.WriteString(" ORDER BY RAND(?) LIMIT ?")
	args = append(args, seed, limit)

	return r.queryWordPairs(ctx, sb.String(), args...)
}

func (r *wordPairRepository) queryWordPairs(ctx context.Context, query string, args ...any) ([]models.WordPair, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query word pairs: %w", err)
	}
	defer rows.Close()

	pairs := []models.WordPair{}
	for rows.Next() {
		pair, err := scanWordPair(rows)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, *pair)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return pairs, nil
}

func scanWordPair(rows *sql.Rows) (*models.WordPair, error) {
	var (
		pair     models.WordPair
		audioURL sql.NullString
		rank     sql.NullInt64
		tags     []byte
		examples []byte
		status   string
	)

	if err := rows.Scan(&pair.ID, &pair.SourceTerm, &pair.TargetTerm, &audioURL, &pair.Tier, &rank,
		&tags, &examples, &status, &pair.CreatedAt, &pair.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan word pair: %w", err)
	}

	pair.AudioURL = audioURL.String
	pair.Status = models.WordPairStatus(status)
	if rank.Valid {
		value := int(rank.Int64)
		pair.FrequencyRank = &value
	}

	pair.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &pair.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode word pair tags: %w", err)
		}
	}
	pair.Examples = []models.UsageExample{}
	if len(examples) > 0 {
		if err := json.Unmarshal(examples, &pair.Examples); err != nil {
			return nil, fmt.Errorf("failed to decode word pair examples: %w", err)
		}
	}

	return &pair, nil
}
