package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// BadgeStore persists unlocked badges. Inserts are idempotent so re-awarding
// an already-held badge is harmless.
type BadgeStore struct {
	pool *pgxpool.Pool
}

func NewBadgeStore(pool *pgxpool.Pool) *BadgeStore {
	return &BadgeStore{pool: pool}
}

func (s *BadgeStore) Unlocked(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT badge_id FROM user_badges WHERE user_id = $1 ORDER BY badge_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	return ids, nil
}

func (s *BadgeStore) Unlock(ctx context.Context, userID string, badgeIDs []string) error {
	for _, id := range badgeIDs {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO user_badges (user_id, badge_id) VALUES ($1, $2)
			ON CONFLICT (user_id, badge_id) DO NOTHING`,
			userID, id,
		)
		if err != nil {
			return fmt.Errorf("unlock badge %s: %w", id, err)
		}
	}
	return nil
}
