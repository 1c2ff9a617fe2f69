package postgres

import (
	"context"
	"fmt"

	"edulearn-engine/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Ledger stores progress events in Postgres. Append-only by construction:
// the engine never issues UPDATE or DELETE against progress_events.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

func (l *Ledger) Append(ctx context.Context, event domain.ProgressEvent) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO progress_events (id, user_id, subject, topic, score, completed, source, xp, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.UserID, event.Subject, event.Topic, event.Score,
		event.Completed, string(event.Source), event.XP, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (l *Ledger) ListByUser(ctx context.Context, userID string) ([]domain.ProgressEvent, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, user_id, subject, topic, score, completed, source, xp, occurred_at
		FROM progress_events
		WHERE user_id = $1
		ORDER BY occurred_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.ProgressEvent
	for rows.Next() {
		var e domain.ProgressEvent
		var source string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Subject, &e.Topic, &e.Score,
			&e.Completed, &source, &e.XP, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Source = domain.EventSource(source)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
