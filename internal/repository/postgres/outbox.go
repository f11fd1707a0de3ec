package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PhiQuangHuy/order-service/internal/repository"
)

// OutboxRepository implements repository.OutboxRepository over PostgreSQL.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates a PostgreSQL-backed outbox repository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

func (r *OutboxRepository) InsertEvent(ctx context.Context, event repository.OutboxEvent) error {
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO outbox (event_id, topic, aggregate_id, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		event.EventID, event.Topic, event.AggregateID, []byte(event.Payload), createdAt)
	return err
}

func (r *OutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]repository.OutboxEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT event_id, topic, aggregate_id, payload, created_at, sent_at, last_error
		 FROM outbox WHERE sent_at IS NULL ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]repository.OutboxEvent, 0, limit)
	for rows.Next() {
		var event repository.OutboxEvent
		var payload []byte
		var lastError *string
		if err := rows.Scan(&event.EventID, &event.Topic, &event.AggregateID,
			&payload, &event.CreatedAt, &event.SentAt, &lastError); err != nil {
			return nil, err
		}
		event.Payload = payload
		if lastError != nil {
			event.LastError = *lastError
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *OutboxRepository) MarkEventSent(ctx context.Context, eventID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE outbox SET sent_at = now() WHERE event_id = $1`, eventID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *OutboxRepository) MarkEventFailed(ctx context.Context, eventID, errMsg string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE outbox SET last_error = $2 WHERE event_id = $1`, eventID, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
