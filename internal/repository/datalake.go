package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gatekeeper/internal/entities"
)

// DatalakeRepo keeps a raw copy of every integration event in Postgres.
type DatalakeRepo struct {
	db *sqlx.DB
}

func NewDatalakeRepo(db *sqlx.DB) *DatalakeRepo {
	return &DatalakeRepo{db: db}
}

func (r *DatalakeRepo) SaveEvent(ctx context.Context, event entities.DatalakeEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO datalake_events (event_id, published_at, event_name, event_payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, event.Id, event.PublishedAt, event.EventName, string(event.Payload))
	if err != nil {
		return fmt.Errorf("could not save %s event %s: %w", event.EventName, event.Id, err)
	}

	return nil
}

func (r *DatalakeRepo) Events(ctx context.Context, eventName string) ([]entities.DatalakeEvent, error) {
	var events []entities.DatalakeEvent
	err := r.db.SelectContext(ctx, &events, `
		SELECT event_id, published_at, event_name, event_payload
		FROM datalake_events
		WHERE event_name = $1
		ORDER BY published_at
	`, eventName)
	if err != nil {
		return nil, fmt.Errorf("could not select %s events: %w", eventName, err)
	}

	return events, nil
}
