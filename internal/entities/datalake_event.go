package entities

import (
	"time"

	"github.com/google/uuid"
)

// DatalakeEvent is a raw copy of every published integration event.
type DatalakeEvent struct {
	Id          uuid.UUID `db:"event_id"`
	PublishedAt time.Time `db:"published_at"`
	EventName   string    `db:"event_name"`
	Payload     []byte    `db:"event_payload"`
}
