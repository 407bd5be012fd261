package audit

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionTicketScanned = "ticket_scanned"

	TableTickets = "tickets"
)

// Entry is an append-only record of a state change: who changed which record, and
// the changed fields before and after.
type Entry struct {
	ID         uuid.UUID
	TableName  string
	RecordID   string
	Action     string
	Before     map[string]any
	After      map[string]any
	ActorID    string
	ActorEmail string
	CreatedAt  time.Time
}

func NewTicketScannedEntry(
	ticketID string,
	actorID, actorEmail string,
	scannedAt time.Time,
) Entry {
	return Entry{
		ID:        uuid.New(),
		TableName: TableTickets,
		RecordID:  ticketID,
		Action:    ActionTicketScanned,
		Before: map[string]any{
			"status":     "valid",
			"scanned_at": nil,
			"scanned_by": nil,
		},
		After: map[string]any{
			"status":     "scanned",
			"scanned_at": scannedAt.UTC().Format(time.RFC3339Nano),
			"scanned_by": actorID,
		},
		ActorID:    actorID,
		ActorEmail: actorEmail,
		CreatedAt:  scannedAt,
	}
}
