package entities

import (
	"time"
)

type Event interface {
	IsInternal() bool
}

type TicketScanned_v1 struct {
	Header EventHeader `json:"header"`

	TicketID     string    `json:"ticket_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	EventID      string    `json:"event_id"`
	ScannedAt    time.Time `json:"scanned_at"`
	ScannedBy    string    `json:"scanned_by"`
	ScannerEmail string    `json:"scanner_email,omitempty"`
	Location     string    `json:"location,omitempty"`
}

func (t TicketScanned_v1) IsInternal() bool {
	return false
}

type AppendToTrackerRequest struct {
	SpreadsheetName string
	Rows            []string
}
