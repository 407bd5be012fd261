package tickets

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusValid       Status = "valid"
	StatusScanned     Status = "scanned"
	StatusCancelled   Status = "cancelled"
	StatusRefunded    Status = "refunded"
	StatusTransferred Status = "transferred"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusValid, StatusScanned, StatusCancelled, StatusRefunded, StatusTransferred:
		return st, nil
	default:
		return "", fmt.Errorf("unknown ticket status %q", s)
	}
}

type Ticket struct {
	ID             string
	TicketTypeID   string
	TicketTypeName string
	Status         Status

	AttendeeName  string
	AttendeeEmail string

	ScannedAt *time.Time
	ScannedBy *string

	// LastScan is the scan metadata stored alongside the ticket, if any.
	LastScan *ScanMetadata
}

// ScanMetadata is merged into the ticket's metadata document under the "scan" key.
type ScanMetadata struct {
	Location     string    `json:"location,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	ScannerID    string    `json:"scanner_id"`
	ScannerEmail string    `json:"scanner_email,omitempty"`
	ScannerName  string    `json:"scanner_name,omitempty"`
	ScannedAt    time.Time `json:"scanned_at"`
}

// Validate checks the invariants a ticket row must satisfy before it is handed to the engine:
// a known status, and scanned_at set if and only if the status is scanned.
func (t Ticket) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: ticket id is empty", ErrMalformedRow)
	}
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}
	if (t.Status == StatusScanned) != (t.ScannedAt != nil) {
		return fmt.Errorf(
			"%w: ticket %s has status %s but scanned_at set=%t",
			ErrMalformedRow, t.ID, t.Status, t.ScannedAt != nil,
		)
	}
	return nil
}

// Scan is the state transition performed on an admitted ticket.
type Scan struct {
	TicketID  string
	ScannedAt time.Time
	ScannedBy string
	Metadata  ScanMetadata
}
