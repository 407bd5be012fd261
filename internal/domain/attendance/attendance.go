package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Attendance is the per-event admissions read model.
type Attendance struct {
	EventID uuid.UUID `json:"event_id"`

	AdmittedCount int        `json:"admitted_count"`
	FirstScanAt   *time.Time `json:"first_scan_at,omitempty"`
	LastScanAt    *time.Time `json:"last_scan_at,omitempty"`

	ByLocation map[string]int `json:"by_location"`

	// Tickets keys admitted ticket ids to their scan time, so replayed events are counted once.
	Tickets map[string]time.Time `json:"tickets"`

	LastUpdate time.Time `json:"last_update"`
}

func New(eventID uuid.UUID) *Attendance {
	return &Attendance{
		EventID:    eventID,
		ByLocation: map[string]int{},
		Tickets:    map[string]time.Time{},
	}
}

// RecordScan adds an admission. It returns false when the ticket was already counted.
func (a *Attendance) RecordScan(ticketID, location string, scannedAt time.Time) bool {
	if a.Tickets == nil {
		a.Tickets = map[string]time.Time{}
	}
	if a.ByLocation == nil {
		a.ByLocation = map[string]int{}
	}
	if _, ok := a.Tickets[ticketID]; ok {
		return false
	}

	a.Tickets[ticketID] = scannedAt
	a.AdmittedCount = len(a.Tickets)
	if location == "" {
		location = "unspecified"
	}
	a.ByLocation[location]++

	if a.FirstScanAt == nil || scannedAt.Before(*a.FirstScanAt) {
		t := scannedAt
		a.FirstScanAt = &t
	}
	if a.LastScanAt == nil || scannedAt.After(*a.LastScanAt) {
		t := scannedAt
		a.LastScanAt = &t
	}
	return true
}
