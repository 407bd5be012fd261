package tickets

import (
	"fmt"
	"time"
)

type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusPostponed EventStatus = "postponed"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

func ParseEventStatus(s string) (EventStatus, error) {
	switch st := EventStatus(s); st {
	case EventStatusScheduled, EventStatusPostponed, EventStatusCompleted, EventStatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown event status %q", s)
	}
}

// Event is the parent event of a ticket's type. It is read-only for redemption.
type Event struct {
	ID             string
	OrganizationID string
	Title          string
	Venue          string
	Status         EventStatus
	StartDate      time.Time
	EndDate        *time.Time
}

func (e Event) IsCancelled() bool {
	return e.Status == EventStatusCancelled
}

// IsCompleted marks an event closed by its organizer, whatever its end date says.
func (e Event) IsCompleted() bool {
	return e.Status == EventStatusCompleted
}

func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: event id is empty", ErrMalformedRow)
	}
	if _, err := ParseEventStatus(string(e.Status)); err != nil {
		return fmt.Errorf("%w: event %s: %w", ErrMalformedRow, e.ID, err)
	}
	if e.StartDate.IsZero() {
		return fmt.Errorf("%w: event %s has no start date", ErrMalformedRow, e.ID)
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		return fmt.Errorf("%w: event %s ends before it starts", ErrMalformedRow, e.ID)
	}
	return nil
}

func (e Event) Summary() EventSummary {
	return EventSummary{
		ID:        e.ID,
		Title:     e.Title,
		Venue:     e.Venue,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
	}
}

type EventSummary struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Venue     string     `json:"venue,omitempty"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}
