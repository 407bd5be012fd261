package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"gatekeeper/internal/entities"
)

const TicketsScannedSpreadsheet = "tickets-scanned"

func (h *Handler) TicketsScannedTrackerHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"tickets_scanned_tracker",
		func(ctx context.Context, event *entities.TicketScanned_v1) error {
			if err := validateTicketScanned(event); err != nil {
				return err
			}

			log.FromContext(ctx).
				WithField("ticket_id", event.TicketID).
				Info("Appending scanned ticket to tracker")

			return h.spreadsheetsClient.AppendRow(ctx, entities.AppendToTrackerRequest{
				SpreadsheetName: TicketsScannedSpreadsheet,
				Rows: []string{
					event.TicketID,
					event.EventID,
					event.ScannedAt.UTC().Format(time.RFC3339),
					event.ScannedBy,
					event.Location,
				},
			})
		},
	)
}

func (h *Handler) AttendanceReadModelHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"attendance_read_model.on_ticket_scanned",
		func(ctx context.Context, event *entities.TicketScanned_v1) error {
			if err := validateTicketScanned(event); err != nil {
				return err
			}

			return h.attendance.OnTicketScanned(ctx, event)
		},
	)
}

func validateTicketScanned(event *entities.TicketScanned_v1) error {
	if event.TicketID == "" || event.EventID == "" {
		return fmt.Errorf("%w: TicketScanned_v1 without ticket or event id", ErrMalformedMessage)
	}
	return nil
}
