package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"

	"gatekeeper/internal/application/usecases/redemption"
	"gatekeeper/internal/domain/tickets"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type ticketResponse struct {
	ID             string     `json:"id"`
	TicketTypeID   string     `json:"ticket_type_id"`
	TicketTypeName string     `json:"ticket_type_name,omitempty"`
	Status         string     `json:"status"`
	ScannedAt      *time.Time `json:"scanned_at,omitempty"`
	ScannedBy      *string    `json:"scanned_by,omitempty"`
}

func newTicketResponse(t tickets.Ticket) *ticketResponse {
	return &ticketResponse{
		ID:             t.ID,
		TicketTypeID:   t.TicketTypeID,
		TicketTypeName: t.TicketTypeName,
		Status:         string(t.Status),
		ScannedAt:      t.ScannedAt,
		ScannedBy:      t.ScannedBy,
	}
}

type priorScanResponse struct {
	ScannedAt     time.Time `json:"scanned_at"`
	ScannedBy     string    `json:"scanned_by"`
	ScannedByName string    `json:"scanned_by_name,omitempty"`
	MinutesAgo    int       `json:"minutes_ago"`
}

type redeemResponse struct {
	Outcome        string                `json:"outcome"`
	Message        string                `json:"message"`
	Reason         string                `json:"reason,omitempty"`
	HoursRemaining *int                  `json:"hours_remaining,omitempty"`
	Ticket         *ticketResponse       `json:"ticket,omitempty"`
	Event          *tickets.EventSummary `json:"event,omitempty"`
	Attendee       *tickets.Attendee     `json:"attendee,omitempty"`
	Greeting       string                `json:"greeting,omitempty"`
	PriorScan      *priorScanResponse    `json:"prior_scan,omitempty"`
}

func newRedeemResponse(result tickets.RedemptionResult) redeemResponse {
	resp := redeemResponse{
		Outcome: string(result.Outcome),
		Message: result.Message(),
	}

	if a := result.Admission; a != nil {
		resp.Ticket = newTicketResponse(a.Ticket)
		event := a.Event
		resp.Event = &event
		attendee := a.Attendee
		resp.Attendee = &attendee
		resp.Greeting = a.Greeting
	}
	if p := result.PriorScan; p != nil {
		resp.PriorScan = &priorScanResponse{
			ScannedAt:     p.ScannedAt,
			ScannedBy:     p.ScannedBy,
			ScannedByName: p.ScannedByName,
			MinutesAgo:    p.MinutesAgo,
		}
	}
	if r := result.Rejection; r != nil {
		resp.Reason = string(r.Reason)
		resp.HoursRemaining = r.HoursRemaining
	}

	return resp
}

func redemptionStatusCode(outcome tickets.Outcome) int {
	switch outcome {
	case tickets.OutcomeAdmitted:
		return http.StatusOK
	case tickets.OutcomeAlreadyScanned:
		return http.StatusConflict
	case tickets.OutcomeRejected:
		return http.StatusUnprocessableEntity
	case tickets.OutcomeUnauthorized:
		return http.StatusForbidden
	case tickets.OutcomeNotFound:
		return http.StatusNotFound
	case tickets.OutcomeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type statusResponse struct {
	Status     string                `json:"status"`
	Message    string                `json:"message"`
	Ticket     *ticketResponse       `json:"ticket,omitempty"`
	Event      *tickets.EventSummary `json:"event,omitempty"`
	ScannedAt  *time.Time            `json:"scanned_at,omitempty"`
	ScannedBy  string                `json:"scanned_by,omitempty"`
	MinutesAgo *int                  `json:"minutes_ago,omitempty"`
}

func newStatusResponse(report tickets.StatusReport) statusResponse {
	resp := statusResponse{
		Status:    string(report.Class),
		Message:   report.Message,
		Event:     report.Event,
		ScannedAt: report.ScannedAt,
		ScannedBy: report.ScannedBy,
	}
	if report.Ticket != nil {
		resp.Ticket = newTicketResponse(*report.Ticket)
	}
	if report.ScannedAt != nil {
		minutes := report.MinutesAgo
		resp.MinutesAgo = &minutes
	}
	return resp
}

func statusReportCode(class tickets.Classification) int {
	if class == tickets.ClassUnauthorized {
		return http.StatusForbidden
	}
	return http.StatusOK
}

// writeError maps infrastructure errors. Only transient failures are worth retrying.
func writeError(c echo.Context, err error) error {
	log.FromContext(c.Request().Context()).WithField("error", err).Error("Ticket operation failed")

	if errors.Is(err, redemption.ErrTransient) {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{
			Error:   "temporarily_unavailable",
			Message: "Please try again",
		})
	}

	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal_error"})
}
