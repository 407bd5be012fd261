package redemption

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/settings"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gatekeeper/internal/clock"
	"gatekeeper/internal/domain/audit"
	"gatekeeper/internal/domain/staff"
	"gatekeeper/internal/domain/tickets"
	"gatekeeper/internal/entities"
	"gatekeeper/internal/idempotency"
)

const (
	MaxNotesLength    = 500
	MaxLocationLength = 255

	auditWriteTimeout = 5 * time.Second
)

// ErrTransient marks infrastructure failures. Nothing was changed and the whole
// call may be retried.
var ErrTransient = errors.New("transient failure")

var tracer = otel.Tracer("gatekeeper/redemption")

type RedeemRequest struct {
	TicketID string
	Staff    staff.Staff
	Location string
	Notes    string
}

func (r RedeemRequest) validate() string {
	switch {
	case r.TicketID == "":
		return "ticket id is required"
	case utf8.RuneCountInString(r.Notes) > MaxNotesLength:
		return fmt.Sprintf("notes must be at most %d characters", MaxNotesLength)
	case utf8.RuneCountInString(r.Location) > MaxLocationLength:
		return fmt.Sprintf("location must be at most %d characters", MaxLocationLength)
	}
	return ""
}

type Engine struct {
	ticketsRepo TicketsRepository
	authorizer  StaffAuthorizer
	auditLog    AuditLog
	publisher   ScanEventsPublisher
	trManager   TransactionManager
	clock       clock.Clock
	policy      tickets.WindowPolicy
}

func NewEngine(
	ticketsRepo TicketsRepository,
	authorizer StaffAuthorizer,
	auditLog AuditLog,
	publisher ScanEventsPublisher,
	trManager TransactionManager,
	clk clock.Clock,
	policy tickets.WindowPolicy,
) *Engine {
	return &Engine{
		ticketsRepo: ticketsRepo,
		authorizer:  authorizer,
		auditLog:    auditLog,
		publisher:   publisher,
		trManager:   trManager,
		clock:       clk,
		policy:      policy,
	}
}

func redeemTxSettings() trmsql.Settings {
	return trmsql.MustSettings(
		settings.Must(settings.WithCancelable(true)),
		trmsql.WithTxOptions(&sql.TxOptions{Isolation: sql.LevelReadCommitted}),
	)
}

// AttemptRedeem decides whether a ticket may be admitted and, if so, marks it
// scanned exactly once. Business outcomes are returned as results; the error is
// reserved for infrastructure failures.
func (e *Engine) AttemptRedeem(ctx context.Context, req RedeemRequest) (tickets.RedemptionResult, error) {
	ctx, span := tracer.Start(ctx, "redemption.AttemptRedeem", trace.WithAttributes(
		attribute.String("ticket.id", req.TicketID),
		attribute.String("staff.id", req.Staff.ID),
	))
	defer span.End()

	start := time.Now()
	result, err := e.attemptRedeem(ctx, req)
	observeScan(result, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		log.FromContext(ctx).
			WithField("ticket_id", req.TicketID).
			WithField("staff_id", req.Staff.ID).
			WithField("error", err).
			Error("Ticket redemption failed")

		return tickets.RedemptionResult{}, err
	}

	span.SetAttributes(attribute.String("redemption.outcome", string(result.Outcome)))

	logger := log.FromContext(ctx).
		WithField("ticket_id", req.TicketID).
		WithField("staff_id", req.Staff.ID).
		WithField("outcome", result.Outcome)
	if key, ok := idempotency.FromContext(ctx); ok {
		logger = logger.WithField("idempotency_key", key)
	}
	logger.Info(result.Message())

	return result, nil
}

func (e *Engine) attemptRedeem(ctx context.Context, req RedeemRequest) (tickets.RedemptionResult, error) {
	grant, err := e.authorizer.AuthorizeScan(ctx, req.Staff)
	if err != nil {
		return tickets.RedemptionResult{}, fmt.Errorf("%w: authorize staff %s: %w", ErrTransient, req.Staff.ID, err)
	}
	if !grant.Allowed {
		return tickets.Unauthorized(), nil
	}

	if problem := req.validate(); problem != "" {
		return tickets.InvalidRequest(problem), nil
	}

	var (
		result   tickets.RedemptionResult
		admitted *tickets.Scan
	)

	err = e.trManager.DoWithSettings(ctx, redeemTxSettings(), func(ctx context.Context) error {
		ticket, event, err := e.ticketsRepo.GetForUpdate(ctx, req.TicketID)
		if errors.Is(err, tickets.ErrTicketNotFound) {
			result = tickets.NotFound()
			return nil
		}
		if err != nil {
			return fmt.Errorf("get ticket for update: %w", err)
		}

		if !grant.CoversOrganization(req.Staff.OrganizationID, event.OrganizationID) {
			result = tickets.NotFound()
			return nil
		}

		now := e.clock.Now()
		if rejection, rejected := tickets.EvaluateRedemption(ticket, event, now, e.policy); rejected {
			result = rejection
			return nil
		}

		scan := tickets.Scan{
			TicketID:  ticket.ID,
			ScannedAt: now,
			ScannedBy: req.Staff.ID,
			Metadata: tickets.ScanMetadata{
				Location:     req.Location,
				Notes:        req.Notes,
				ScannerID:    req.Staff.ID,
				ScannerEmail: req.Staff.Email,
				ScannerName:  req.Staff.Name(),
				ScannedAt:    now,
			},
		}

		marked, err := e.ticketsRepo.MarkScanned(ctx, scan)
		if err != nil {
			return fmt.Errorf("mark ticket scanned: %w", err)
		}
		if !marked {
			// lost the conditional update to a concurrent scan
			current, _, err := e.ticketsRepo.Get(ctx, ticket.ID)
			if err != nil {
				return fmt.Errorf("reload ticket after lost update: %w", err)
			}
			if rejection, rejected := tickets.EvaluateRedemption(current, event, now, e.policy); rejected {
				result = rejection
				return nil
			}
			return fmt.Errorf("ticket %s was not updated but is still valid", ticket.ID)
		}

		ticket.Status = tickets.StatusScanned
		ticket.ScannedAt = &scan.ScannedAt
		ticket.ScannedBy = &scan.ScannedBy
		ticket.LastScan = &scan.Metadata

		err = e.publisher.PublishTicketScanned(ctx, entities.TicketScanned_v1{
			Header:       entities.NewEventHeaderWithIdempotencyKey(idempotency.EventKey("TicketScanned_v1", ticket.ID)),
			TicketID:     ticket.ID,
			TicketTypeID: ticket.TicketTypeID,
			EventID:      event.ID,
			ScannedAt:    scan.ScannedAt,
			ScannedBy:    scan.ScannedBy,
			ScannerEmail: req.Staff.Email,
			Location:     req.Location,
		})
		if err != nil {
			return fmt.Errorf("publish TicketScanned_v1: %w", err)
		}

		result = tickets.Admitted(ticket, event)
		admitted = &scan
		return nil
	})
	if err != nil {
		return tickets.RedemptionResult{}, storeError(err)
	}

	if admitted != nil {
		e.appendAuditEntry(ctx, req.Staff, *admitted)
	}

	return result, nil
}

// appendAuditEntry runs after the scan has committed. A failure here is logged and
// never changes the admission.
func (e *Engine) appendAuditEntry(ctx context.Context, s staff.Staff, scan tickets.Scan) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	entry := audit.NewTicketScannedEntry(scan.TicketID, s.ID, s.Email, scan.ScannedAt)
	if err := e.auditLog.Append(ctx, entry); err != nil {
		auditLogFailuresTotal.Inc()
		log.FromContext(ctx).
			WithField("ticket_id", scan.TicketID).
			WithField("staff_id", s.ID).
			WithField("error", err).
			Error("Failed to append audit log entry for admitted ticket")
	}
}

// CheckStatus classifies a ticket without changing it.
func (e *Engine) CheckStatus(ctx context.Context, ticketID string, s staff.Staff) (tickets.StatusReport, error) {
	ctx, span := tracer.Start(ctx, "redemption.CheckStatus", trace.WithAttributes(
		attribute.String("ticket.id", ticketID),
		attribute.String("staff.id", s.ID),
	))
	defer span.End()

	grant, err := e.authorizer.AuthorizeScan(ctx, s)
	if err != nil {
		return tickets.StatusReport{}, fmt.Errorf("%w: authorize staff %s: %w", ErrTransient, s.ID, err)
	}
	if !grant.Allowed {
		return tickets.UnauthorizedReport(), nil
	}

	if ticketID == "" {
		return tickets.InvalidReport("Ticket id is required"), nil
	}

	ticket, event, err := e.ticketsRepo.Get(ctx, ticketID)
	if errors.Is(err, tickets.ErrTicketNotFound) {
		return tickets.InvalidReport("Ticket not found"), nil
	}
	if err != nil {
		span.RecordError(err)
		return tickets.StatusReport{}, storeError(fmt.Errorf("get ticket: %w", err))
	}

	if !grant.CoversOrganization(s.OrganizationID, event.OrganizationID) {
		return tickets.InvalidReport("Ticket not found"), nil
	}

	return tickets.Classify(ticket, event, e.clock.Now(), e.policy), nil
}

func storeError(err error) error {
	if errors.Is(err, tickets.ErrMalformedRow) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}
