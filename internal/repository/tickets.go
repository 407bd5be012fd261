package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"gatekeeper/internal/domain/tickets"
)

const selectTicketWithEvent = `
SELECT
	t.id, t.ticket_type_id, tt.name AS ticket_type_name, t.status,
	t.attendee_name, t.attendee_email, t.scanned_at, t.scanned_by, t.metadata,
	e.id AS event_id, e.organization_id, e.title, e.venue, e.status AS event_status,
	e.start_date, e.end_date
FROM tickets t
	JOIN ticket_types tt ON tt.id = t.ticket_type_id
	JOIN events e ON e.id = tt.event_id
WHERE t.id = $1`

type ticketRow struct {
	ID             string         `db:"id"`
	TicketTypeID   string         `db:"ticket_type_id"`
	TicketTypeName string         `db:"ticket_type_name"`
	Status         string         `db:"status"`
	AttendeeName   string         `db:"attendee_name"`
	AttendeeEmail  string         `db:"attendee_email"`
	ScannedAt      sql.NullTime   `db:"scanned_at"`
	ScannedBy      sql.NullString `db:"scanned_by"`
	Metadata       types.JSONText `db:"metadata"`

	EventID        string       `db:"event_id"`
	OrganizationID string       `db:"organization_id"`
	Title          string       `db:"title"`
	Venue          string       `db:"venue"`
	EventStatus    string       `db:"event_status"`
	StartDate      time.Time    `db:"start_date"`
	EndDate        sql.NullTime `db:"end_date"`
}

type ticketMetadata struct {
	Scan *tickets.ScanMetadata `json:"scan,omitempty"`
}

type TicketsRepo struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
}

func NewTicketsRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter) *TicketsRepo {
	if db == nil {
		panic("missing db")
	}
	if getter == nil {
		getter = trmsqlx.DefaultCtxGetter
	}

	return &TicketsRepo{db: db, getter: getter}
}

func (r *TicketsRepo) Get(ctx context.Context, ticketID string) (tickets.Ticket, tickets.Event, error) {
	return r.get(ctx, ticketID, selectTicketWithEvent)
}

// GetForUpdate must run inside a transaction. The ticket row stays locked until it ends.
func (r *TicketsRepo) GetForUpdate(ctx context.Context, ticketID string) (tickets.Ticket, tickets.Event, error) {
	return r.get(ctx, ticketID, selectTicketWithEvent+" FOR UPDATE OF t")
}

func (r *TicketsRepo) get(ctx context.Context, ticketID, query string) (tickets.Ticket, tickets.Event, error) {
	id, err := uuid.Parse(ticketID)
	if err != nil {
		return tickets.Ticket{}, tickets.Event{}, tickets.ErrTicketNotFound
	}

	var row ticketRow
	err = sqlx.GetContext(ctx, r.getter.DefaultTrOrDB(ctx, r.db), &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return tickets.Ticket{}, tickets.Event{}, tickets.ErrTicketNotFound
	}
	if err != nil {
		return tickets.Ticket{}, tickets.Event{}, fmt.Errorf("could not get ticket %s: %w", ticketID, translateError(err))
	}

	return row.toDomain()
}

func (row ticketRow) toDomain() (tickets.Ticket, tickets.Event, error) {
	status, err := tickets.ParseStatus(row.Status)
	if err != nil {
		return tickets.Ticket{}, tickets.Event{}, fmt.Errorf("%w: ticket %s: %w", tickets.ErrMalformedRow, row.ID, err)
	}

	var meta ticketMetadata
	if len(row.Metadata) > 0 {
		if err := row.Metadata.Unmarshal(&meta); err != nil {
			return tickets.Ticket{}, tickets.Event{}, fmt.Errorf("%w: ticket %s metadata: %w", tickets.ErrMalformedRow, row.ID, err)
		}
	}

	eventStatus, err := tickets.ParseEventStatus(row.EventStatus)
	if err != nil {
		return tickets.Ticket{}, tickets.Event{}, fmt.Errorf("%w: ticket %s: %w", tickets.ErrMalformedRow, row.ID, err)
	}

	ticket := tickets.Ticket{
		ID:             row.ID,
		TicketTypeID:   row.TicketTypeID,
		TicketTypeName: row.TicketTypeName,
		Status:         status,
		AttendeeName:   row.AttendeeName,
		AttendeeEmail:  row.AttendeeEmail,
		LastScan:       meta.Scan,
	}
	if row.ScannedAt.Valid {
		scannedAt := row.ScannedAt.Time.UTC()
		ticket.ScannedAt = &scannedAt
	}
	if row.ScannedBy.Valid {
		scannedBy := row.ScannedBy.String
		ticket.ScannedBy = &scannedBy
	}

	event := tickets.Event{
		ID:             row.EventID,
		OrganizationID: row.OrganizationID,
		Title:          row.Title,
		Venue:          row.Venue,
		Status:         eventStatus,
		StartDate:      row.StartDate.UTC(),
	}
	if row.EndDate.Valid {
		endDate := row.EndDate.Time.UTC()
		event.EndDate = &endDate
	}

	if err := ticket.Validate(); err != nil {
		return tickets.Ticket{}, tickets.Event{}, err
	}
	if err := event.Validate(); err != nil {
		return tickets.Ticket{}, tickets.Event{}, err
	}

	return ticket, event, nil
}

// MarkScanned only touches a ticket that is still valid and unscanned, so at most one
// caller ever gets true for a ticket.
func (r *TicketsRepo) MarkScanned(ctx context.Context, scan tickets.Scan) (bool, error) {
	scanJSON, err := json.Marshal(scan.Metadata)
	if err != nil {
		return false, fmt.Errorf("could not marshal scan metadata: %w", err)
	}

	res, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, `
		UPDATE tickets
		SET status = 'scanned',
			scanned_at = $2,
			scanned_by = $3,
			metadata = COALESCE(metadata, '{}'::jsonb) || jsonb_build_object('scan', $4::jsonb)
		WHERE id = $1 AND status = 'valid' AND scanned_at IS NULL
	`, scan.TicketID, scan.ScannedAt, scan.ScannedBy, string(scanJSON))
	if err != nil {
		return false, fmt.Errorf("could not mark ticket %s scanned: %w", scan.TicketID, translateError(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read affected rows: %w", err)
	}

	return affected == 1, nil
}
