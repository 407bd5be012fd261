package redemption

import (
	"context"

	"github.com/avito-tech/go-transaction-manager/trm/v2"

	"gatekeeper/internal/domain/audit"
	"gatekeeper/internal/domain/staff"
	"gatekeeper/internal/domain/tickets"
	"gatekeeper/internal/entities"
)

//go:generate mockgen -destination=mocks/tickets_repository_mock.go -package=mocks . TicketsRepository
type TicketsRepository interface {
	// GetForUpdate loads a ticket with its event and locks the ticket row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, ticketID string) (tickets.Ticket, tickets.Event, error)
	Get(ctx context.Context, ticketID string) (tickets.Ticket, tickets.Event, error)
	// MarkScanned moves a valid ticket to scanned. It reports false, without error,
	// when the ticket was no longer valid.
	MarkScanned(ctx context.Context, scan tickets.Scan) (bool, error)
}

//go:generate mockgen -destination=mocks/staff_authorizer_mock.go -package=mocks . StaffAuthorizer
type StaffAuthorizer interface {
	AuthorizeScan(ctx context.Context, s staff.Staff) (staff.Grant, error)
}

//go:generate mockgen -destination=mocks/audit_log_mock.go -package=mocks . AuditLog
type AuditLog interface {
	Append(ctx context.Context, entry audit.Entry) error
}

//go:generate mockgen -destination=mocks/scan_events_publisher_mock.go -package=mocks . ScanEventsPublisher
type ScanEventsPublisher interface {
	// PublishTicketScanned must write through the transaction carried by ctx.
	PublishTicketScanned(ctx context.Context, event entities.TicketScanned_v1) error
}

type TransactionManager interface {
	DoWithSettings(ctx context.Context, s trm.Settings, fn func(ctx context.Context) error) error
}
