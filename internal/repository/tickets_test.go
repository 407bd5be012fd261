package repository_test

import (
	"context"
	"sync"
	"time"

	"github.com/AlekSi/pointer"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gatekeeper/internal/application/authorization"
	"gatekeeper/internal/application/usecases/redemption"
	"gatekeeper/internal/clock"
	"gatekeeper/internal/domain/staff"
	"gatekeeper/internal/domain/tickets"
	"gatekeeper/internal/entities"
	"gatekeeper/internal/repository"
)

func (s *RepositorySuite) TestTicketsRepo_Get() {
	now := time.Now().UTC()
	f := s.createEvent(now.Add(time.Hour), pointer.To(now.Add(3*time.Hour)), "scheduled")
	ticketID := s.createTicket(f, "valid")

	repo := repository.NewTicketsRepo(s.db, trmsqlx.DefaultCtxGetter)

	ticket, event, err := repo.Get(s.ctx, ticketID)
	s.Require().NoError(err)

	s.Equal(ticketID, ticket.ID)
	s.Equal(tickets.StatusValid, ticket.Status)
	s.Equal("General Admission", ticket.TicketTypeName)
	s.Equal("Ada", ticket.AttendeeName)
	s.Nil(ticket.ScannedAt)
	s.Equal(f.EventID, event.ID)
	s.Equal(f.OrganizationID, event.OrganizationID)
	s.Equal("Concert", event.Title)
	s.Require().NotNil(event.EndDate)
}

func (s *RepositorySuite) TestTicketsRepo_GetUnknownTicket() {
	repo := repository.NewTicketsRepo(s.db, nil)

	_, _, err := repo.Get(s.ctx, uuid.NewString())
	s.ErrorIs(err, tickets.ErrTicketNotFound)

	_, _, err = repo.Get(s.ctx, "not-a-uuid")
	s.ErrorIs(err, tickets.ErrTicketNotFound)
}

func (s *RepositorySuite) TestTicketsRepo_GetMalformedRow() {
	repo := repository.NewTicketsRepo(s.db, nil)

	now := time.Now().UTC()
	f := s.createEvent(now, pointer.To(now.Add(-time.Hour)), "scheduled")
	ticketID := s.createTicket(f, "valid")

	_, _, err := repo.Get(s.ctx, ticketID)
	s.ErrorIs(err, tickets.ErrMalformedRow)

	unknown := s.createEvent(now, nil, "sold_out")
	ticketID = s.createTicket(unknown, "valid")

	_, _, err = repo.Get(s.ctx, ticketID)
	s.ErrorIs(err, tickets.ErrMalformedRow)
}

func (s *RepositorySuite) TestTicketsRepo_MarkScannedOnlyOnce() {
	now := time.Now().UTC()
	f := s.createEvent(now, nil, "scheduled")
	ticketID := s.createTicket(f, "valid")

	repo := repository.NewTicketsRepo(s.db, nil)
	scan := tickets.Scan{
		TicketID:  ticketID,
		ScannedAt: now.Truncate(time.Microsecond),
		ScannedBy: "staff-1",
		Metadata: tickets.ScanMetadata{
			Location:  "Gate A",
			Notes:     "VIP",
			ScannerID: "staff-1",
			ScannedAt: now.Truncate(time.Microsecond),
		},
	}

	marked, err := repo.MarkScanned(s.ctx, scan)
	s.Require().NoError(err)
	s.True(marked)

	marked, err = repo.MarkScanned(s.ctx, scan)
	s.Require().NoError(err)
	s.False(marked)

	ticket, _, err := repo.Get(s.ctx, ticketID)
	s.Require().NoError(err)
	s.Equal(tickets.StatusScanned, ticket.Status)
	s.Require().NotNil(ticket.ScannedAt)
	s.True(scan.ScannedAt.Equal(*ticket.ScannedAt))
	s.Equal("staff-1", pointer.Get(ticket.ScannedBy))
	s.Require().NotNil(ticket.LastScan)
	s.Equal("Gate A", ticket.LastScan.Location)
	s.Equal("VIP", ticket.LastScan.Notes)
}

func (s *RepositorySuite) TestTicketsRepo_MarkScannedLeavesTerminalTickets() {
	f := s.createEvent(time.Now().UTC(), nil, "scheduled")
	repo := repository.NewTicketsRepo(s.db, nil)

	for _, status := range []string{"cancelled", "refunded", "transferred"} {
		ticketID := s.createTicket(f, status)

		marked, err := repo.MarkScanned(s.ctx, tickets.Scan{TicketID: ticketID, ScannedAt: time.Now(), ScannedBy: "staff-1"})
		s.Require().NoError(err)
		s.False(marked, status)

		ticket, _, err := repo.Get(s.ctx, ticketID)
		s.Require().NoError(err)
		s.Equal(tickets.Status(status), ticket.Status)
	}
}

type countingPublisher struct {
	mu     sync.Mutex
	events []entities.TicketScanned_v1
}

func (p *countingPublisher) PublishTicketScanned(_ context.Context, event entities.TicketScanned_v1) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)
	return nil
}

func (s *RepositorySuite) TestConcurrentRedemptionsAdmitOnce() {
	now := time.Now().UTC()
	f := s.createEvent(now.Add(30*time.Minute), pointer.To(now.Add(3*time.Hour)), "scheduled")
	ticketID := s.createTicket(f, "valid")

	staffRepo := repository.NewStaffRepo(s.db)
	s.Require().NoError(staffRepo.Grant(s.ctx, "door-1", f.OrganizationID, staff.RoleStaff))

	publisher := &countingPublisher{}
	auditLog := repository.NewAuditLogRepo(s.db)

	engine := redemption.NewEngine(
		repository.NewTicketsRepo(s.db, trmsqlx.DefaultCtxGetter),
		authorization.NewGate(staffRepo),
		auditLog,
		publisher,
		s.trManager,
		clock.NewSystem(),
		tickets.DefaultWindowPolicy(),
	)

	const attempts = 10
	outcomes := make([]tickets.Outcome, attempts)

	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		i := i
		g.Go(func() error {
			result, err := engine.AttemptRedeem(s.ctx, redemption.RedeemRequest{
				TicketID: ticketID,
				Staff:    staff.Staff{ID: "door-1", OrganizationID: f.OrganizationID},
				Location: "Gate A",
			})
			outcomes[i] = result.Outcome
			return err
		})
	}
	s.Require().NoError(g.Wait())

	admitted := 0
	for _, o := range outcomes {
		if o == tickets.OutcomeAdmitted {
			admitted++
		} else {
			s.Equal(tickets.OutcomeAlreadyScanned, o)
		}
	}
	s.Equal(1, admitted)
	s.Len(publisher.events, 1)

	entries, err := auditLog.ForRecord(s.ctx, "tickets", ticketID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("door-1", entries[0].ActorID)
	s.Equal("scanned", entries[0].After["status"])
	s.Equal("valid", entries[0].Before["status"])
}
