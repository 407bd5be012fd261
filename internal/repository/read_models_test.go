package repository_test

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"gatekeeper/internal/entities"
	"gatekeeper/internal/repository"
)

func (s *RepositorySuite) TestAttendanceReadModel_countsEachTicketOnce() {
	repo := repository.NewAttendanceReadModelRepo(s.db, nil, s.trManager)
	eventID := uuid.New()
	scannedAt := time.Now().UTC().Truncate(time.Second)

	empty, err := repo.Get(s.ctx, eventID)
	s.Require().NoError(err)
	s.Zero(empty.AdmittedCount)

	first := &entities.TicketScanned_v1{
		Header:    entities.NewEventHeader(),
		TicketID:  uuid.NewString(),
		EventID:   eventID.String(),
		ScannedAt: scannedAt,
		Location:  "Gate A",
	}
	second := &entities.TicketScanned_v1{
		Header:    entities.NewEventHeader(),
		TicketID:  uuid.NewString(),
		EventID:   eventID.String(),
		ScannedAt: scannedAt.Add(time.Minute),
	}

	s.Require().NoError(repo.OnTicketScanned(s.ctx, first))
	s.Require().NoError(repo.OnTicketScanned(s.ctx, second))
	s.Require().NoError(repo.OnTicketScanned(s.ctx, first))

	readModel, err := repo.Get(s.ctx, eventID)
	s.Require().NoError(err)

	s.Equal(2, readModel.AdmittedCount)
	s.Equal(map[string]int{"Gate A": 1, "unspecified": 1}, readModel.ByLocation)
	s.Require().NotNil(readModel.LastScanAt)
	s.True(second.ScannedAt.Equal(*readModel.LastScanAt))
}

func (s *RepositorySuite) TestDatalakeRepo_SaveEventIsIdempotent() {
	repo := repository.NewDatalakeRepo(s.db)

	payload, err := json.Marshal(map[string]string{"ticket_id": uuid.NewString()})
	s.Require().NoError(err)

	eventName := "TicketScanned_v1_" + uuid.NewString()
	event := entities.DatalakeEvent{
		Id:          uuid.New(),
		PublishedAt: time.Now().UTC(),
		EventName:   eventName,
		Payload:     payload,
	}

	s.Require().NoError(repo.SaveEvent(s.ctx, event))
	s.Require().NoError(repo.SaveEvent(s.ctx, event))

	events, err := repo.Events(s.ctx, eventName)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(event.Id, events[0].Id)
	s.JSONEq(string(payload), string(events[0].Payload))
}
