package events

import (
	"context"

	"gatekeeper/internal/entities"
)

//go:generate mockgen -destination=mocks/spreadsheets_service_mock.go -package=mocks . SpreadsheetsService
type SpreadsheetsService interface {
	AppendRow(ctx context.Context, req entities.AppendToTrackerRequest) error
}

//go:generate mockgen -destination=mocks/attendance_read_model_mock.go -package=mocks . AttendanceReadModel
type AttendanceReadModel interface {
	OnTicketScanned(ctx context.Context, event *entities.TicketScanned_v1) error
}

type EventRepository interface {
	SaveEvent(ctx context.Context, event entities.DatalakeEvent) error
}

type Handler struct {
	spreadsheetsClient SpreadsheetsService
	attendance         AttendanceReadModel
}

func NewHandler(
	spreadsheetsClient SpreadsheetsService,
	attendance AttendanceReadModel,
) *Handler {
	if spreadsheetsClient == nil {
		panic("missing spreadsheets client")
	}
	if attendance == nil {
		panic("missing attendance read model")
	}

	return &Handler{
		spreadsheetsClient: spreadsheetsClient,
		attendance:         attendance,
	}
}
