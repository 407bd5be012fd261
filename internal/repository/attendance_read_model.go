package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/settings"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gatekeeper/internal/domain/attendance"
	"gatekeeper/internal/entities"
)

type TransactionManager interface {
	DoWithSettings(ctx context.Context, s trm.Settings, fn func(ctx context.Context) error) error
}

type AttendanceReadModelRepo struct {
	db        *sqlx.DB
	getter    *trmsqlx.CtxGetter
	trManager TransactionManager
}

func NewAttendanceReadModelRepo(
	db *sqlx.DB,
	getter *trmsqlx.CtxGetter,
	trManager TransactionManager,
) *AttendanceReadModelRepo {
	if getter == nil {
		getter = trmsqlx.DefaultCtxGetter
	}

	return &AttendanceReadModelRepo{
		db:        db,
		getter:    getter,
		trManager: trManager,
	}
}

// Get returns the attendance of an event. An event nobody was admitted to yet has an
// empty read model.
func (r *AttendanceReadModelRepo) Get(ctx context.Context, eventID uuid.UUID) (*attendance.Attendance, error) {
	readModel, err := r.find(ctx, eventID, false)
	if err != nil {
		return nil, err
	}
	if readModel == nil {
		return attendance.New(eventID), nil
	}
	return readModel, nil
}

func (r *AttendanceReadModelRepo) OnTicketScanned(ctx context.Context, event *entities.TicketScanned_v1) error {
	eventID, err := uuid.Parse(event.EventID)
	if err != nil {
		return fmt.Errorf("invalid event id %q in TicketScanned_v1: %w", event.EventID, err)
	}

	return r.trManager.DoWithSettings(
		ctx,
		trmsql.MustSettings(
			settings.Must(settings.WithCancelable(true)),
			trmsql.WithTxOptions(&sql.TxOptions{Isolation: sql.LevelReadCommitted}),
		),
		func(ctx context.Context) error {
			if err := r.ensureExists(ctx, eventID); err != nil {
				return err
			}

			readModel, err := r.find(ctx, eventID, true)
			if err != nil {
				return err
			}

			if !readModel.RecordScan(event.TicketID, event.Location, event.ScannedAt) {
				log.FromContext(ctx).
					WithField("ticket_id", event.TicketID).
					Debug("Ticket already counted in attendance, skipping")
				return nil
			}
			readModel.LastUpdate = time.Now().UTC()

			return r.update(ctx, readModel)
		},
	)
}

func (r *AttendanceReadModelRepo) ensureExists(ctx context.Context, eventID uuid.UUID) error {
	payload, err := json.Marshal(attendance.New(eventID))
	if err != nil {
		return err
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, `
		INSERT INTO read_model_event_attendance (event_id, payload)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, eventID, string(payload))
	if err != nil {
		return fmt.Errorf("could not create attendance read model for event %s: %w", eventID, err)
	}

	return nil
}

func (r *AttendanceReadModelRepo) find(ctx context.Context, eventID uuid.UUID, forUpdate bool) (*attendance.Attendance, error) {
	query := "SELECT payload FROM read_model_event_attendance WHERE event_id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}

	var payload []byte
	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowxContext(ctx, query, eventID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not find attendance read model for event %s: %w", eventID, err)
	}

	var readModel attendance.Attendance
	if err := json.Unmarshal(payload, &readModel); err != nil {
		return nil, fmt.Errorf("could not unmarshal attendance read model: %w", err)
	}

	return &readModel, nil
}

func (r *AttendanceReadModelRepo) update(ctx context.Context, readModel *attendance.Attendance) error {
	payload, err := json.Marshal(readModel)
	if err != nil {
		return err
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(
		ctx,
		"UPDATE read_model_event_attendance SET payload = $1 WHERE event_id = $2",
		string(payload),
		readModel.EventID,
	)
	if err != nil {
		return fmt.Errorf("could not update attendance read model: %w", err)
	}

	return nil
}
