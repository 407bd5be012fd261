package app

import (
	"context"
	"fmt"
	"os"
	"time"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"gatekeeper/internal/application/authorization"
	"gatekeeper/internal/application/usecases/redemption"
	"gatekeeper/internal/clock"
	"gatekeeper/internal/config"
	"gatekeeper/internal/domain/tickets"
	"gatekeeper/internal/infrastructure/event_publisher"
	"gatekeeper/internal/interfaces/http"
	watermillMessage "gatekeeper/internal/interfaces/message"
	"gatekeeper/internal/interfaces/message/events"
	"gatekeeper/internal/interfaces/message/outbox"
	"gatekeeper/internal/repository"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger    zerolog.Logger
	router    *message.Router
	forwarder *outbox.Forwarder
	srv       *http.Server
	db        *sqlx.DB
}

func NewApp(
	cfg *config.Config,
	watermillLogger watermill.LoggerAdapter,
	spreadsheetsClient events.SpreadsheetsService,
	redisClient *redis.Client,
	db *sqlx.DB,
	clk clock.Clock,
	forwarderConfig outbox.ForwarderConfig,
) (*App, error) {
	trManager, err := manager.New(trmsqlx.NewDefaultFactory(db))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction manager: %w", err)
	}

	ticketsRepo := repository.NewTicketsRepo(db, trmsqlx.DefaultCtxGetter)
	staffRepo := repository.NewStaffRepo(db)
	auditLogRepo := repository.NewAuditLogRepo(db)
	datalakeRepo := repository.NewDatalakeRepo(db)
	attendanceRepo := repository.NewAttendanceReadModelRepo(db, trmsqlx.DefaultCtxGetter, trManager)

	redisPublisher, err := event_publisher.NewRedisPublisher(redisClient, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis publisher: %w", err)
	}

	engine := redemption.NewEngine(
		ticketsRepo,
		authorization.NewGate(staffRepo),
		auditLogRepo,
		outbox.NewScanEventsPublisher(trmsqlx.DefaultCtxGetter, watermillLogger),
		trManager,
		clk,
		tickets.WindowPolicy{
			Lead:  cfg.ScanWindowLead,
			Grace: cfg.ScanWindowGrace,
		},
	)

	router, err := watermillMessage.NewRouter(
		watermillLogger,
		redisClient,
		redisPublisher,
		events.NewHandler(spreadsheetsClient, attendanceRepo),
		datalakeRepo,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	forwarder, err := outbox.NewForwarder(db, redisPublisher, watermillLogger, forwarderConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox forwarder: %w", err)
	}

	srv := http.NewServer(
		commonHTTP.NewEcho(),
		cfg.HTTPAddr,
		engine,
		attendanceRepo,
		cfg.JWTSigningKey,
		router.IsRunning,
	)

	return &App{
		logger:    zerolog.New(os.Stdout).With().Timestamp().Str("service", "gatekeeper").Logger(),
		router:    router,
		forwarder: forwarder,
		srv:       srv,
		db:        db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if err := repository.InitializeDBSchema(ctx, a.db); err != nil {
		return fmt.Errorf("failed to initialize db schema: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Msg("starting router")
		return a.router.Run(ctx)
	})

	g.Go(func() error {
		a.logger.Info().Msg("starting outbox forwarder")
		return a.forwarder.Run(ctx)
	})

	g.Go(func() error {
		select {
		case <-a.router.Running():
		case <-ctx.Done():
			return nil
		}
		a.logger.Info().Msg("router is running")

		a.logger.Info().Msg("starting http server")
		return a.srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info().Msg("shutting down")

		// ctx is already cancelled, shutdown gets a fresh one
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := a.srv.Stop(shutdownCtx); err != nil {
			a.logger.Err(err).Msg("error stopping http server")
			return err
		}
		return nil
	})

	return g.Wait()
}
