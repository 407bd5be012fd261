package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/clients"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"gatekeeper/internal/app"
	"gatekeeper/internal/clock"
	"gatekeeper/internal/config"
	ticketsClients "gatekeeper/internal/infrastructure/clients"
	"gatekeeper/internal/interfaces/message/outbox"
	"gatekeeper/internal/observability"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logrus.WithError(err).Fatal("failed to load .env")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log.Init(cfg.LogLevel)

	if cfg.JaegerEndpoint != "" {
		tp, err := observability.ConfigureTraceProvider(cfg.JaegerEndpoint)
		if err != nil {
			logrus.WithError(err).Fatal("failed to configure trace provider")
		}
		defer func() {
			_ = tp.Shutdown(context.Background())
		}()
	}

	secrets, err := cfg.Secrets()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load secrets")
	}

	db, err := sqlx.Connect("postgres", secrets.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: secrets.RedisAddr,
	})
	defer redisClient.Close()

	apiClients, err := clients.NewClients(secrets.GatewayAddr, nil)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create gateway clients")
	}

	watermillLogger := log.NewWatermill(logrus.NewEntry(logrus.StandardLogger()))

	application, err := app.NewApp(
		cfg,
		watermillLogger,
		ticketsClients.NewSpreadsheetsClient(apiClients),
		redisClient,
		db,
		clock.NewSystem(),
		outbox.DefaultForwarderConfig(),
	)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create app")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go refreshSecretsOnHangup(ctx, cfg)

	if err := application.Run(ctx); err != nil {
		logrus.WithError(err).Error("app stopped with error")
		os.Exit(1)
	}
}

// refreshSecretsOnHangup re-reads secrets on SIGHUP. Connections opened at startup are kept.
func refreshSecretsOnHangup(ctx context.Context, cfg *config.Config) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := cfg.Refresh(); err != nil {
				logrus.WithError(err).Error("failed to refresh secrets")
				continue
			}
			logrus.Info("secrets refreshed")
		}
	}
}
