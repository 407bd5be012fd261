package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gatekeeper/internal/application/usecases/redemption"
	"gatekeeper/internal/domain/attendance"
	"gatekeeper/internal/domain/staff"
	"gatekeeper/internal/domain/tickets"
)

type RedemptionEngine interface {
	AttemptRedeem(ctx context.Context, req redemption.RedeemRequest) (tickets.RedemptionResult, error)
	CheckStatus(ctx context.Context, ticketID string, s staff.Staff) (tickets.StatusReport, error)
}

type AttendanceReadModel interface {
	Get(ctx context.Context, eventID uuid.UUID) (*attendance.Attendance, error)
}

// SigningKeyFunc returns the current token signing key. It is called per request so a
// rotated key applies without restart.
type SigningKeyFunc func() ([]byte, error)

type Server struct {
	e    *echo.Echo
	addr string

	engine     RedemptionEngine
	attendance AttendanceReadModel
}

func NewServer(
	e *echo.Echo,
	addr string,
	engine RedemptionEngine,
	attendance AttendanceReadModel,
	signingKey SigningKeyFunc,
	routerIsRunning func() bool,
) *Server {
	srv := &Server{
		e:          e,
		addr:       addr,
		engine:     engine,
		attendance: attendance,
	}

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log.FromContext(c.Request().Context()).
				WithField("path", c.Request().URL.Path).
				Debug("Handling a request")

			err := next(c)
			if err != nil {
				log.FromContext(c.Request().Context()).
					WithField("error", err).
					Error("Request handling error")
			}

			return err
		}
	})

	e.GET("/health", func(c echo.Context) error {
		if !routerIsRunning() {
			return c.String(http.StatusServiceUnavailable, "router is not running")
		}
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authorized := e.Group("", StaffAuthMiddleware(signingKey))
	authorized.POST("/tickets/:ticket_id/redeem", srv.RedeemTicketHandler)
	authorized.GET("/tickets/:ticket_id/status", srv.TicketStatusHandler)
	authorized.GET("/events/:event_id/attendance", srv.EventAttendanceHandler)

	return srv
}

func (s *Server) Start() error {
	err := s.e.Start(s.addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
