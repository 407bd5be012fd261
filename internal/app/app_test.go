package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/lithammer/shortuuid/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"gatekeeper/internal/app"
	"gatekeeper/internal/clock"
	"gatekeeper/internal/config"
	"gatekeeper/internal/entities"
	ticketsHttp "gatekeeper/internal/interfaces/http"
	"gatekeeper/internal/interfaces/message/events/mocks"
	"gatekeeper/internal/interfaces/message/outbox"
)

const (
	httpAddr   = "127.0.0.1:18090"
	signingKey = "component-test-signing-key-0123456789"
)

type ComponentTestSuite struct {
	suite.Suite

	ctx    context.Context
	cancel context.CancelFunc

	ctrl             *gomock.Controller
	spreadsheetsMock *mocks.MockSpreadsheetsService
	appendedRows     atomic.Int32

	containers  []testcontainers.Container
	db          *sqlx.DB
	redisClient *redis.Client
	httpClient  *http.Client

	organizationID string
	staffID        string
	done           chan error
}

func TestComponentTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping component tests in short mode")
	}
	suite.Run(t, new(ComponentTestSuite))
}

func (s *ComponentTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.httpClient = &http.Client{Timeout: 5 * time.Second}

	s.ctrl = gomock.NewController(s.T())
	s.spreadsheetsMock = mocks.NewMockSpreadsheetsService(s.ctrl)
	s.spreadsheetsMock.EXPECT().AppendRow(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ entities.AppendToTrackerRequest) error {
			s.appendedRows.Add(1)
			return nil
		}).
		AnyTimes()

	postgresURL, redisAddr := os.Getenv("POSTGRES_URL"), os.Getenv("REDIS_ADDR")
	if postgresURL == "" || redisAddr == "" {
		postgresURL, redisAddr = s.startContainers()
	}

	var err error
	s.db, err = sqlx.Open("postgres", postgresURL)
	s.Require().NoError(err)
	s.Require().EventuallyWithT(func(t *assert.CollectT) {
		assert.NoError(t, s.db.PingContext(s.ctx))
	}, 30*time.Second, 200*time.Millisecond)

	s.redisClient = redis.NewClient(&redis.Options{Addr: redisAddr})
	s.Require().NoError(s.redisClient.Ping(s.ctx).Err())

	env := map[string]string{
		"HTTP_ADDR":       httpAddr,
		"DATABASE_URL":    postgresURL,
		"REDIS_ADDR":      redisAddr,
		"JWT_SIGNING_KEY": signingKey,
	}
	cfg, err := config.Load(config.WithLookup(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}))
	s.Require().NoError(err)

	forwarderConfig := outbox.DefaultForwarderConfig()
	forwarderConfig.PollInterval = 20 * time.Millisecond

	application, err := app.NewApp(
		cfg,
		watermill.NopLogger{},
		s.spreadsheetsMock,
		s.redisClient,
		s.db,
		clock.NewSystem(),
		forwarderConfig,
	)
	s.Require().NoError(err)

	s.done = make(chan error, 1)
	go func() {
		s.done <- application.Run(s.ctx)
	}()

	s.waitForHttpServer()
	s.seedStaff()
}

func (s *ComponentTestSuite) TearDownSuite() {
	s.cancel()
	if s.done != nil {
		select {
		case err := <-s.done:
			s.NoError(err)
		case <-time.After(15 * time.Second):
			s.Fail("app did not stop in time")
		}
	}

	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	for _, c := range s.containers {
		_ = c.Terminate(context.Background())
	}
}

func (s *ComponentTestSuite) TestScanIsAdmittedOnceAndProjected() {
	eventID, ticketID := s.createTicket(time.Now().Add(-30 * time.Minute))

	resp := s.redeem(ticketID, "idem-1")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("idem-1", resp.Header.Get("Idempotency-Key"))
	s.Equal("admitted", s.decodeOutcome(resp))

	resp = s.redeem(ticketID, "idem-2")
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("already_scanned", s.decodeOutcome(resp))

	s.Require().EventuallyWithT(func(t *assert.CollectT) {
		resp := s.get("/events/" + eventID + "/attendance")
		defer resp.Body.Close()

		var body struct {
			AdmittedCount int            `json:"admitted_count"`
			ByLocation    map[string]int `json:"by_location"`
		}
		if !assert.Equal(t, http.StatusOK, resp.StatusCode) {
			return
		}
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 1, body.AdmittedCount)
		assert.Equal(t, 1, body.ByLocation["Gate A"])
	}, 20*time.Second, 100*time.Millisecond)

	s.Require().Eventually(func() bool {
		return s.appendedRows.Load() >= 1
	}, 20*time.Second, 100*time.Millisecond)

	var auditEntries int
	s.Require().NoError(s.db.GetContext(s.ctx, &auditEntries,
		`SELECT COUNT(*) FROM audit_logs WHERE record_id = $1`, ticketID))
	s.Equal(1, auditEntries)
}

func (s *ComponentTestSuite) TestScanBeforeWindowIsRejected() {
	_, ticketID := s.createTicket(time.Now().Add(5 * time.Hour))

	resp := s.redeem(ticketID, "")
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Equal("rejected", s.decodeOutcome(resp))

	var status string
	s.Require().NoError(s.db.GetContext(s.ctx, &status, `SELECT status FROM tickets WHERE id = $1`, ticketID))
	s.Equal("valid", status)
}

func (s *ComponentTestSuite) TestRequestWithoutTokenIsUnauthenticated() {
	req, err := http.NewRequest(http.MethodPost, "http://"+httpAddr+"/tickets/"+uuid.NewString()+"/redeem", nil)
	s.Require().NoError(err)

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *ComponentTestSuite) redeem(ticketID, idempotencyKey string) *http.Response {
	req, err := http.NewRequest(
		http.MethodPost,
		"http://"+httpAddr+"/tickets/"+ticketID+"/redeem",
		strings.NewReader(`{"location":"Gate A"}`),
	)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token())
	req.Header.Set("Correlation-ID", shortuuid.New())
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *ComponentTestSuite) get(path string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, "http://"+httpAddr+path, nil)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+s.token())

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *ComponentTestSuite) decodeOutcome(resp *http.Response) string {
	defer resp.Body.Close()

	var body struct {
		Outcome string `json:"outcome"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	return body.Outcome
}

func (s *ComponentTestSuite) token() string {
	claims := ticketsHttp.StaffClaims{
		Email:          "door@example.com",
		Name:           "Door One",
		OrganizationID: s.organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.staffID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	s.Require().NoError(err)
	return signed
}

func (s *ComponentTestSuite) seedStaff() {
	s.organizationID = uuid.NewString()
	s.staffID = "staff-" + uuid.NewString()

	_, err := s.db.ExecContext(s.ctx, `
		INSERT INTO staff_roles (staff_id, organization_id, role) VALUES ($1, $2, 'staff')
	`, s.staffID, s.organizationID)
	s.Require().NoError(err)
}

func (s *ComponentTestSuite) createTicket(start time.Time) (eventID, ticketID string) {
	eventID, ticketTypeID, ticketID := uuid.NewString(), uuid.NewString(), uuid.NewString()

	_, err := s.db.ExecContext(s.ctx, `
		INSERT INTO events (id, organization_id, title, venue, status, start_date)
		VALUES ($1, $2, 'Concert', 'Main Hall', 'scheduled', $3)
	`, eventID, s.organizationID, start)
	s.Require().NoError(err)

	_, err = s.db.ExecContext(s.ctx, `
		INSERT INTO ticket_types (id, event_id, name) VALUES ($1, $2, 'General Admission')
	`, ticketTypeID, eventID)
	s.Require().NoError(err)

	_, err = s.db.ExecContext(s.ctx, `
		INSERT INTO tickets (id, ticket_type_id, status, attendee_name, attendee_email)
		VALUES ($1, $2, 'valid', 'Ada', 'ada@example.com')
	`, ticketID, ticketTypeID)
	s.Require().NoError(err)

	return eventID, ticketID
}

func (s *ComponentTestSuite) waitForHttpServer() {
	s.Require().EventuallyWithT(func(t *assert.CollectT) {
		resp, err := http.Get("http://" + httpAddr + "/health")
		if !assert.NoError(t, err) {
			return
		}
		defer resp.Body.Close()

		assert.Less(t, resp.StatusCode, 300, "API not ready, http status: %d", resp.StatusCode)
	}, 30*time.Second, 50*time.Millisecond)
}

func (s *ComponentTestSuite) startContainers() (postgresURL, redisAddr string) {
	pg, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "gatekeeper",
				"POSTGRES_PASSWORD": "gatekeeper",
				"POSTGRES_DB":       "gatekeeper",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		s.T().Skipf("docker is not available: %v", err)
	}
	s.containers = append(s.containers, pg)

	rd, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			HostConfigModifier: func(config *container.HostConfig) {
				config.PortBindings = nat.PortMap{
					"6379/tcp": []nat.PortBinding{{HostIP: "127.0.0.1"}},
				}
			},
			WaitingFor: wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	s.Require().NoError(err)
	s.containers = append(s.containers, rd)

	pgHost, err := pg.Host(s.ctx)
	s.Require().NoError(err)
	pgPort, err := pg.MappedPort(s.ctx, "5432/tcp")
	s.Require().NoError(err)

	redisPort, err := rd.MappedPort(s.ctx, "6379/tcp")
	s.Require().NoError(err)

	postgresURL = fmt.Sprintf("postgres://gatekeeper:gatekeeper@%s:%s/gatekeeper?sslmode=disable", pgHost, pgPort.Port())
	redisAddr = "127.0.0.1:" + redisPort.Port()

	return postgresURL, redisAddr
}
