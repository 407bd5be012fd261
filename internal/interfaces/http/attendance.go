package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type attendanceResponse struct {
	EventID       string         `json:"event_id"`
	AdmittedCount int            `json:"admitted_count"`
	FirstScanAt   *time.Time     `json:"first_scan_at,omitempty"`
	LastScanAt    *time.Time     `json:"last_scan_at,omitempty"`
	ByLocation    map[string]int `json:"by_location"`
}

func (s *Server) EventAttendanceHandler(c echo.Context) error {
	eventID, err := uuid.Parse(c.Param("event_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "event_id is not a valid UUID"})
	}

	readModel, err := s.attendance.Get(c.Request().Context(), eventID)
	if err != nil {
		return writeError(c, err)
	}

	byLocation := readModel.ByLocation
	if byLocation == nil {
		byLocation = map[string]int{}
	}

	return c.JSON(http.StatusOK, attendanceResponse{
		EventID:       readModel.EventID.String(),
		AdmittedCount: readModel.AdmittedCount,
		FirstScanAt:   readModel.FirstScanAt,
		LastScanAt:    readModel.LastScanAt,
		ByLocation:    byLocation,
	})
}
