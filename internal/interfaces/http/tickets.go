package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gatekeeper/internal/application/usecases/redemption"
	"gatekeeper/internal/idempotency"
)

type RedeemTicketRequest struct {
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

func (s *Server) RedeemTicketHandler(c echo.Context) error {
	var request RedeemTicketRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&request); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "body must be a JSON object"})
		}
	}

	ctx := c.Request().Context()
	if key := c.Request().Header.Get(idempotency.HeaderName); key != "" {
		ctx = idempotency.WithKey(ctx, key)
		c.Response().Header().Set(idempotency.HeaderName, key)
	}

	result, err := s.engine.AttemptRedeem(ctx, redemption.RedeemRequest{
		TicketID: c.Param("ticket_id"),
		Staff:    staffFromContext(c),
		Location: request.Location,
		Notes:    request.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(redemptionStatusCode(result.Outcome), newRedeemResponse(result))
}

func (s *Server) TicketStatusHandler(c echo.Context) error {
	report, err := s.engine.CheckStatus(c.Request().Context(), c.Param("ticket_id"), staffFromContext(c))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(statusReportCode(report.Class), newStatusResponse(report))
}
