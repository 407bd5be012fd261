package clients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/clients"
	"github.com/ThreeDotsLabs/go-event-driven/common/clients/spreadsheets"

	"gatekeeper/internal/entities"
)

type SpreadsheetsClient struct {
	clients *clients.Clients
}

func NewSpreadsheetsClient(clients *clients.Clients) SpreadsheetsClient {
	return SpreadsheetsClient{
		clients: clients,
	}
}

func (c SpreadsheetsClient) AppendRow(ctx context.Context, request entities.AppendToTrackerRequest) error {
	resp, err := c.clients.Spreadsheets.PostSheetsSheetRowsWithResponse(
		ctx,
		request.SpreadsheetName,
		spreadsheets.PostSheetsSheetRowsJSONRequestBody{
			Columns: request.Rows,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", request.SpreadsheetName, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("unexpected status code while appending row to %s: %v", request.SpreadsheetName, resp.StatusCode())
	}

	return nil
}
