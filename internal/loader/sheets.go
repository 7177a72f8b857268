package loader

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"wlrecon/pkg/contracts/domain"
)

// SheetsSource reads tables from Google Sheets ranges
type SheetsSource struct {
	service *sheets.Service
	logger  *slog.Logger
}

// NewSheetsSource creates a source authenticated with service-account
// credentials JSON, or with an API key when credentialsJSON is empty.
func NewSheetsSource(ctx context.Context, credentialsJSON []byte, apiKey string, logger *slog.Logger) (*SheetsSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opt option.ClientOption
	switch {
	case len(credentialsJSON) > 0:
		opt = option.WithCredentialsJSON(credentialsJSON)
	case apiKey != "":
		opt = option.WithAPIKey(apiKey)
	default:
		return nil, fmt.Errorf("google sheets source needs credentials or an API key")
	}

	service, err := sheets.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return NewSheetsSourceFromService(service, logger), nil
}

// NewSheetsSourceFromService wraps an existing sheets client
func NewSheetsSourceFromService(service *sheets.Service, logger *slog.Logger) *SheetsSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetsSource{service: service, logger: logger.With(slog.String("component", "sheets_source"))}
}

// Fetch reads readRange (for example "AT_Whitelist!A:Z") into a table.
func (s *SheetsSource) Fetch(ctx context.Context, spreadsheetID, readRange string) (domain.Table, error) {
	resp, err := s.service.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read sheet range",
			slog.String("spreadsheet_id", spreadsheetID),
			slog.String("range", readRange),
			slog.String("error", err.Error()))
		return domain.Table{}, fmt.Errorf("failed to read %s from spreadsheet %s: %w", readRange, spreadsheetID, err)
	}

	grid := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprint(cell)
		}
		grid[i] = cells
	}

	t := tableFromGrid(readRange, grid)
	s.logger.InfoContext(ctx, "Sheet range loaded",
		slog.String("range", readRange),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Columns)))
	return t, nil
}
