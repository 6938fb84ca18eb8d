package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/repricer/internal/config"
	"github.com/mamadbah2/repricer/internal/domain/models"
)

// Repository defines the spreadsheet operations the repricer needs. The
// product table lives in the main spreadsheet; bounds, stock counters,
// blacklists and the currency rate may live in satellite spreadsheets
// referenced per row.
type Repository interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
	ReadColumn(ctx context.Context, sheetRange string) ([]string, error)
	ReadCellFloat(ctx context.Context, ref models.CellRef) (float64, error)
	ReadCellStrings(ctx context.Context, ref models.CellRef) ([]string, error)
	UpdateRow(ctx context.Context, sheetRange string, values []interface{}) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ReadRange fetches a rectangular data range from the main spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// ReadColumn flattens a single-column range from the main spreadsheet into
// strings, keeping blank cells so row indexes stay aligned.
func (r *GoogleSheetRepository) ReadColumn(ctx context.Context, sheetRange string) ([]string, error) {
	rows, err := r.ReadRange(ctx, sheetRange)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			values = append(values, "")
			continue
		}
		values = append(values, strings.TrimSpace(fmt.Sprint(row[0])))
	}
	return values, nil
}

// ReadCellFloat reads one numeric cell, possibly from a satellite
// spreadsheet.
func (r *GoogleSheetRepository) ReadCellFloat(ctx context.Context, ref models.CellRef) (float64, error) {
	if ref.Empty() {
		return 0, fmt.Errorf("cell reference incomplete")
	}

	resp, err := r.service.Spreadsheets.Values.Get(ref.SpreadsheetID, ref.A1()).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read cell %s: %w", ref.A1(), err)
	}

	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return 0, fmt.Errorf("cell %s is empty", ref.A1())
	}

	raw := strings.ReplaceAll(strings.TrimSpace(fmt.Sprint(resp.Values[0][0])), ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("cell %s is not numeric: %w", ref.A1(), err)
	}

	return value, nil
}

// ReadCellStrings reads a range of cells (typically a blacklist column)
// from a satellite spreadsheet, dropping blanks.
func (r *GoogleSheetRepository) ReadCellStrings(ctx context.Context, ref models.CellRef) ([]string, error) {
	if ref.Empty() {
		return nil, fmt.Errorf("cell reference incomplete")
	}

	resp, err := r.service.Spreadsheets.Values.Get(ref.SpreadsheetID, ref.A1()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read cells %s: %w", ref.A1(), err)
	}

	var values []string
	for _, row := range resp.Values {
		for _, cell := range row {
			text := strings.TrimSpace(fmt.Sprint(cell))
			if text != "" {
				values = append(values, text)
			}
		}
	}
	return values, nil
}

// UpdateRow overwrites the supplied range in the main spreadsheet. Used
// for the audit write-back after a successful cycle.
func (r *GoogleSheetRepository) UpdateRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("update range %s: %w", sheetRange, err)
	}

	r.logger.Debug("row range updated", zap.String("range", sheetRange))
	return nil
}
