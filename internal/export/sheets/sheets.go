// Package sheets exports ledger entries to a Google Sheets spreadsheet.
// Rows are keyed by transaction id in column A, so re-exporting the same
// transaction updates its row instead of appending a duplicate.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/work4inventions/financeInsight/internal/export"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ export.Exporter = (*Client)(nil)

// Ledger columns, in sheet order.
// A: transaction id, B: user id, C: type, D: name, E: amount, F: date,
// G: tag, H: status.
const (
	colCount      = 8
	statusActive  = "active"
	statusDeleted = "deleted"
)

// NewFromEnv creates a Sheets client using environment variables and
// service-account credentials.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (default "Ledger").
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// NewOAuth creates a Sheets client authorized as a user, from the OAuth
// client config and the token produced by the oauth-init command.
func NewOAuth(ctx context.Context, spreadsheetID, sheetName string, clientJSON, tokenJSON []byte) (*Client, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if sheetName == "" {
		sheetName = "Ledger"
	}

	conf, err := google.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse OAuth client config: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse OAuth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(conf.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Export implements export.Exporter.
func (c *Client) Export(ctx context.Context, entry export.LedgerEntry) error {
	rowIndex, err := c.findRow(ctx, entry.Transaction.ID)
	if err != nil {
		return err
	}

	row := c.entryRow(entry)
	if rowIndex == 0 {
		if entry.Deleted {
			// Nothing to mark, the row was never exported
			return nil
		}
		return c.appendRow(ctx, row)
	}
	return c.updateRow(ctx, rowIndex, row)
}

// findRow returns the 1-based sheet row holding the id, or 0 if absent.
func (c *Client) findRow(ctx context.Context, id string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read ledger ids: %w", err)
	}
	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (c *Client) appendRow(ctx context.Context, row []interface{}) error {
	vr := &gsheet.ValueRange{Values: [][]interface{}{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetName+"!A:H", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append ledger row: %w", err)
	}
	return nil
}

func (c *Client) updateRow(ctx context.Context, rowIndex int, row []interface{}) error {
	rng := fmt.Sprintf("%s!A%d:H%d", c.sheetName, rowIndex, rowIndex)
	vr := &gsheet.ValueRange{Values: [][]interface{}{row}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update ledger row %d: %w", rowIndex, err)
	}
	return nil
}

func (c *Client) entryRow(entry export.LedgerEntry) []interface{} {
	t := entry.Transaction
	if entry.Deleted {
		return []interface{}{t.ID, entry.UserID, "", "", "", "", "", statusDeleted}
	}
	row := make([]interface{}, 0, colCount)
	row = append(row,
		t.ID,
		entry.UserID,
		string(t.Type),
		t.Name,
		fmt.Sprintf("%d.%02d", t.Amount.Cents/100, t.Amount.Cents%100),
		t.Date.ISO(),
		t.Tag,
		statusActive,
	)
	return row
}
