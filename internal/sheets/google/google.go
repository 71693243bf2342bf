package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"kopimakmur/internal/cache"
	"kopimakmur/internal/core"
	ports "kopimakmur/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	defaultSheetName = "Cashflow"

	// Rows are never shifted by Remove, so a cached row number stays valid
	// until someone edits the sheet by hand. The TTL bounds that window.
	rowCacheSize = 4096
	rowCacheTTL  = 10 * time.Minute
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	rows          *cache.LRU[int64, int]
}

// Ensure interface conformance
var _ ports.LedgerMirror = (*Client)(nil)

// Options configures a Client. Credentials are taken from the first
// non-empty source: CredentialsJSON, CredentialsFile, then
// GOOGLE_APPLICATION_CREDENTIALS.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// New creates a Sheets mirror authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = defaultSheetName
	}

	creds, err := credentials(ctx, opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "sheet", sheetName)
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		rows:          cache.NewLRU[int64, int](rowCacheSize, rowCacheTTL),
	}, nil
}

func credentials(ctx context.Context, opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.CredentialsJSON)
	file := strings.TrimSpace(opts.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline JSON credentials", "json_length", len(inline))
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read credentials file", "path", file, "size", len(b))
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// newHTTPClientWithPooling creates an HTTP client tuned for the Sheets API.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// Upsert writes the transaction into the row holding its ID, or appends a
// new row when the ID is not present yet.
func (c *Client) Upsert(ctx context.Context, tx core.Transaction) error {
	if tx.ID <= 0 {
		return fmt.Errorf("invalid transaction id %d", tx.ID)
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, ok := c.rows.Get(tx.ID)
	if !ok {
		ids, err := c.readIDs(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			if err := c.writeRow(ctx, 1, toAny(ports.Header)); err != nil {
				return fmt.Errorf("write header: %w", err)
			}
			ids = []string{ports.Header[0]}
		}
		if row = findRow(ids, tx.ID); row == 0 {
			row = len(ids) + 1
		}
	}
	if err := c.writeRow(ctx, row, RowValues(tx)); err != nil {
		c.rows.Delete(tx.ID)
		return err
	}
	c.rows.Set(tx.ID, row)

	slog.InfoContext(ctx, "Mirrored transaction", "id", tx.ID, "row", row)
	return nil
}

// Remove clears the row holding the ID. A missing ID is not an error.
func (c *Client) Remove(ctx context.Context, id int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	row, ok := c.rows.Get(id)
	if !ok {
		ids, err := c.readIDs(ctx)
		if err != nil {
			return err
		}
		row = findRow(ids, id)
	}
	if row == 0 {
		slog.InfoContext(ctx, "Transaction not in sheet, nothing to remove", "id", id)
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:G%d", c.sheetName, row, row)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	c.rows.Delete(id)
	slog.InfoContext(ctx, "Removed mirrored transaction", "id", id, "row", row)
	return nil
}

// IDs lists the transaction ids present in the sheet, in row order.
func (c *Client) IDs(ctx context.Context) ([]int64, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	ids, err := c.readIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := parseIDs(ids)
	for _, id := range out {
		c.rows.Set(id, findRow(ids, id))
	}
	return out, nil
}

func (c *Client) readIDs(ctx context.Context) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]string, 0, len(resp.Values))
	for _, r := range resp.Values {
		if len(r) == 0 {
			out = append(out, "")
			continue
		}
		out = append(out, strings.TrimSpace(fmt.Sprint(r[0])))
	}
	return out, nil
}

func (c *Client) writeRow(ctx context.Context, row int, values []any) error {
	rng := fmt.Sprintf("%s!A%d:G%d", c.sheetName, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

// RowValues renders a transaction in header column order.
func RowValues(tx core.Transaction) []any {
	return []any{
		tx.ID,
		tx.Date.String(),
		tx.Kind.Label(),
		tx.Category,
		tx.Description,
		tx.Amount.Rupiah,
		tx.Unit,
	}
}

// findRow returns the 1-based sheet row whose first cell equals id, or 0.
func findRow(ids []string, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, v := range ids {
		if v == want {
			return i + 1
		}
	}
	return 0
}

// parseIDs returns the numeric ids in the id column. The header and
// cleared rows are skipped.
func parseIDs(ids []string) []int64 {
	var out []int64
	for _, v := range ids {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		out = append(out, id)
	}
	return out
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
