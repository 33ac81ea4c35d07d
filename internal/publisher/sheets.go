package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const sheetsBaseURL = "https://sheets.googleapis.com"

// TokenFunc supplies an OAuth bearer token for the Sheets API.
type TokenFunc func(ctx context.Context) (string, error)

// StaticToken returns a TokenFunc that always yields token.
func StaticToken(token string) TokenFunc {
	return func(context.Context) (string, error) { return token, nil }
}

// SheetsSink writes each destination to a worksheet of one spreadsheet,
// adding the worksheet when missing and clearing it before writing.
type SheetsSink struct {
	BaseURL       string
	SpreadsheetID string
	Token         TokenFunc
	Client        *http.Client
}

// NewSheetsSink creates a sink for the spreadsheet.
func NewSheetsSink(spreadsheetID string, token TokenFunc) *SheetsSink {
	return &SheetsSink{
		BaseURL:       sheetsBaseURL,
		SpreadsheetID: spreadsheetID,
		Token:         token,
		Client:        &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SheetsSink) Name() string { return "sheets" }

func (s *SheetsSink) Publish(ctx context.Context, t Table) error {
	titles, err := s.sheetTitles(ctx)
	if err != nil {
		return err
	}
	if !titles[t.Destination] {
		if err := s.addSheet(ctx, t.Destination, len(t.Rows)+1, len(t.Columns)); err != nil {
			return err
		}
	}

	sheet := quoteSheet(t.Destination)
	if err := s.do(ctx, http.MethodPost, s.valuesURL(sheet)+":clear", struct{}{}, nil); err != nil {
		return fmt.Errorf("clear %s: %w", t.Destination, err)
	}

	values := make([][]any, 0, len(t.Rows)+1)
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	values = append(values, header)
	for _, row := range t.Rows {
		values = append(values, row)
	}
	body := map[string]any{
		"range":          sheet + "!A1",
		"majorDimension": "ROWS",
		"values":         values,
	}
	if err := s.do(ctx, http.MethodPut, s.valuesURL(sheet+"!A1")+"?valueInputOption=RAW", body, nil); err != nil {
		return fmt.Errorf("write %s: %w", t.Destination, err)
	}
	return nil
}

func (s *SheetsSink) spreadsheetURL() string {
	return s.BaseURL + "/v4/spreadsheets/" + url.PathEscape(s.SpreadsheetID)
}

func (s *SheetsSink) valuesURL(rng string) string {
	return s.spreadsheetURL() + "/values/" + url.PathEscape(rng)
}

func (s *SheetsSink) sheetTitles(ctx context.Context) (map[string]bool, error) {
	var meta struct {
		Sheets []struct {
			Properties struct {
				Title string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	if err := s.do(ctx, http.MethodGet, s.spreadsheetURL()+"?fields=sheets.properties.title", nil, &meta); err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	titles := make(map[string]bool, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		titles[sh.Properties.Title] = true
	}
	return titles, nil
}

func (s *SheetsSink) addSheet(ctx context.Context, title string, rows, cols int) error {
	// leave headroom for later, larger runs
	rows = max(rows, 300)
	cols = max(cols, 25)
	body := map[string]any{
		"requests": []any{
			map[string]any{
				"addSheet": map[string]any{
					"properties": map[string]any{
						"title":          title,
						"gridProperties": map[string]int{"rowCount": rows, "columnCount": cols},
					},
				},
			},
		},
	}
	if err := s.do(ctx, http.MethodPost, s.spreadsheetURL()+":batchUpdate", body, nil); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	return nil
}

func (s *SheetsSink) do(ctx context.Context, method, u string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Token != nil {
		token, err := s.Token(ctx)
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sheets api: status %d, body: %s", resp.StatusCode, string(msg))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// quoteSheet quotes a worksheet title for A1 notation.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
