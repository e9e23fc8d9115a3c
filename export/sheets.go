package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/use-agent/leadforge/config"
	"github.com/use-agent/leadforge/models"
)

// SheetsClient is thin HTTP glue over the spreadsheet and file APIs. The
// caller supplies a user OAuth access token per call; the service holds
// no Google credentials of its own.
type SheetsClient struct {
	sheetsBase string
	driveBase  string
	client     *http.Client
}

func NewSheetsClient(cfg config.ExportConfig) *SheetsClient {
	return &SheetsClient{
		sheetsBase: cfg.SheetsBaseURL,
		driveBase:  cfg.DriveBaseURL,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

// List returns the user's spreadsheets, most recently modified first.
func (c *SheetsClient) List(ctx context.Context, token string) ([]models.SpreadsheetInfo, error) {
	q := url.Values{}
	q.Set("q", "mimeType='application/vnd.google-apps.spreadsheet' and trashed=false")
	q.Set("orderBy", "modifiedTime desc")
	q.Set("fields", "files(id,name,modifiedTime)")
	q.Set("pageSize", "50")

	var out struct {
		Files []struct {
			ID           string `json:"id"`
			Name         string `json:"name"`
			ModifiedTime string `json:"modifiedTime"`
		} `json:"files"`
	}
	if err := c.do(ctx, token, http.MethodGet, c.driveBase+"/files?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}

	sheets := make([]models.SpreadsheetInfo, 0, len(out.Files))
	for _, f := range out.Files {
		sheets = append(sheets, models.SpreadsheetInfo{ID: f.ID, Name: f.Name, ModifiedTime: f.ModifiedTime})
	}
	return sheets, nil
}

// Create makes a new spreadsheet with the standard header row and returns
// its ID.
func (c *SheetsClient) Create(ctx context.Context, token, title string) (string, error) {
	body := map[string]any{"properties": map[string]any{"title": title}}
	var out struct {
		SpreadsheetID string `json:"spreadsheetId"`
	}
	if err := c.do(ctx, token, http.MethodPost, c.sheetsBase+"/spreadsheets", body, &out); err != nil {
		return "", err
	}
	if out.SpreadsheetID == "" {
		return "", models.NewAPIError(models.ErrCodeExport, "spreadsheet create returned no ID", nil)
	}
	if err := c.writeHeader(ctx, token, out.SpreadsheetID); err != nil {
		return "", err
	}
	return out.SpreadsheetID, nil
}

// Append adds leads as rows, writing the header first when the sheet is
// empty. Returns the number of data rows appended.
func (c *SheetsClient) Append(ctx context.Context, token, spreadsheetID string, leads []models.Lead) (int, error) {
	hasHeader, err := c.hasHeader(ctx, token, spreadsheetID)
	if err != nil {
		return 0, err
	}
	if !hasHeader {
		if err := c.writeHeader(ctx, token, spreadsheetID); err != nil {
			return 0, err
		}
	}

	rows := make([][]any, 0, len(leads))
	for _, lead := range leads {
		first, last := SplitName(lead.Name)
		rows = append(rows, []any{first, last, lead.Email, lead.Phone, lead.Address})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/A1:append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS",
		c.sheetsBase, url.PathEscape(spreadsheetID))
	body := map[string]any{"values": rows}
	if err := c.do(ctx, token, http.MethodPost, endpoint, body, nil); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Fetch reads a spreadsheet range back into leads, mapping its header row
// with the same key candidates used everywhere else.
func (c *SheetsClient) Fetch(ctx context.Context, token, spreadsheetID, readRange string) ([]models.Lead, error) {
	if readRange == "" {
		readRange = "A1:Z1000"
	}
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s",
		c.sheetsBase, url.PathEscape(spreadsheetID), url.PathEscape(readRange))

	var out struct {
		Values [][]string `json:"values"`
	}
	if err := c.do(ctx, token, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Values) < 2 {
		return nil, nil
	}

	header := out.Values[0]
	leads := make([]models.Lead, 0, len(out.Values)-1)
	for _, rowValues := range out.Values[1:] {
		row := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(rowValues) {
				row[key] = rowValues[i]
			}
		}
		lead := models.Lead{
			Name:    NameFromRow(row),
			Phone:   PhoneFromRow(row),
			Email:   EmailFromRow(row),
			Address: FieldFromRow(row, cityKeys),
		}
		if lead.Name == "" && lead.Phone == "" && lead.Email == "" {
			continue
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

func (c *SheetsClient) hasHeader(ctx context.Context, token, spreadsheetID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/A1:E1", c.sheetsBase, url.PathEscape(spreadsheetID))
	var out struct {
		Values [][]string `json:"values"`
	}
	if err := c.do(ctx, token, http.MethodGet, endpoint, nil, &out); err != nil {
		return false, err
	}
	return len(out.Values) > 0 && len(out.Values[0]) > 0, nil
}

func (c *SheetsClient) writeHeader(ctx context.Context, token, spreadsheetID string) error {
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/A1:E1?valueInputOption=USER_ENTERED",
		c.sheetsBase, url.PathEscape(spreadsheetID))
	header := make([]any, len(SheetsHeader))
	for i, h := range SheetsHeader {
		header[i] = h
	}
	body := map[string]any{"values": [][]any{header}}
	return c.do(ctx, token, http.MethodPut, endpoint, body, nil)
}

func (c *SheetsClient) do(ctx context.Context, token, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return models.NewAPIError(models.ErrCodeInternal, "export payload encoding failed", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return models.NewAPIError(models.ErrCodeInternal, "export request build failed", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.NewAPIError(models.ErrCodeExport, "spreadsheet service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return models.NewAPIError(models.ErrCodeUnauthorized, "spreadsheet access token rejected", nil)
	}
	if resp.StatusCode >= 400 {
		return models.NewAPIError(models.ErrCodeExport,
			fmt.Sprintf("spreadsheet service returned HTTP %d", resp.StatusCode), nil)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return models.NewAPIError(models.ErrCodeExport, "spreadsheet response decode failed", err)
	}
	return nil
}
