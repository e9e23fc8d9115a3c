package models

// Lead source identifiers accepted by the API.
const (
	SourceActor    = "actor"
	SourceLeadsAPI = "leadsapi"
	SourceScraper  = "scraper"
)

// GenerateLeadsRequest is the payload for POST /api/v1/leads.
type GenerateLeadsRequest struct {
	// Prompt is the free-text request, e.g. "generate 20 leads of plumbers in Austin".
	Prompt string `json:"prompt" binding:"required"`

	// Source selects the lead provider: "actor", "leadsapi", or "scraper".
	// Empty defaults to "scraper".
	Source string `json:"source" binding:"omitempty,oneof=actor leadsapi scraper"`

	// MaxResults caps the number of leads. Overrides the count parsed from
	// the prompt when smaller. Default: 50.
	MaxResults int `json:"max_results,omitempty" binding:"omitempty,min=1,max=200"`
}

// ResolveCaptchaRequest is the payload for POST /api/v1/captcha/resolve/:sessionId.
type ResolveCaptchaRequest struct {
	// Token is the challenge solution supplied by the external solver.
	Token string `json:"token" binding:"required"`
}

// ExportCSVRequest is the payload for POST /api/v1/export/csv.
type ExportCSVRequest struct {
	Leads []Lead `json:"leads" binding:"required,min=1"`
}

// ExportSheetsRequest is the payload for POST /api/v1/export/google-sheets.
type ExportSheetsRequest struct {
	Leads         []Lead `json:"leads" binding:"required,min=1"`
	Token         string `json:"token" binding:"required"`
	SpreadsheetID string `json:"spreadsheet_id,omitempty"`
	CreateNew     bool   `json:"create_new,omitempty"`
	NewSheetTitle string `json:"new_sheet_title,omitempty"`
}

// SheetsListRequest is the payload for POST /api/v1/export/google-sheets/list.
type SheetsListRequest struct {
	Token string `json:"token" binding:"required"`
}

// SheetsFetchRequest is the payload for POST /api/v1/export/google-sheets/fetch.
type SheetsFetchRequest struct {
	Token         string `json:"token" binding:"required"`
	SpreadsheetID string `json:"spreadsheet_id" binding:"required"`
	Range         string `json:"range" binding:"required"`
}

// Attachment is a file attached to outbound mail. Data travels base64
// encoded in JSON.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"data"`
}

// SendEmailRequest is the payload for POST /api/v1/email/send.
// Leads are loosely-typed records so rows fetched from a spreadsheet can be
// forwarded as-is; recipient detection runs server-side.
type SendEmailRequest struct {
	From        string              `json:"from" binding:"required"`
	Leads       []map[string]string `json:"leads" binding:"required,min=1"`
	Subject     string              `json:"subject" binding:"required"`
	Body        string              `json:"body" binding:"required"`
	Attachments []Attachment        `json:"attachments,omitempty"`
}

// ExchangeTokenRequest is the payload for POST /api/v1/auth/exchange.
type ExchangeTokenRequest struct {
	Code string `json:"code" binding:"required"`
}

// RefreshTokenRequest is the payload for POST /api/v1/auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
