package models

// LeadsMeta accompanies a completed lead generation run.
type LeadsMeta struct {
	Count      int      `json:"count"`
	Source     string   `json:"source"`
	DurationMs int64    `json:"duration_ms"`
	Stats      RunStats `json:"stats"`
}

// LeadsResponse is the response for POST /api/v1/leads.
//
// Exactly one of the two shapes is populated: a finished run carries Leads
// and Meta; a run suspended on a challenge carries CaptchaRequired,
// SessionID and Message.
type LeadsResponse struct {
	Success bool      `json:"success"`
	Leads   []Lead    `json:"leads,omitempty"`
	Meta    *LeadsMeta `json:"meta,omitempty"`

	CaptchaRequired bool   `json:"captcha_required,omitempty"`
	SessionID       string `json:"session_id,omitempty"`
	SiteKey         string `json:"site_key,omitempty"`
	Message         string `json:"message,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// Progress stream event types.
const (
	EventProgress = "progress"
	EventCaptcha  = "captcha"
	EventComplete = "complete"
	EventError    = "error"
)

// ProgressEvent is one entry in the progress stream.
type ProgressEvent struct {
	Type       string `json:"type"`
	Message    string `json:"message,omitempty"`
	Percent    int    `json:"percent"`
	LeadsFound int    `json:"leads_found"`

	// Populated on "captcha" events.
	SessionID string `json:"session_id,omitempty"`
	SiteKey   string `json:"site_key,omitempty"`

	// Populated on "complete" events.
	Leads []Lead `json:"leads,omitempty"`
	Count int    `json:"count,omitempty"`
}

// CaptchaStatusResponse is the response for GET /api/v1/captcha/status/:sessionId.
type CaptchaStatusResponse struct {
	SessionID string       `json:"session_id"`
	Status    string       `json:"status"` // "pending", "running", "complete", "failed"
	Leads     []Lead       `json:"leads,omitempty"`
	Stats     *RunStats    `json:"stats,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
}

// ResolveCaptchaResponse is the response for POST /api/v1/captcha/resolve/:sessionId.
type ResolveCaptchaResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ExportResponse is the response for the spreadsheet export endpoints.
type ExportResponse struct {
	Success       bool         `json:"success"`
	SpreadsheetID string       `json:"spreadsheet_id,omitempty"`
	RowsAppended  int          `json:"rows_appended,omitempty"`
	Error         *ErrorDetail `json:"error,omitempty"`
}

// SpreadsheetInfo describes one spreadsheet in a list response.
type SpreadsheetInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modified_time,omitempty"`
}

// SheetsListResponse is the response for POST /api/v1/export/google-sheets/list.
type SheetsListResponse struct {
	Success      bool              `json:"success"`
	Spreadsheets []SpreadsheetInfo `json:"spreadsheets,omitempty"`
	Error        *ErrorDetail      `json:"error,omitempty"`
}

// SheetsFetchResponse is the response for POST /api/v1/export/google-sheets/fetch.
type SheetsFetchResponse struct {
	Success bool         `json:"success"`
	Leads   []Lead       `json:"leads,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// SendEmailResponse is the response for POST /api/v1/email/send.
type SendEmailResponse struct {
	Success    bool         `json:"success"`
	Sent       int          `json:"sent"`
	Skipped    int          `json:"skipped"`
	TotalLeads int          `json:"total_leads"`
	Error      *ErrorDetail `json:"error,omitempty"`
}

// TokenResponse carries tokens returned by the identity provider.
type TokenResponse struct {
	Success      bool         `json:"success"`
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresIn    int          `json:"expires_in,omitempty"`
	Error        *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status          string `json:"status"` // "healthy" or "degraded"
	Uptime          string `json:"uptime"`
	ActiveRuns      int    `json:"active_runs"`
	PendingCaptchas int    `json:"pending_captchas"`
	Version         string `json:"version"`
}
