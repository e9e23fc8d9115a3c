// Command leadforge-mcp exposes the LeadForge HTTP API as MCP tools over
// stdio, so agent clients can generate lead lists, hand back captcha
// solutions, and export results.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// leadsRequest mirrors the LeadForge API request model.
type leadsRequest struct {
	Prompt     string `json:"prompt"`
	Source     string `json:"source"`
	MaxResults int    `json:"max_results,omitempty"`
}

// leadsResponse mirrors the LeadForge API response model.
type leadsResponse struct {
	Success bool `json:"success"`
	Leads   []struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
		Website string `json:"website"`
		Address string `json:"address"`
	} `json:"leads"`
	Meta *struct {
		Count      int    `json:"count"`
		Source     string `json:"source"`
		DurationMs int64  `json:"duration_ms"`
	} `json:"meta"`
	CaptchaRequired bool   `json:"captcha_required"`
	SessionID       string `json:"session_id"`
	SiteKey         string `json:"site_key"`
	Message         string `json:"message"`
	Error           *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// statusResponse mirrors the captcha status API response.
type statusResponse struct {
	SessionID string          `json:"session_id"`
	Status    string          `json:"status"`
	Leads     json.RawMessage `json:"leads"`
	Error     *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("LEADFORGE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("LEADFORGE_API_KEY")

	s := server.NewMCPServer(
		"leadforge",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	generateTool := mcp.NewTool("generate_leads",
		mcp.WithDescription("Generate business leads from a free-text prompt like 'generate 20 leads of plumbers in Austin'. Returns contact records (name, phone, email, website). May pause on a captcha and return a session ID."),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Free-text lead request, e.g. 'generate 20 leads of plumbers in Austin'"),
		),
		mcp.WithString("source",
			mcp.Description("Lead source: 'scraper' (default, live web scrape), 'actor' (hosted crawler), or 'leadsapi' (data marketplace)"),
			mcp.Enum("scraper", "actor", "leadsapi"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Cap on the number of leads (default: count parsed from the prompt)"),
		),
	)
	s.AddTool(generateTool, handleGenerateLeads(apiURL, apiKey))

	resolveTool := mcp.NewTool("resolve_captcha",
		mcp.WithDescription("Hand a solved captcha token back to a suspended lead run, then poll its status until it completes."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID returned alongside captcha_required"),
		),
		mcp.WithString("token",
			mcp.Required(),
			mcp.Description("The solved captcha response token"),
		),
	)
	s.AddTool(resolveTool, handleResolveCaptcha(apiURL, apiKey))

	statusTool := mcp.NewTool("captcha_status",
		mcp.WithDescription("Check a suspended or resumed lead run: 'pending', 'running', 'complete' (leads attached) or 'failed'."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session ID of the run"),
		),
	)
	s.AddTool(statusTool, handleCaptchaStatus(apiURL, apiKey))

	exportTool := mcp.NewTool("export_csv",
		mcp.WithDescription("Render a lead list as CSV. Pass the leads array exactly as returned by generate_leads."),
		mcp.WithString("leads_json",
			mcp.Required(),
			mcp.Description("JSON array of lead objects"),
		),
	)
	s.AddTool(exportTool, handleExportCSV(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleGenerateLeads(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		promptText, err := request.RequireString("prompt")
		if err != nil {
			return mcp.NewToolResultError("prompt is required"), nil
		}
		source := request.GetString("source", "scraper")
		maxResults := request.GetInt("max_results", 0)

		body, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/leads", leadsRequest{
			Prompt:     promptText,
			Source:     source,
			MaxResults: maxResults,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp leadsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if resp.CaptchaRequired {
			return mcp.NewToolResultText(fmt.Sprintf(
				"Captcha required. Session: %s\nSite key: %s\nSolve it, then call resolve_captcha with the token.",
				resp.SessionID, resp.SiteKey)), nil
		}
		if !resp.Success {
			errMsg := "lead generation failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		var out bytes.Buffer
		fmt.Fprintf(&out, "%d leads", len(resp.Leads))
		if resp.Meta != nil {
			fmt.Fprintf(&out, " via %s in %dms", resp.Meta.Source, resp.Meta.DurationMs)
		}
		out.WriteString("\n\n")
		for i, lead := range resp.Leads {
			fmt.Fprintf(&out, "%d. %s | %s | %s | %s\n", i+1, lead.Name, lead.Phone, lead.Email, lead.Website)
		}
		return mcp.NewToolResultText(out.String()), nil
	}
}

func handleResolveCaptcha(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError("session_id is required"), nil
		}
		token, err := request.RequireString("token")
		if err != nil {
			return mcp.NewToolResultError("token is required"), nil
		}

		body, err := apiPost(ctx, client, apiURL, apiKey,
			"/api/v1/captcha/resolve/"+sessionID, map[string]string{"token": token})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp struct {
			Success bool `json:"success"`
			Error   *struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			errMsg := "captcha resolve failed"
			if resp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		// The run resumes in the background; poll until it settles.
		status, err := pollRun(ctx, client, apiURL, apiKey, sessionID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(status), nil
	}
}

func handleCaptchaStatus(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError("session_id is required"), nil
		}

		body, err := apiGet(ctx, client, apiURL, apiKey, "/api/v1/captcha/status/"+sessionID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatStatus(body)), nil
	}
}

func handleExportCSV(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		leadsJSON, err := request.RequireString("leads_json")
		if err != nil {
			return mcp.NewToolResultError("leads_json is required"), nil
		}

		var leads []map[string]any
		if err := json.Unmarshal([]byte(leadsJSON), &leads); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("leads_json is not a JSON array: %v", err)), nil
		}

		body, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/export/csv",
			map[string]any{"leads": leads})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

// pollRun polls the captcha status endpoint until the run leaves
// "pending"/"running" or ctx is cancelled.
func pollRun(ctx context.Context, client *http.Client, apiURL, apiKey, sessionID string) (string, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			body, err := apiGet(ctx, client, apiURL, apiKey, "/api/v1/captcha/status/"+sessionID)
			if err != nil {
				return "", err
			}
			var status statusResponse
			if err := json.Unmarshal(body, &status); err != nil {
				return "", fmt.Errorf("parse status: %w", err)
			}
			if status.Status != "pending" && status.Status != "running" {
				return formatStatus(body), nil
			}
		}
	}
}

func formatStatus(body []byte) string {
	var status statusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return string(body)
	}
	out := fmt.Sprintf("Status: %s", status.Status)
	if len(status.Leads) > 0 {
		out += "\nLeads:\n" + string(status.Leads)
	}
	if status.Error != nil {
		out += fmt.Sprintf("\nError: [%s] %s", status.Error.Code, status.Error.Message)
	}
	return out
}

// apiPost sends a POST request to the LeadForge API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
