package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/leadforge/config"
	"github.com/use-agent/leadforge/models"
)

func TestWriteCSV(t *testing.T) {
	leads := []models.Lead{
		{Name: "Acme Plumbing", Phone: "5125550134", Email: "info@acmeplumbing.com", Website: "https://acmeplumbing.com", Address: "123 Main St"},
		{Name: `Quotes "R" Us`, Phone: "5125550199"},
	}
	data, err := WriteCSV(leads)
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "Name,Phone,Email,Website,Address\n") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "Acme Plumbing") || !strings.Contains(out, `"Quotes ""R"" Us"`) {
		t.Errorf("rows not rendered: %q", out)
	}
}

func TestRowMapping(t *testing.T) {
	row := map[string]string{
		"Business Name": "Denver Bakes",
		"E-Mail":        "hello@denverbakes.com",
		"Phone":         "3035550101",
		"City":          "Denver",
	}
	if got := NameFromRow(row); got != "Denver Bakes" {
		t.Errorf("NameFromRow = %q", got)
	}
	if got := EmailFromRow(row); got != "hello@denverbakes.com" {
		t.Errorf("EmailFromRow = %q", got)
	}
	if got := PhoneFromRow(row); got != "3035550101" {
		t.Errorf("PhoneFromRow = %q", got)
	}

	// Unknown keys: any @-bearing value still counts as the email.
	odd := map[string]string{"contact info": "who@where.net"}
	if got := EmailFromRow(odd); got != "who@where.net" {
		t.Errorf("EmailFromRow duck-typing = %q", got)
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name, first, last string
	}{
		{"Jordan Smith", "Jordan", "Smith"},
		{"Acme", "Acme", ""},
		{"Mary Jane Watson", "Mary", "Jane Watson"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.name)
		if first != tt.first || last != tt.last {
			t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)", tt.name, first, last, tt.first, tt.last)
		}
	}
}

func TestSheetsAppendWritesHeaderWhenEmpty(t *testing.T) {
	var gotHeader, gotAppend bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "A1:E1"):
			w.Write([]byte(`{"values": []}`))
		case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "A1:E1"):
			var body struct {
				Values [][]any `json:"values"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if len(body.Values) == 1 && body.Values[0][0] == "First Name" {
				gotHeader = true
			}
			w.Write([]byte(`{}`))
		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "A1:append"):
			gotAppend = true
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewSheetsClient(config.ExportConfig{SheetsBaseURL: srv.URL, DriveBaseURL: srv.URL, Timeout: 5 * time.Second})
	n, err := c.Append(context.Background(), "tok", "sheet1", []models.Lead{
		{Name: "Jordan Smith", Email: "j@smithco.com", Phone: "5125550134", Address: "Austin"},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if n != 1 {
		t.Errorf("appended %d rows, want 1", n)
	}
	if !gotHeader {
		t.Error("header row was not written to the empty sheet")
	}
	if !gotAppend {
		t.Error("data rows were not appended")
	}
}

func TestSheetsFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"values": [
			["First Name", "Last Name", "Email Address", "Phone Number", "City"],
			["Jordan", "Smith", "j@smithco.com", "5125550134", "Austin"],
			["", "", "", "", ""]
		]}`))
	}))
	defer srv.Close()

	c := NewSheetsClient(config.ExportConfig{SheetsBaseURL: srv.URL, DriveBaseURL: srv.URL, Timeout: 5 * time.Second})
	leads, err := c.Fetch(context.Background(), "tok", "sheet1", "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(leads) != 1 {
		t.Fatalf("got %d leads, want 1 (blank row skipped)", len(leads))
	}
	if leads[0].Name != "Jordan Smith" || leads[0].Email != "j@smithco.com" {
		t.Errorf("unexpected lead: %+v", leads[0])
	}
}
