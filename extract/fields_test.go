package extract

import "testing"

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"(512) 555-0134", true},
		{"512-555-0134", true},
		{"5125550134", true},
		{"1-512-555-0134", true},
		{"+1 512 555 0134", true},
		{"555-0134", false},
		{"1234567890", false},
		{"0000000000", false},
		{"2512555013456", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidPhone(tt.phone); got != tt.want {
			t.Errorf("ValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"info@acmeplumbing.com", true},
		{"sales.team@shop-online.co.uk", true},
		{"noreply@acme.com", false},
		{"info@example.com", false},
		{"hello@test.com", false},
		{"contact@yoursite.com", false},
		{"a@b.c", false},
		{".leading@dot.com", false},
		{"two@@ats.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidEmail(tt.email); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestCleanEmail(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"mailto:info@acme.com", "info@acme.com"},
		{"mailto:info@acme.com?subject=Hello", "info@acme.com"},
		{"info%40acme.com", "info@acme.com"},
		{"  info@acme.com, ", "info@acme.com"},
	}
	for _, tt := range tests {
		if got := CleanEmail(tt.raw); got != tt.want {
			t.Errorf("CleanEmail(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.acmeplumbing.com/contact", "Acmeplumbing"},
		{"https://get.leadly.io", "Leadly"},
		{"https://app.portal.bizco.com", "Bizco"},
		{"https://bakery-denver.com", "Bakery-denver"},
	}
	for _, tt := range tests {
		if got := NameFromURL(tt.url); got != tt.want {
			t.Errorf("NameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestFindPhonesInVisibleText(t *testing.T) {
	page := `<html><head><script>var x = "999-999-9999";</script></head>` +
		`<body><p>Call us at (512) 555-0134 today!</p></body></html>`

	visible := VisibleText(page)
	phones := FindPhones(visible)
	if len(phones) == 0 {
		t.Fatal("expected at least one phone in visible text")
	}
	if !ValidPhone(phones[0]) {
		t.Errorf("phone %q failed validation", phones[0])
	}
	for _, p := range phones {
		if digitsOnly(p) == "9999999999" {
			t.Errorf("script content leaked into visible text: %q", p)
		}
	}
}

func TestPlausibleAddress(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"123 Main Street, Austin, TX 78701", true},
		{"4500 Oak Blvd Suite 200", true},
		{"short", false},
		{"no digits anywhere in this string at all", false},
	}
	for _, tt := range tests {
		if got := PlausibleAddress(tt.text); got != tt.want {
			t.Errorf("PlausibleAddress(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
