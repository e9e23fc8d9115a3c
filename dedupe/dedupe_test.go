package dedupe

import (
	"testing"

	"github.com/use-agent/leadforge/models"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(512) 555-0142", "5125550142"},
		{"512.555.0142", "5125550142"},
		{"+1 512-555-0142", "5125550142"},
		{"1-512-555-0142", "5125550142"},
		{"15125550142", "5125550142"},
		{"5125550142", "5125550142"},
		{"", ""},
		{"no digits here", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsDuplicate(t *testing.T) {
	accepted := []models.Lead{
		{Name: "Acme", Phone: "(512) 555-0142", Email: "info@acme.com"},
		{Name: "Zenith", Phone: "+1 303 555 0100", Email: "hello@zenith.io"},
	}

	tests := []struct {
		name      string
		candidate models.Lead
		want      bool
	}{
		{"same digits different format", models.Lead{Phone: "512-555-0142"}, true},
		{"country code variant", models.Lead{Phone: "13035550100"}, true},
		{"new phone", models.Lead{Phone: "(415) 555-0199"}, false},
		{"no phone never duplicate", models.Lead{Phone: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicate(tt.candidate, accepted); got != tt.want {
				t.Errorf("IsDuplicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDuplicate_EmptyAccepted(t *testing.T) {
	if IsDuplicate(models.Lead{Phone: "5125550142"}, nil) {
		t.Error("candidate against an empty accepted set reported as duplicate")
	}
}
