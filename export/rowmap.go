package export

import "strings"

// SheetsHeader is the column layout written to spreadsheets, matching the
// import format CRMs expect.
var SheetsHeader = []string{"First Name", "Last Name", "Email Address", "Phone Number", "City"}

// Column key candidates, in preference order. Spreadsheet and request
// rows arrive with arbitrary header names; the first matching candidate
// wins.
var (
	emailKeys = []string{"email address", "email", "e-mail", "email_address", "mail"}
	nameKeys  = []string{"first name", "name", "full name", "first_name", "business name", "contact"}
	lastKeys  = []string{"last name", "last_name", "surname"}
	phoneKeys = []string{"phone number", "phone", "phone_number", "tel", "mobile"}
	cityKeys  = []string{"city", "location", "town"}
)

// FieldFromRow returns the value of the first candidate key present in
// row, matching keys case-insensitively.
func FieldFromRow(row map[string]string, candidates []string) string {
	lowered := make(map[string]string, len(row))
	for k, v := range row {
		lowered[strings.ToLower(strings.TrimSpace(k))] = v
	}
	for _, key := range candidates {
		if v, ok := lowered[key]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// EmailFromRow extracts a recipient address from an arbitrarily-keyed row.
// When no known key matches, any value containing "@" is taken.
func EmailFromRow(row map[string]string) string {
	if v := FieldFromRow(row, emailKeys); v != "" {
		return v
	}
	for _, v := range row {
		v = strings.TrimSpace(v)
		if strings.Count(v, "@") == 1 && strings.Contains(v, ".") {
			return v
		}
	}
	return ""
}

// NameFromRow extracts a display name from an arbitrarily-keyed row.
func NameFromRow(row map[string]string) string {
	first := FieldFromRow(row, nameKeys)
	last := FieldFromRow(row, lastKeys)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

// PhoneFromRow extracts a phone number from an arbitrarily-keyed row.
func PhoneFromRow(row map[string]string) string {
	return FieldFromRow(row, phoneKeys)
}

// SplitName breaks a display name into first and last parts for the
// spreadsheet layout.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
