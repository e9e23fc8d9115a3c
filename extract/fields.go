package extract

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// phonePatterns are tried in order against element text and page source.
// The NANP pattern is first; the loose patterns mop up bare digit runs.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\+?1[-.\s]?)?\(?[2-9][0-9]{2}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`),
	regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`),
	regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-.]?\d{4}`),
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9][a-zA-Z0-9._%+\-]*@[a-zA-Z0-9][a-zA-Z0-9.\-]*\.[a-zA-Z]{2,}`)

var emailExact = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._%+\-]*@[a-zA-Z0-9][a-zA-Z0-9.\-]*\.[a-zA-Z]{2,}$`)

// placeholderFragments disqualify an email outright.
var placeholderFragments = []string{
	"noreply", "no-reply",
	"example.com", "test.com", "domain.com", "yoursite.com", "website.com",
	"placeholder", "sample",
}

var addressHintPattern = regexp.MustCompile(`(?i)\d+.*\b(street|avenue|ave|road|rd|boulevard|blvd|drive|dr|lane|ln|court|ct|way|suite|st)\b`)

var zipLikePattern = regexp.MustCompile(`\d+.*[a-zA-Z].*\d{5}`)

// FindPhones returns all phone-shaped substrings of text, in order of
// appearance, without validation.
func FindPhones(text string) []string {
	var out []string
	for _, re := range phonePatterns {
		out = append(out, re.FindAllString(text, -1)...)
	}
	return out
}

// FindEmails returns all email-shaped substrings of text, cleaned of
// mailto: prefixes, query strings and URL encoding, without validation.
func FindEmails(text string) []string {
	matches := emailPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, CleanEmail(m))
	}
	return out
}

// ValidPhone reports whether the candidate normalizes to a 10-digit number
// (or 11 digits with a leading country code 1) and is not an obvious filler.
func ValidPhone(phone string) bool {
	digits := digitsOnly(phone)
	if len(digits) != 10 && !(len(digits) == 11 && digits[0] == '1') {
		return false
	}
	if strings.Contains(digits, "1234567890") || strings.Contains(digits, "0000000000") {
		return false
	}
	return true
}

// ValidEmail applies the syntactic pattern plus plausibility filters:
// placeholder domains, filler local parts, boundary characters, and a
// length between 6 and 99.
func ValidEmail(email string) bool {
	if len(email) <= 5 || len(email) >= 100 {
		return false
	}
	if !emailExact.MatchString(email) {
		return false
	}
	if strings.HasPrefix(email, ".") || strings.HasSuffix(email, ".") {
		return false
	}
	if strings.Count(email, "@") != 1 {
		return false
	}
	lower := strings.ToLower(email)
	for _, frag := range placeholderFragments {
		if strings.Contains(lower, frag) {
			return false
		}
	}
	return true
}

// CleanEmail strips mailto: prefixes, query/fragment tails, URL encoding
// and stray boundary characters from an email candidate.
func CleanEmail(raw string) string {
	s := strings.TrimPrefix(raw, "mailto:")
	if i := strings.IndexAny(s, "?&"); i >= 0 {
		s = s[:i]
	}
	if decoded, err := url.QueryUnescape(s); err == nil {
		s = decoded
	}
	s = strings.ReplaceAll(s, "%20", "")
	s = strings.ReplaceAll(s, "%40", "@")
	s = strings.TrimFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9')
	})
	return strings.TrimSpace(s)
}

// strippedSubdomains are leading host labels that carry no business identity.
var strippedSubdomains = map[string]struct{}{
	"www": {}, "get": {}, "app": {}, "portal": {}, "login": {},
}

// NameFromURL derives a business name from the destination URL's hostname:
// strip generic subdomain prefixes, take the first remaining label,
// capitalize it. Returns "" when no usable label remains.
func NameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	labels := strings.Split(u.Hostname(), ".")
	for len(labels) > 1 {
		if _, strip := strippedSubdomains[strings.ToLower(labels[0])]; !strip {
			break
		}
		labels = labels[1:]
	}
	if len(labels) == 0 || labels[0] == "" {
		return ""
	}
	label := labels[0]
	return strings.ToUpper(label[:1]) + label[1:]
}

// PlausibleAddress reports whether text looks like a postal address:
// bounded length and either a street-suffix keyword or a ZIP-like tail.
func PlausibleAddress(text string) bool {
	if len(text) <= 10 || len(text) >= 200 {
		return false
	}
	return addressHintPattern.MatchString(text) || zipLikePattern.MatchString(text)
}

// VisibleText extracts the text content of rawHTML's <body>, skipping
// script, style and noscript blocks. Regex scans run over this instead of
// raw markup so attribute noise does not produce phantom matches.
func VisibleText(rawHTML string) string {
	return strings.Join(VisibleLines(rawHTML), " ")
}

// VisibleLines returns the visible text node by node, in document order.
func VisibleLines(rawHTML string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	var lines []string
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return lines
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript":
				skipDepth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "script", "style", "noscript":
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if skipDepth == 0 {
				if text := strings.TrimSpace(string(tokenizer.Text())); text != "" {
					lines = append(lines, text)
				}
			}
		}
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
