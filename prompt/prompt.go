// Package prompt turns a free-text lead request into a structured query.
package prompt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/use-agent/leadforge/models"
)

// DefaultCount is used when the prompt carries no number at all.
const DefaultCount = 50

// templates is the ordered list of recognised phrasings. More specific
// templates come first; the bare "X in Y" template is the catch-all.
// catIdx and locIdx are the capture-group indexes of category and location.
var templates = []struct {
	re     *regexp.Regexp
	catIdx int
	locIdx int
}{
	{regexp.MustCompile(`(?i)^generate\s+\d+\s+leads\s+of\s+(.+?)\s+in\s+(.+)$`), 1, 2},
	{regexp.MustCompile(`(?i)^generate\s+\d+\s+(.+?)\s+leads\s+in\s+(.+)$`), 1, 2},
	{regexp.MustCompile(`(?i)^\d+\s+leads\s+of\s+(.+?)\s+in\s+(.+)$`), 1, 2},
	{regexp.MustCompile(`(?i)^\d+\s+(.+?)\s+leads\s+in\s+(.+)$`), 1, 2},
	{regexp.MustCompile(`(?i)^find\s+\d+\s+(.+?)\s+in\s+(.+)$`), 1, 2},
	{regexp.MustCompile(`(?i)^(.+?)\s+in\s+(.+)$`), 1, 2},
}

var (
	generateCountRe = regexp.MustCompile(`(?i)generate\s+(\d+)`)
	anyNumberRe     = regexp.MustCompile(`(\d+)`)
)

// Parse derives a LeadQuery from a raw prompt.
//
// The requested count is recovered independently of the phrase template:
// an explicit "generate N" wins, then the first number anywhere in the
// prompt, then DefaultCount. Category and location come from the first
// matching template. No case or plural normalization is applied.
func Parse(raw string) (models.LeadQuery, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return models.LeadQuery{}, models.NewAPIError(
			models.ErrCodeInvalidPrompt,
			`empty prompt; use e.g. "generate 50 leads of restaurants in California"`,
			nil,
		)
	}

	count := DefaultCount
	if m := generateCountRe.FindStringSubmatch(text); m != nil {
		count, _ = strconv.Atoi(m[1])
	} else if m := anyNumberRe.FindStringSubmatch(text); m != nil {
		count, _ = strconv.Atoi(m[1])
	}

	for _, t := range templates {
		m := t.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return models.LeadQuery{
			RawPrompt: raw,
			Count:     count,
			Category:  strings.TrimSpace(m[t.catIdx]),
			Location:  strings.TrimSpace(m[t.locIdx]),
		}, nil
	}

	return models.LeadQuery{}, models.NewAPIError(
		models.ErrCodeInvalidPrompt,
		`unrecognized prompt; use e.g. "generate 50 leads of restaurants in California"`,
		nil,
	)
}
