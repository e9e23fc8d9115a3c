package extract

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	telLinkSel    = cascadia.MustCompile(`a[href^="tel:"]`)
	mailtoLinkSel = cascadia.MustCompile(`a[href^="mailto:"]`)
	titleSel      = cascadia.MustCompile(`title`)
)

// sourceScan is the page-source fallback: when the targeted element pass
// finds nothing, the raw HTML is mined for contact links and then the
// visible text is swept with the field regexes.
type sourceScan struct {
	Phones  []string
	Emails  []string
	Title   string
	Visible string
	// Lines holds the individual visible text nodes; address plausibility
	// runs per node so street lines are not glued to surrounding copy.
	Lines []string
}

func scanSource(rawHTML string) sourceScan {
	var out sourceScan
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err == nil {
		for _, a := range cascadia.QueryAll(doc, telLinkSel) {
			if href := attrValue(a, "href"); href != "" {
				out.Phones = append(out.Phones, strings.TrimPrefix(href, "tel:"))
			}
		}
		for _, a := range cascadia.QueryAll(doc, mailtoLinkSel) {
			if href := attrValue(a, "href"); href != "" {
				out.Emails = append(out.Emails, CleanEmail(href))
			}
		}
		if t := cascadia.Query(doc, titleSel); t != nil {
			out.Title = strings.TrimSpace(nodeText(t))
		}
	}

	out.Lines = VisibleLines(rawHTML)
	out.Visible = strings.Join(out.Lines, " ")
	out.Phones = append(out.Phones, FindPhones(out.Visible)...)
	out.Emails = append(out.Emails, FindEmails(out.Visible)...)
	// Emails sometimes live only in attributes (data-email, obfuscated
	// mailto builders), so sweep the raw markup too.
	out.Emails = append(out.Emails, FindEmails(rawHTML)...)
	return out
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// cleanTitle trims marketing tails ("Acme Plumbing | Home") down to the
// leading segment for use as a business name.
func cleanTitle(title string) string {
	for _, sep := range []string{" | ", " - ", " – ", " :: "} {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
			break
		}
	}
	title = strings.TrimSpace(title)
	if len(title) > 80 {
		title = strings.TrimSpace(title[:80])
	}
	return title
}
