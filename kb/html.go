package kb

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"medintake-backend/models"
)

var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true,
	"tr": true, "td": true, "th": true, "table": true, "section": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// htmlToText strips markup while keeping line breaks at block boundaries so
// the per-HMO line scanner still sees the document's structure. Script and
// style subtrees are dropped entirely.
func htmlToText(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	skip := ""

	for {
		switch z.Next() {
		case html.ErrorToken:
			return normalizeText(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skip = tag
			}
			if tag == "br" || blockTags[tag] {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == skip {
				skip = ""
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		case html.TextToken:
			if skip == "" {
				b.Write(z.Text())
			}
		}
	}
}

var spaceRunRe = regexp.MustCompile(`[ \t]+`)

func normalizeText(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(spaceRunRe.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

var (
	urlRe   = regexp.MustCompile(`https?://[^\s<>"']+`)
	phoneRe = regexp.MustCompile(`(\*\d{3,5})|(0\d{1,2}-?\d{7})|(1-?800-?[\d-]+)`)
)

// hmoAliases lists the strings that mark a line as belonging to an HMO.
var hmoAliases = map[string][]string{
	models.HMOMaccabi:  {"מכבי", "maccabi"},
	models.HMOMeuhedet: {"מאוחדת", "meuhedet"},
	models.HMOClalit:   {"כללית", "clalit"},
}

func lineMentions(line, hmo string) bool {
	lower := strings.ToLower(line)
	for _, alias := range hmoAliases[hmo] {
		if strings.Contains(lower, alias) {
			return true
		}
	}
	return false
}

func lineMentionsOther(line, hmo string) bool {
	for other := range hmoAliases {
		if other != hmo && lineMentions(line, other) {
			return true
		}
	}
	return false
}

// extractHMOContent collects the lines that describe one HMO: the section
// starting at a line naming it and running until another HMO takes over,
// plus any website and contact lines attributable to it.
func extractHMOContent(text, hmo string) string {
	lines := strings.Split(text, "\n")

	var section []string
	inSection := false
	for _, line := range lines {
		switch {
		case lineMentions(line, hmo):
			inSection = true
			section = append(section, line)
		case inSection && lineMentionsOther(line, hmo):
			inSection = false
		case inSection:
			section = append(section, line)
		}
	}

	var websites []string
	var contacts []string
	for _, line := range lines {
		if !lineMentions(line, hmo) {
			continue
		}
		for _, url := range urlRe.FindAllString(line, -1) {
			websites = append(websites, url)
		}
		if phoneRe.MatchString(line) {
			contacts = append(contacts, line)
		}
	}

	if len(section) == 0 && len(websites) == 0 && len(contacts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.Join(section, "\n"))
	if len(websites) > 0 {
		b.WriteString("\nאתר: " + strings.Join(dedupe(websites), " "))
	}
	if len(contacts) > 0 {
		joined := strings.Join(dedupe(contacts), "\n")
		if !strings.Contains(b.String(), joined) {
			b.WriteString("\nיצירת קשר:\n" + joined)
		}
	}
	return strings.TrimSpace(b.String())
}

func dedupe(values []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
