package service

import (
	"regexp"
	"strings"
)

// Document Intelligence returns markdown. The extraction model does better
// on plain text with explicit checkbox states, so the markup is flattened
// before prompting. The order matters: checkbox markers must be rewritten
// before table pipes and dividers are blanked out.
var (
	checkedBoxRe   = regexp.MustCompile(`\[[xX]\]|☒|☑|\(\s*[xX]\s*\)`)
	uncheckedBoxRe = regexp.MustCompile(`\[\s*\]|☐|\(\s+\)`)
	boldRe         = regexp.MustCompile(`\*\*([^*]*)\*\*`)
	italicRe       = regexp.MustCompile(`\*([^*]*)\*`)
	codeRe         = regexp.MustCompile("`([^`]*)`")
	dividerRe      = regexp.MustCompile(`-{3,}`)
	underscoreRe   = regexp.MustCompile(`[_]{3,}`)
	bulletRe       = regexp.MustCompile(`[•·]`)
	apostropheRe   = regexp.MustCompile("[`'′]")
	blankRunRe     = regexp.MustCompile(`\n\s*\n+`)
	spaceRunsRe    = regexp.MustCompile(`[ \t]+`)
)

// cleanOCRText flattens OCR markdown into the plain text fed to the
// extraction prompt. Pure and deterministic.
func cleanOCRText(text string) string {
	text = checkedBoxRe.ReplaceAllString(text, " CHECKED ")
	text = uncheckedBoxRe.ReplaceAllString(text, " UNCHECKED ")

	text = boldRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	text = codeRe.ReplaceAllString(text, "$1")

	text = strings.ReplaceAll(text, "|", " ")
	text = dividerRe.ReplaceAllString(text, " ")
	text = underscoreRe.ReplaceAllString(text, " ")
	text = bulletRe.ReplaceAllString(text, " ")
	text = apostropheRe.ReplaceAllString(text, "'")

	text = blankRunRe.ReplaceAllString(text, "\n")
	text = spaceRunsRe.ReplaceAllString(text, " ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
