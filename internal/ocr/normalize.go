package ocr

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reAtSpacing  = regexp.MustCompile(`([A-Za-z0-9._%+-]) ?(?:@|\(at\)|\[at\]) ?([A-Za-z0-9-]+\.)`)
)

var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-|]{3,}\s*$`)

// Normalize drops rule lines, collapses noisy whitespace and rejoins e-mail addresses that OCR split
// around the '@'. Line breaks are kept; more than one blank line collapses to one.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	// collapse too many blank lines
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	// trim trailing spaces on lines
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")
	s = reAtSpacing.ReplaceAllString(s, "$1@$2")
	return strings.TrimSpace(s)
}
