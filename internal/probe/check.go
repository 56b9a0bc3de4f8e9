package probe

import (
	"regexp"
	"unicode/utf8"

	"github.com/joseph-ayodele/faculty-tracker/internal/profile"
)

// Rejection names the existence check a page failed. The empty value means accepted.
type Rejection string

const (
	Accepted       Rejection = ""
	TooSmall       Rejection = "body_too_small"
	NegativeMarker Rejection = "negative_marker"
	NoName         Rejection = "no_name"
	TooLittleText  Rejection = "text_too_short"
	Unparseable    Rejection = "unparseable"
)

var (
	// matched on whole words so that "Ferro" or "terror" never count as "erro"
	reNegativeMarker = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:erro|error|not found|p[áa]gina n[ãa]o encontrada)(?:[^\p{L}\p{N}]|$)`)
	// a bare status code only counts in the title or a heading; phone numbers
	// and room numbers in the body contain it too
	reStatusCode = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])404(?:[^\p{L}\p{N}]|$)`)
)

func errorPage(page *profile.Page) bool {
	if reNegativeMarker.MatchString(page.Text) {
		return true
	}
	for _, h := range page.NameCandidates() {
		if reStatusCode.MatchString(h) {
			return true
		}
	}
	return false
}

// assess runs the layered existence check on a successfully fetched body and
// returns the display name of an accepted profile.
func (p *Prober) assess(body []byte) (string, Rejection) {
	if len(body) < p.cfg.MinBodyBytes {
		return "", TooSmall
	}
	page, err := profile.Parse(body)
	if err != nil {
		return "", Unparseable
	}
	if errorPage(page) {
		return "", NegativeMarker
	}
	name, ok := p.rec.NameFromHeadings(page.NameCandidates())
	if !ok {
		return "", NoName
	}
	if utf8.RuneCountInString(page.Text) < p.cfg.MinTextChars {
		return "", TooLittleText
	}
	return name, Accepted
}
