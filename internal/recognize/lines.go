package recognize

import (
	"strings"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

// LineMatch is one person recognized in free text (1-based line number).
type LineMatch struct {
	Line   int
	Fields entity.Fields
}

const (
	contextBefore = 2
	contextAfter  = 3
)

// RecognizeText scans text line by line. Every line holding a plausible name yields
// a match; contact identifiers missing from the line are looked up in the
// surrounding lines.
func (r *Recognizer) RecognizeText(text string) []LineMatch {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var out []LineMatch
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lo := max(0, i-contextBefore)
		hi := min(len(lines), i+contextAfter)
		if f, ok := r.RecognizeLine(line, strings.Join(lines[lo:hi], " ")); ok {
			out = append(out, LineMatch{Line: i + 1, Fields: f})
		}
	}
	return out
}

// RecognizeLine reads one free-text line. Category and department come from the
// line itself; email, phone and researcher id from the line or, failing that,
// from context. ok is false when the line names nobody.
func (r *Recognizer) RecognizeLine(line, context string) (entity.Fields, bool) {
	line = strings.TrimSpace(line)
	name, ok := r.NameFromLine(line)
	if !ok {
		return entity.Fields{}, false
	}
	var f entity.Fields
	f.Set(constants.FieldName, name)
	f.Set(constants.FieldCategory, Category(line))
	f.Set(constants.FieldDepartment, Department(line))
	f.Set(constants.FieldEmail, firstOf(r.emailIn(line), r.emailIn(context)))
	f.Set(constants.FieldPhone, firstOf(Phone(line), Phone(context)))
	f.Set(constants.FieldResearcherID, firstOf(ResearcherID(line), ResearcherID(context)))
	return f, true
}

// RecognizeProfile reads the non-name fields of a single-person page.
func (r *Recognizer) RecognizeProfile(text string) entity.Fields {
	var f entity.Fields
	f.Set(constants.FieldCategory, Category(text))
	f.Set(constants.FieldDepartment, Department(text))
	f.Set(constants.FieldEmail, r.emailIn(text))
	f.Set(constants.FieldPhone, Phone(text))
	f.Set(constants.FieldResearcherID, ResearcherID(text))
	return f
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
