package recognize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/faculty-tracker/constants"
)

type categoryRule struct {
	category constants.Category
	re       *regexp.Regexp
}

// ordered: specific titles first, generic ones last
var categoryRules = []categoryRule{
	{constants.ProfessorCoordenador, regexp.MustCompile(`(?i)\bprof(?:essor|essora|\.)?\s*coord(?:enador|enadora|\.)?`)},
	{constants.ProfessorAdjunto, regexp.MustCompile(`(?i)\bprof(?:essor|essora|\.)?\s*adj(?:unto|unta|\.)?`)},
	{constants.ProfessorCatedratico, regexp.MustCompile(`(?i)\bprofessora?\s+catedr[áa]tic[oa]|\bfull\s+professor`)},
	{constants.ProfessorAssociado, regexp.MustCompile(`(?i)\bprofessora?\s+associad[oa]|\bassociate\s+professor`)},
	{constants.ProfessorAuxiliar, regexp.MustCompile(`(?i)\bprofessora?\s+auxiliar|\bassistant\s+professor`)},
	{constants.Assistente, regexp.MustCompile(`(?i)\bassistente\b|\bassist\.`)},
	{constants.Equiparado, regexp.MustCompile(`(?i)\bequiparad[oa]\b`)},
	{constants.Convidado, regexp.MustCompile(`(?i)\bconvidad[oa]\b|\bconvid\.|\binvited\b|\bvisiting\s+professor`)},
	{constants.Leitor, regexp.MustCompile(`(?i)\bleitora?\b|\blecturer\b`)},
}

// Category returns the canonical academic title mentioned in text, or "".
func Category(text string) string {
	for _, rule := range categoryRules {
		if rule.re.MatchString(text) {
			return string(rule.category)
		}
	}
	return ""
}

// CategoryCell canonicalizes a table cell: a recognized title wins, otherwise a
// synonym lookup, otherwise the cleaned raw value.
func CategoryCell(cell string) string {
	cell = CollapseSpaces(cell)
	if cell == "" {
		return ""
	}
	if c := Category(cell); c != "" {
		return c
	}
	if c, ok := constants.Canonicalize(cell); ok {
		return string(c)
	}
	return cell
}

type departmentRule struct {
	re        *regexp.Regexp
	wholeText bool // keep the full match instead of the captured unit name
}

const unitTail = `([^,;|\n]+)`

var departmentRules = []departmentRule{
	{re: regexp.MustCompile(`(?i)\b(?:departamento|escola|unidade)\s*:\s*` + unitTail)},
	{re: regexp.MustCompile(`(?i)\bunidade\s+departamental\s+de\s+` + unitTail)},
	{re: regexp.MustCompile(`(?i)\bdepartamento\s+de\s+` + unitTail)},
	{re: regexp.MustCompile(`(?i)\bdepart\.?\s+(?:de\s+)?` + unitTail)},
	{re: regexp.MustCompile(`(?i)(?:^|[^\p{L}])[áa]rea\s+(?:cient[íi]fica\s+)?de\s+` + unitTail)},
	{re: regexp.MustCompile(`(?i)\bescola\s+(?:superior\s+)?de\s+[^,;|\n]+`), wholeText: true},
	{re: regexp.MustCompile(`\b(?:ESTT|ESGT|ESTA)\b`), wholeText: true},
	{re: regexp.MustCompile(`(?i)\bdepartment\s+of\s+` + unitTail)},
	{re: regexp.MustCompile(`(?i)\bschool\s+of\s+[^,;|\n]+`), wholeText: true},
}

var (
	reColumnGap   = regexp.MustCompile(`\s{2,}|\t`)
	reTrailingCut = regexp.MustCompile(`(?i)\s+(?:(?:e-?mail|tel(?:efone)?|phone|orcid|categoria|category)\b|\S*@|\+?\d{3}\s?\d{3}).*$`)
)

const maxDepartmentRunes = 120

func cleanUnit(s string) string {
	s = strings.TrimSpace(s)
	// layout text separates columns with runs of spaces
	if loc := reColumnGap.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = reTrailingCut.ReplaceAllString(s, "")
	s = strings.Trim(CollapseSpaces(s), " .:-–")
	if utf8.RuneCountInString(s) > maxDepartmentRunes {
		s = string([]rune(s)[:maxDepartmentRunes])
	}
	return s
}

// Department returns the organizational unit mentioned in text, or "".
func Department(text string) string {
	for _, rule := range departmentRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var v string
		if rule.wholeText || len(m) < 2 {
			v = m[0]
		} else {
			v = m[1]
		}
		if v = cleanUnit(v); v != "" {
			return v
		}
	}
	return ""
}

// DepartmentCell returns the unit named by a table cell: a pattern match if one
// applies, otherwise the cleaned raw value.
func DepartmentCell(cell string) string {
	cell = CollapseSpaces(cell)
	if cell == "" {
		return ""
	}
	if d := Department(cell); d != "" {
		return d
	}
	return cell
}
