package recognize

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/faculty-tracker/constants"
	"github.com/joseph-ayodele/faculty-tracker/internal/entity"
)

// ColumnMap maps each recognized field to the index of the column holding it.
type ColumnMap map[constants.FieldKind]int

func headerPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:` + strings.Join(quoted, "|") + `)(?:$|[^\p{L}])`)
}

// header keywords per field, tried in constants.AllFields order
var headerKeywords = map[constants.FieldKind]*regexp.Regexp{
	constants.FieldName:         headerPattern("nome", "name", "docente", "professor", "faculty"),
	constants.FieldCategory:     headerPattern("categoria", "category", "cargo", "position", "grau"),
	constants.FieldDepartment:   headerPattern("departamento", "department", "área", "area", "escola", "school", "unidade"),
	constants.FieldEmail:        headerPattern("email", "e-mail", "correio", "mail"),
	constants.FieldPhone:        headerPattern("telefone", "phone", "tel", "extensão", "extensao"),
	constants.FieldResearcherID: headerPattern("orcid", "researcher", "researcherid"),
}

// headerKind reports which field a header cell names. Cells that read as a
// category value ("Professor Adjunto") are data, not headers.
func headerKind(cell string) (constants.FieldKind, bool) {
	cell = CollapseSpaces(cell)
	if cell == "" || len(strings.Fields(cell)) > 3 || Category(cell) != "" {
		return "", false
	}
	for _, k := range constants.AllFields {
		if headerKeywords[k].MatchString(cell) {
			return k, true
		}
	}
	return "", false
}

func hasContactValue(cell string) bool {
	return Email(cell) != "" || Phone(cell) != "" || ResearcherID(cell) != ""
}

// isHeaderRow is true when some cell names a field and no cell carries contact data.
func isHeaderRow(row []string) bool {
	named := false
	for _, c := range row {
		if hasContactValue(c) {
			return false
		}
		if _, ok := headerKind(c); ok {
			named = true
		}
	}
	return named
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func width(rows [][]string) int {
	w := 0
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// sample returns up to n non-empty values of column col.
func sample(rows [][]string, col, n int) []string {
	var out []string
	for _, r := range rows {
		if v := cell(r, col); v != "" {
			out = append(out, v)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

// IdentifyColumns maps fields to columns. Header keywords win; otherwise columns
// are classified from their first sampled values. dataStart is the index of the
// first data row (1 when rows[0] is a header).
func (r *Recognizer) IdentifyColumns(rows [][]string) (cols ColumnMap, dataStart int) {
	cols = ColumnMap{}
	if len(rows) == 0 {
		return cols, 0
	}
	used := map[int]bool{}

	if isHeaderRow(rows[0]) {
		dataStart = 1
		for i, c := range rows[0] {
			k, ok := headerKind(c)
			if !ok {
				continue
			}
			if _, taken := cols[k]; taken {
				continue
			}
			cols[k] = i
			used[i] = true
		}
	}

	data := rows[dataStart:]
	n := r.cfg.NameColumnSample
	hits := r.cfg.NameColumnMinHits
	w := width(rows)

	detect := func(kind constants.FieldKind, threshold func(sampled int) int, match func(string) bool) {
		if _, ok := cols[kind]; ok {
			return
		}
		for i := 0; i < w; i++ {
			if used[i] {
				continue
			}
			vals := sample(data, i, n)
			if len(vals) == 0 {
				continue
			}
			score := 0
			for _, v := range vals {
				if match(v) {
					score++
				}
			}
			if score >= threshold(len(vals)) {
				cols[kind] = i
				used[i] = true
				return
			}
		}
	}
	atLeastHits := func(int) int { return hits }
	atLeastHalf := func(sampled int) int { return (sampled + 1) / 2 }

	// contact columns first so their cells never count as names
	detect(constants.FieldEmail, atLeastHalf, func(v string) bool { return Email(v) != "" })
	detect(constants.FieldResearcherID, atLeastHalf, func(v string) bool { return ResearcherID(v) != "" })
	detect(constants.FieldPhone, atLeastHalf, func(v string) bool { return Phone(v) != "" })
	detect(constants.FieldName, atLeastHits, r.LooksLikeName)
	detect(constants.FieldCategory, atLeastHits, func(v string) bool { return Category(v) != "" })
	detect(constants.FieldDepartment, atLeastHits, func(v string) bool { return Department(v) != "" })
	return cols, dataStart
}

// RecordsFromTable turns each data row with a plausible name into Fields.
// Tables without a name column yield nothing.
func (r *Recognizer) RecordsFromTable(rows [][]string) []TableMatch {
	cols, start := r.IdentifyColumns(rows)
	nameCol, ok := cols[constants.FieldName]
	if !ok {
		return nil
	}
	var out []TableMatch
	for i := start; i < len(rows); i++ {
		row := rows[i]
		name := cell(row, nameCol)
		if !r.LooksLikeName(name) {
			continue
		}
		var f entity.Fields
		f.Set(constants.FieldName, name)
		if c, ok := cols[constants.FieldCategory]; ok {
			f.Set(constants.FieldCategory, CategoryCell(cell(row, c)))
		}
		if c, ok := cols[constants.FieldDepartment]; ok {
			f.Set(constants.FieldDepartment, DepartmentCell(cell(row, c)))
		}
		whole := strings.Join(row, " ")
		f.Set(constants.FieldEmail, r.emailIn(pick(cols, constants.FieldEmail, row, whole)))
		f.Set(constants.FieldPhone, Phone(pick(cols, constants.FieldPhone, row, whole)))
		f.Set(constants.FieldResearcherID, ResearcherID(pick(cols, constants.FieldResearcherID, row, whole)))
		out = append(out, TableMatch{Row: i, Fields: f})
	}
	return out
}

// TableMatch is one recognized table row (0-based index into the table).
type TableMatch struct {
	Row    int
	Fields entity.Fields
}

// pick returns the mapped column's cell, or the whole row when the field has no column.
func pick(cols ColumnMap, kind constants.FieldKind, row []string, whole string) string {
	if c, ok := cols[kind]; ok {
		return cell(row, c)
	}
	return whole
}

func (r *Recognizer) emailIn(text string) string {
	return PreferredEmail(text, r.cfg.PreferredEmailDomain)
}
