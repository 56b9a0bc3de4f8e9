package constants

import (
	"strings"
)

// Category is the canonical academic job title of a faculty member.
type Category string

const (
	ProfessorCoordenador Category = "Professor Coordenador"
	ProfessorAdjunto     Category = "Professor Adjunto"
	ProfessorCatedratico Category = "Professor Catedrático"
	ProfessorAssociado   Category = "Professor Associado"
	ProfessorAuxiliar    Category = "Professor Auxiliar"
	Assistente           Category = "Assistente"
	Equiparado           Category = "Equiparado"
	Convidado            Category = "Convidado"
	Leitor               Category = "Leitor"
	Other                Category = ""
)

var allCategories = []Category{
	ProfessorCoordenador,
	ProfessorAdjunto,
	ProfessorCatedratico,
	ProfessorAssociado,
	ProfessorAuxiliar,
	Assistente,
	Equiparado,
	Convidado,
	Leitor,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps an observed job title (Portuguese or English, abbreviated or not)
// to its canonical Category.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.Join(strings.Fields(strings.ToLower(input)), " ")

	// synonyms map
	synonyms := map[string]Category{
		"prof. coord.":          ProfessorCoordenador,
		"prof coord":            ProfessorCoordenador,
		"professor coord.":      ProfessorCoordenador,
		"coordinator":           ProfessorCoordenador,
		"prof. adj.":            ProfessorAdjunto,
		"prof adj":              ProfessorAdjunto,
		"professor adj.":        ProfessorAdjunto,
		"adjunct professor":     ProfessorAdjunto,
		"professor catedratico": ProfessorCatedratico,
		"full professor":        ProfessorCatedratico,
		"associate professor":   ProfessorAssociado,
		"assistant professor":   ProfessorAuxiliar,
		"assistant":             Assistente,
		"teaching assistant":    Assistente,
		"equiparado":            Equiparado,
		"guest":                 Convidado,
		"invited":               Convidado,
		"visiting professor":    Convidado,
		"lecturer":              Leitor,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	// check if it matches any category string
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}
