package recognize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// institutional and administrative vocabulary that never appears in a person's name
var nameDenylist = map[string]struct{}{
	"ipt": {}, "instituto": {}, "institute": {}, "politécnico": {}, "politecnico": {},
	"polytechnic": {}, "tomar": {}, "abrantes": {}, "escola": {}, "school": {},
	"superior": {}, "departamento": {}, "department": {}, "depart": {}, "unidade": {},
	"área": {}, "area": {}, "serviços": {}, "servicos": {}, "services": {},
	"direção": {}, "direcao": {}, "conselho": {}, "presidente": {}, "presidência": {},
	"comissão": {}, "comissao": {}, "secretaria": {}, "gabinete": {}, "universidade": {},
	"university": {}, "faculdade": {}, "faculty": {}, "estt": {}, "esgt": {}, "esta": {},
	"tecnologia": {}, "gestão": {}, "gestao": {}, "curso": {}, "mestrado": {},
	"licenciatura": {}, "perfil": {}, "página": {}, "pagina": {}, "contactos": {},
	"engenharia": {}, "informática": {}, "informatica": {}, "ciências": {}, "ciencias": {},
	"matemática": {}, "física": {}, "química": {}, "economia": {}, "direito": {},
	"design": {}, "artes": {}, "línguas": {}, "educação": {}, "saúde": {},
	"lista": {}, "docentes": {}, "pessoal": {}, "relatório": {}, "tabela": {},
	"total": {}, "ano": {}, "letivo": {}, "recursos": {}, "humanos": {},
}

// title and label words that end a name when they follow it on the same line
var nameStopwords = map[string]struct{}{
	"prof": {}, "professor": {}, "professora": {}, "dr": {}, "dra": {},
	"coordenador": {}, "coordenadora": {}, "adjunto": {}, "adjunta": {},
	"assistente": {}, "equiparado": {}, "equiparada": {}, "convidado": {}, "convidada": {},
	"auxiliar": {}, "associado": {}, "associada": {}, "catedrático": {}, "catedrática": {},
	"leitor": {}, "leitora": {}, "doutor": {}, "doutora": {}, "eng": {}, "mestre": {},
	"categoria": {}, "nome": {}, "name": {}, "email": {}, "telefone": {}, "phone": {},
	"orcid": {}, "completo": {},
}

var nameParticles = map[string]struct{}{
	"da": {}, "de": {}, "do": {}, "das": {}, "dos": {}, "e": {}, "del": {}, "van": {}, "von": {},
}

var (
	reHonorificName = regexp.MustCompile(`(?:\bProf(?:essor|essora)?\.?|\bDr\.?|\bDra\.?)\s+(\p{Lu}[\p{L}'-]+(?:\s+(?:(?:da|de|do|das|dos|e)\s+)?\p{Lu}[\p{L}'-]+)+)`)
	reCapitalRun    = regexp.MustCompile(`\p{Lu}[\p{L}'-]+(?:\s+(?:(?:da|de|do|das|dos|e)\s+)?\p{Lu}[\p{L}'-]+)+`)
)

func normToken(w string) string {
	return strings.ToLower(strings.Trim(w, ".,;:()[]'\""))
}

func isCapitalized(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r)
}

// gluedCase reports a capital following a lowercase letter inside one token,
// which is how words run together when a PDF drops the spaces between cells
// ("NomeCategoriaAna"). Mc and Mac surnames are allowed.
func gluedCase(w string) bool {
	if strings.HasPrefix(w, "Mc") || strings.HasPrefix(w, "Mac") {
		w = strings.TrimPrefix(strings.TrimPrefix(w, "Mc"), "Mac")
	}
	prevLower := false
	for _, r := range w {
		if prevLower && unicode.IsUpper(r) {
			return true
		}
		prevLower = unicode.IsLower(r)
	}
	return false
}

// LooksLikeName applies the structural heuristic: at least two words, at least two
// capitalized tokens, rune length within bounds, no digits or '@', no words run
// together, and no institutional vocabulary.
func (r *Recognizer) LooksLikeName(s string) bool {
	s = CollapseSpaces(s)
	n := utf8.RuneCountInString(s)
	if n < r.cfg.NameMinLength || n > r.cfg.NameMaxLength {
		return false
	}
	if strings.ContainsAny(s, "@0123456789/\\|") {
		return false
	}
	words := strings.Fields(s)
	if len(words) < 2 {
		return false
	}
	capitals := 0
	for _, w := range words {
		t := normToken(w)
		if _, bad := nameDenylist[t]; bad {
			return false
		}
		if _, stop := nameStopwords[t]; stop {
			return false
		}
		if gluedCase(w) {
			return false
		}
		if isCapitalized(w) {
			capitals++
		}
	}
	return capitals >= 2
}

// trimAtStopword drops leading title words from a capitalized run and cuts it at
// the next title or label word.
func trimAtStopword(run string) string {
	words := strings.Fields(run)
	for len(words) > 0 {
		if _, stop := nameStopwords[normToken(words[0])]; !stop {
			break
		}
		words = words[1:]
	}
	for i, w := range words {
		if _, stop := nameStopwords[normToken(w)]; stop {
			words = words[:i]
			break
		}
	}
	// never end on a particle ("Ana da")
	for len(words) > 0 {
		if _, p := nameParticles[normToken(words[len(words)-1])]; !p {
			break
		}
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// NameFromLine finds the first plausible person name in a free-text line.
// Honorific-prefixed names are tried before bare capitalized runs.
func (r *Recognizer) NameFromLine(line string) (string, bool) {
	if m := reHonorificName.FindStringSubmatch(line); m != nil {
		if cand := trimAtStopword(m[1]); r.LooksLikeName(cand) {
			return CollapseSpaces(cand), true
		}
	}
	for _, run := range reCapitalRun.FindAllString(line, -1) {
		if cand := trimAtStopword(run); r.LooksLikeName(cand) {
			return CollapseSpaces(cand), true
		}
	}
	return "", false
}

// NameFromHeadings returns the first heading that is itself a plausible name,
// or contains one. Raw heading text is returned unchanged when it passes as a whole.
func (r *Recognizer) NameFromHeadings(headings []string) (string, bool) {
	for _, h := range headings {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if r.LooksLikeName(h) {
			return h, true
		}
	}
	for _, h := range headings {
		if name, ok := r.NameFromLine(h); ok {
			return name, true
		}
	}
	return "", false
}
