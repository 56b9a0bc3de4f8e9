package recognize

import (
	"regexp"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	rePhone = regexp.MustCompile(`\+351\s?\d{3}\s?\d{3}\s?\d{3}\b|\b\d{3}\s?\d{3}\s?\d{3}\b`)
	reORCID = regexp.MustCompile(`\b\d{4}-\d{4}-\d{4}-\d{3}[\dXx]\b`)
)

const orcidLength = 19

// Email returns the first address-shaped token in text, exactly as written.
func Email(text string) string {
	return reEmail.FindString(text)
}

// PreferredEmail returns the first address on domain (or a subdomain of it),
// falling back to the first address of any domain.
func PreferredEmail(text, domain string) string {
	all := reEmail.FindAllString(text, -1)
	if len(all) == 0 {
		return ""
	}
	domain = strings.ToLower(strings.TrimPrefix(domain, "@"))
	if domain != "" {
		for _, e := range all {
			host := strings.ToLower(e[strings.LastIndexByte(e, '@')+1:])
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return e
			}
		}
	}
	return all[0]
}

// Phone returns the first Portuguese-shaped phone number in text.
func Phone(text string) string {
	return strings.TrimSpace(rePhone.FindString(text))
}

// ResearcherID returns the first ORCID-shaped identifier, upper-casing the
// checksum digit. Anything other than the 19-character form is rejected.
func ResearcherID(text string) string {
	id := strings.ToUpper(reORCID.FindString(text))
	if len(id) != orcidLength {
		return ""
	}
	return id
}
