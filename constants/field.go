package constants

// FieldKind enumerates the semantic fields a candidate record can carry.
type FieldKind string

const (
	FieldName         FieldKind = "name"
	FieldCategory     FieldKind = "category"
	FieldDepartment   FieldKind = "department"
	FieldEmail        FieldKind = "email"
	FieldPhone        FieldKind = "phone"
	FieldResearcherID FieldKind = "researcherId"
)

// AllFields is the fixed column order used at every output boundary.
var AllFields = []FieldKind{
	FieldName,
	FieldCategory,
	FieldDepartment,
	FieldEmail,
	FieldPhone,
	FieldResearcherID,
}

// ParseFieldKind returns the FieldKind for s; unknown keys are rejected.
func ParseFieldKind(s string) (FieldKind, bool) {
	for _, k := range AllFields {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}
