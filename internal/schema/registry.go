// Package schema declares the importable intern columns and their rules.
package schema

import "github.com/Sanjit42/naming-service/internal/domain"

// Column names accepted in an import header.
const (
	ColEmpID             = "emp_id"
	ColDisplayName       = "display_name"
	ColFirstName         = "first_name"
	ColLastName          = "last_name"
	ColBatch             = "batch"
	ColDOB               = "dob"
	ColGender            = "gender"
	ColThoughtWorksEmail = "thoughtworks_email"
	ColPersonalEmail     = "personal_email"
	ColPhoneNumber       = "phone_number"
	ColGithubUsername    = "github_username"
	ColSlackUsername     = "slack_username"
	ColDropboxUsername   = "dropbox_username"
)

// FieldType is the expected type of a column value.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
	FieldDate
	FieldEnum
)

// FieldSpec defines one importable column.
type FieldSpec struct {
	Name     string    // Column header name
	Label    string    // Human readable name used as the prefix of error messages
	Type     FieldType // Expected data type
	Required bool      // Value must be non-blank on a persisted intern
}

// Registry is the immutable set of importable columns.
// The zero value accepts nothing; use New or Default.
type Registry struct {
	specs           []FieldSpec
	index           map[string]int
	emailCategories []string
}

// New builds a registry from specs in declaration order.
func New(specs []FieldSpec, emailCategories []string) Registry {
	r := Registry{
		specs:           append([]FieldSpec(nil), specs...),
		index:           make(map[string]int, len(specs)),
		emailCategories: append([]string(nil), emailCategories...),
	}
	for i, s := range r.specs {
		r.index[s.Name] = i
	}
	return r
}

// Default is the intern import schema.
var Default = New([]FieldSpec{
	{Name: ColEmpID, Label: "Emp id", Type: FieldNumeric, Required: true},
	{Name: ColDisplayName, Label: "Display name", Type: FieldText, Required: true},
	{Name: ColFirstName, Label: "First name", Type: FieldText, Required: true},
	{Name: ColLastName, Label: "Last name", Type: FieldText},
	{Name: ColBatch, Label: "Batch", Type: FieldNumeric, Required: true},
	{Name: ColDOB, Label: "Dob", Type: FieldDate, Required: true},
	{Name: ColGender, Label: "Gender", Type: FieldEnum, Required: true},
	{Name: ColThoughtWorksEmail, Label: "Thoughtworks email", Type: FieldText},
	{Name: ColPersonalEmail, Label: "Personal email", Type: FieldText},
	{Name: ColPhoneNumber, Label: "Phone number", Type: FieldText},
	{Name: ColGithubUsername, Label: "Github username", Type: FieldText},
	{Name: ColSlackUsername, Label: "Slack username", Type: FieldText},
	{Name: ColDropboxUsername, Label: "Dropbox username", Type: FieldText},
}, []string{domain.EmailCategoryThoughtWorks, domain.EmailCategoryPersonal})

// Has reports whether name is an importable column.
func (r Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Spec returns the column definition for name.
func (r Registry) Spec(name string) (FieldSpec, bool) {
	i, ok := r.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return r.specs[i], true
}

// Label returns the message prefix for name, falling back to the name itself.
func (r Registry) Label(name string) string {
	if s, ok := r.Spec(name); ok {
		return s.Label
	}
	return name
}

// Specs returns a copy of the column definitions in declaration order.
func (r Registry) Specs() []FieldSpec {
	return append([]FieldSpec(nil), r.specs...)
}

// Names returns the column names in declaration order.
func (r Registry) Names() []string {
	names := make([]string, len(r.specs))
	for i, s := range r.specs {
		names[i] = s.Name
	}
	return names
}

// Required returns the names of mandatory columns in declaration order.
func (r Registry) Required() []string {
	var names []string
	for _, s := range r.specs {
		if s.Required {
			names = append(names, s.Name)
		}
	}
	return names
}

// EmailCategories returns the email categories built for every row.
func (r Registry) EmailCategories() []string {
	return append([]string(nil), r.emailCategories...)
}
