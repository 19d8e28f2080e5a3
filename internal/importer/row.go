package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/schema"
)

// Candidate is an intern built from one row together with its dependents.
// Nothing in a candidate has been persisted.
type Candidate struct {
	Row    domain.Row
	Intern *domain.Intern
	Errors []string
}

// Valid reports whether the last validation found no errors.
func (c *Candidate) Valid() bool {
	return len(c.Errors) == 0
}

// Err returns the validation failure of the candidate, or nil.
func (c *Candidate) Err() error {
	if c.Valid() {
		return nil
	}
	return &RowValidationError{Messages: append([]string(nil), c.Errors...)}
}

// RowValidator builds and validates intern candidates against a schema.
type RowValidator struct {
	registry schema.Registry
	now      func() time.Time
}

// Option configures a RowValidator.
type Option func(*RowValidator)

// WithClock overrides the clock used for the date of birth rule.
func WithClock(now func() time.Time) Option {
	return func(v *RowValidator) {
		v.now = now
	}
}

// NewRowValidator creates a validator for the given registry.
func NewRowValidator(reg schema.Registry, opts ...Option) *RowValidator {
	v := &RowValidator{registry: reg, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Registry returns the schema the validator checks against.
func (v *RowValidator) Registry() schema.Registry {
	return v.registry
}

// EmailColumn returns the column holding the address of an email category.
func EmailColumn(category string) string {
	return strings.ToLower(category) + "_email"
}

// UsernameColumn returns the column holding the username of a provider.
func UsernameColumn(p domain.Provider) string {
	return string(p) + "_username"
}

// Build constructs the intern, its emails and its identity links from row.
// Values that do not parse are left at their zero value; Validate reports them.
func (v *RowValidator) Build(row domain.Row) *Candidate {
	in := &domain.Intern{
		DisplayName: row.Get(schema.ColDisplayName),
		FirstName:   row.Get(schema.ColFirstName),
		LastName:    row.Get(schema.ColLastName),
		PhoneNumber: row.Get(schema.ColPhoneNumber),
	}
	if n, ok := parseInt(row.Get(schema.ColEmpID)); ok {
		in.EmpID = n
	}
	if n, ok := parseTruncated(row.Get(schema.ColBatch)); ok {
		in.Batch = int(n)
	}
	if d, ok := domain.ParseDate(row.Get(schema.ColDOB)); ok {
		in.DOB = d
	}
	if g, ok := domain.ParseGender(row.Get(schema.ColGender)); ok {
		in.Gender = g
	} else {
		in.Gender = domain.Gender(strings.ToLower(row.Get(schema.ColGender)))
	}

	for _, category := range v.registry.EmailCategories() {
		in.Emails = append(in.Emails, domain.Email{
			Category: category,
			Address:  row.Get(EmailColumn(category)),
		})
	}
	for _, p := range domain.Providers {
		in.SetLink(p, &domain.IdentityLink{Username: row.Get(UsernameColumn(p))})
	}

	return &Candidate{Row: row, Intern: in}
}

// Validate applies every rule to the candidate's row and stores the messages on it.
// Calling it again on an unchanged candidate yields the same messages.
func (v *RowValidator) Validate(c *Candidate) []string {
	var msgs []string
	add := func(column, msg string) {
		msgs = append(msgs, v.registry.Label(column)+" "+msg)
	}
	row := c.Row

	for _, column := range v.registry.Required() {
		if isBlank(row[column]) {
			add(column, msgBlank)
		}
	}

	if phone := row.Get(schema.ColPhoneNumber); phone != "" {
		if wrongLength(phone, phoneLength) {
			add(schema.ColPhoneNumber, msgPhoneLength)
		}
		if !isDigitsOrSpace(phone) {
			add(schema.ColPhoneNumber, msgPhoneDigits)
		}
	}

	if empID := row.Get(schema.ColEmpID); empID != "" {
		if !isNumber(empID) {
			add(schema.ColEmpID, msgNotNumber)
		} else if _, ok := parseInt(empID); !ok {
			add(schema.ColEmpID, msgNotInteger)
		}
		if tooLong(empID, maxEmpIDLength) {
			add(schema.ColEmpID, tooLongMessage(maxEmpIDLength))
		}
	}

	if batch := row.Get(schema.ColBatch); batch != "" && !isNumber(batch) {
		add(schema.ColBatch, msgNotNumber)
	}

	if gender := row.Get(schema.ColGender); gender != "" && !isGender(gender) {
		add(schema.ColGender, msgGender)
	}

	if dob := row.Get(schema.ColDOB); dob != "" {
		if d, ok := domain.ParseDate(dob); !ok {
			add(schema.ColDOB, msgBadDate)
		} else if !isPast(d, v.now()) {
			msgs = append(msgs, labelDateOfBirth+" "+msgDOBPast)
		}
	}

	for _, column := range []string{schema.ColFirstName, schema.ColLastName} {
		if name := row.Get(column); name != "" && !isLettersOrSpace(name) {
			add(column, msgNameChars)
		}
	}

	c.Errors = msgs
	return msgs
}

// Check builds and validates row in one step.
func (v *RowValidator) Check(row domain.Row) *Candidate {
	c := v.Build(row)
	v.Validate(c)
	return c
}

// RowFromIntern renders an intern back into its import row so that records
// created outside an import go through the same rules. Numeric columns are
// always present since zero is a valid value for them.
func RowFromIntern(in *domain.Intern) domain.Row {
	row := domain.Row{
		schema.ColEmpID:       strconv.FormatInt(in.EmpID, 10),
		schema.ColBatch:       strconv.Itoa(in.Batch),
		schema.ColDisplayName: in.DisplayName,
		schema.ColFirstName:   in.FirstName,
		schema.ColLastName:    in.LastName,
		schema.ColGender:      string(in.Gender),
		schema.ColPhoneNumber: in.PhoneNumber,
	}
	if !in.DOB.IsZero() {
		row[schema.ColDOB] = domain.FormatDate(in.DOB)
	}
	for _, e := range in.Emails {
		row[EmailColumn(e.Category)] = e.Address
	}
	for _, p := range domain.Providers {
		if l := in.Link(p); l != nil {
			row[UsernameColumn(p)] = l.Username
		}
	}
	return row
}
