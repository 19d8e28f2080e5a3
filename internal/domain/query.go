package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Relation names the entity a searchable field lives on.
type Relation string

const (
	RelationIntern  Relation = "intern"
	RelationEmails  Relation = "emails"
	RelationGithub  Relation = "github"
	RelationSlack   Relation = "slack"
	RelationDropbox Relation = "dropbox"
)

// Kind is the value type of a field, used to coerce filter values.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindDate
	KindGender
)

// Comparison is how a predicate value is matched against a field.
type Comparison int

const (
	// Contains is a case-sensitive substring match. An empty value matches everything.
	Contains Comparison = iota
	// Equals is an exact match.
	Equals
)

func (c Comparison) String() string {
	switch c {
	case Contains:
		return "contains"
	case Equals:
		return "equals"
	}
	return fmt.Sprintf("comparison(%d)", int(c))
}

// Field is a logical search/filter field name.
type Field string

const (
	FieldEmpID           Field = "emp_id"
	FieldDisplayName     Field = "display_name"
	FieldFirstName       Field = "first_name"
	FieldLastName        Field = "last_name"
	FieldBatch           Field = "batch"
	FieldDOB             Field = "dob"
	FieldPhoneNumber     Field = "phone_number"
	FieldGender          Field = "gender"
	FieldEmail           Field = "email"
	FieldGithubUsername  Field = "github_username"
	FieldSlackUsername   Field = "slack_username"
	FieldDropboxUsername Field = "dropbox_username"
)

// FieldRef resolves a logical field to the relation and column that hold it.
type FieldRef struct {
	Relation Relation
	Column   string
	Kind     Kind
}

var fieldRefs = map[Field]FieldRef{
	FieldEmpID:           {RelationIntern, "emp_id", KindInt},
	FieldDisplayName:     {RelationIntern, "display_name", KindString},
	FieldFirstName:       {RelationIntern, "first_name", KindString},
	FieldLastName:        {RelationIntern, "last_name", KindString},
	FieldBatch:           {RelationIntern, "batch", KindInt},
	FieldDOB:             {RelationIntern, "dob", KindDate},
	FieldPhoneNumber:     {RelationIntern, "phone_number", KindString},
	FieldGender:          {RelationIntern, "gender", KindGender},
	FieldEmail:           {RelationEmails, "address", KindString},
	FieldGithubUsername:  {RelationGithub, "username", KindString},
	FieldSlackUsername:   {RelationSlack, "username", KindString},
	FieldDropboxUsername: {RelationDropbox, "username", KindString},
}

// Ref returns the storage location of f.
func (f Field) Ref() (FieldRef, bool) {
	ref, ok := fieldRefs[f]
	return ref, ok
}

// ParseField returns the Field named s, or ErrUnknownFilter.
func ParseField(s string) (Field, error) {
	f := Field(s)
	if _, ok := fieldRefs[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
	return f, nil
}

// SearchFields are the fields scanned by free-text search.
var SearchFields = []Field{
	FieldEmpID,
	FieldDisplayName,
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldGithubUsername,
	FieldSlackUsername,
	FieldDropboxUsername,
}

// FilterFields are the fields accepted by attribute filtering, in display order.
var FilterFields = []Field{
	FieldEmpID,
	FieldDisplayName,
	FieldFirstName,
	FieldLastName,
	FieldBatch,
	FieldDOB,
	FieldPhoneNumber,
	FieldGender,
	FieldEmail,
	FieldGithubUsername,
	FieldSlackUsername,
	FieldDropboxUsername,
}

// Predicate is a single field comparison.
type Predicate struct {
	Field      Field
	Comparison Comparison
	Value      string
}

// Query selects interns matching at least one AnyOf predicate (when any are given)
// and every AllOf predicate. Results are distinct and ordered by intern id.
type Query struct {
	AnyOf []Predicate
	AllOf []Predicate
}

// IsEmpty reports whether q has no predicates and therefore matches every intern.
func (q Query) IsEmpty() bool {
	return len(q.AnyOf) == 0 && len(q.AllOf) == 0
}

// Coerce converts a filter value to the Go type of kind.
// ok is false when the value cannot hold for any intern.
func Coerce(kind Kind, value string) (v interface{}, ok bool) {
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		return n, err == nil
	case KindDate:
		d, ok := ParseDate(strings.TrimSpace(value))
		return d, ok
	case KindGender:
		g, ok := ParseGender(value)
		return string(g), ok
	}
	return value, true
}

// Matches evaluates q against in.
func (q Query) Matches(in *Intern) bool {
	for _, p := range q.AllOf {
		if !p.Matches(in) {
			return false
		}
	}
	if len(q.AnyOf) == 0 {
		return true
	}
	for _, p := range q.AnyOf {
		if p.Matches(in) {
			return true
		}
	}
	return false
}

// Matches evaluates p against in and its dependents.
func (p Predicate) Matches(in *Intern) bool {
	ref, ok := p.Field.Ref()
	if !ok {
		return false
	}
	for _, v := range fieldValues(in, ref) {
		if p.matchValue(ref.Kind, v) {
			return true
		}
	}
	return false
}

func (p Predicate) matchValue(kind Kind, v string) bool {
	if p.Comparison == Contains {
		return strings.Contains(v, p.Value)
	}
	want, ok := Coerce(kind, p.Value)
	if !ok {
		return false
	}
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(v, 10, 64)
		return err == nil && n == want.(int64)
	case KindDate:
		return v == FormatDate(want.(time.Time))
	}
	return v == want.(string)
}

// fieldValues returns the string values ref holds for in; one per email for
// the emails relation and none for a missing identity link.
func fieldValues(in *Intern, ref FieldRef) []string {
	switch ref.Relation {
	case RelationIntern:
		return []string{internColumn(in, ref.Column)}
	case RelationEmails:
		values := make([]string, 0, len(in.Emails))
		for _, e := range in.Emails {
			values = append(values, e.Address)
		}
		return values
	case RelationGithub, RelationSlack, RelationDropbox:
		if l := in.Link(Provider(ref.Relation)); l != nil {
			return []string{l.Username}
		}
	}
	return nil
}

func internColumn(in *Intern, column string) string {
	switch column {
	case "emp_id":
		return strconv.FormatInt(in.EmpID, 10)
	case "display_name":
		return in.DisplayName
	case "first_name":
		return in.FirstName
	case "last_name":
		return in.LastName
	case "batch":
		return strconv.Itoa(in.Batch)
	case "dob":
		return FormatDate(in.DOB)
	case "phone_number":
		return in.PhoneNumber
	case "gender":
		return string(in.Gender)
	}
	return ""
}
