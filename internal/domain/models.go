package domain

import (
	"strings"
	"time"
)

// ==================== ROSTER ====================

// Gender is the normalised gender of an intern.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender matches s case-insensitively against the accepted genders.
// "others" is accepted as a synonym of "other".
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return GenderMale, true
	case "female":
		return GenderFemale, true
	case "other", "others":
		return GenderOther, true
	}
	return "", false
}

// Email categories known to the importer.
const (
	EmailCategoryThoughtWorks = "ThoughtWorks"
	EmailCategoryPersonal     = "Personal"
)

// Intern represents the interns table. An intern owns its emails and identity links.
type Intern struct {
	ID          int64         `json:"id" db:"id"`
	EmpID       int64         `json:"emp_id" db:"emp_id"`
	DisplayName string        `json:"display_name" db:"display_name"`
	FirstName   string        `json:"first_name" db:"first_name"`
	LastName    string        `json:"last_name" db:"last_name"`
	Batch       int           `json:"batch" db:"batch"`
	DOB         time.Time     `json:"dob" db:"dob"`
	Gender      Gender        `json:"gender" db:"gender"`
	PhoneNumber string        `json:"phone_number" db:"phone_number"`
	Emails      []Email       `json:"emails"`
	Github      *IdentityLink `json:"github,omitempty"`
	Slack       *IdentityLink `json:"slack,omitempty"`
	Dropbox     *IdentityLink `json:"dropbox,omitempty"`
}

// Email represents the emails table.
type Email struct {
	ID       int64  `json:"id" db:"id"`
	InternID int64  `json:"intern_id" db:"intern_id"`
	Category string `json:"category" db:"category"`
	Address  string `json:"address" db:"address"`
}

// Provider identifies the service an identity link belongs to.
type Provider string

const (
	ProviderGithub  Provider = "github"
	ProviderSlack   Provider = "slack"
	ProviderDropbox Provider = "dropbox"
)

// Providers lists the identity providers in a fixed order.
var Providers = []Provider{ProviderGithub, ProviderSlack, ProviderDropbox}

// IdentityLink represents one of the github_info, slack_info or dropbox_info tables.
type IdentityLink struct {
	ID       int64  `json:"id" db:"id"`
	InternID int64  `json:"intern_id" db:"intern_id"`
	Username string `json:"username" db:"username"`
}

// Link returns the intern's link for the given provider, or nil.
func (i *Intern) Link(p Provider) *IdentityLink {
	switch p {
	case ProviderGithub:
		return i.Github
	case ProviderSlack:
		return i.Slack
	case ProviderDropbox:
		return i.Dropbox
	}
	return nil
}

// SetLink attaches l as the intern's link for the given provider.
func (i *Intern) SetLink(p Provider, l *IdentityLink) {
	switch p {
	case ProviderGithub:
		i.Github = l
	case ProviderSlack:
		i.Slack = l
	case ProviderDropbox:
		i.Dropbox = l
	}
}

// EmailByCategory returns the first email of the given category.
func (i *Intern) EmailByCategory(category string) (Email, bool) {
	for _, e := range i.Emails {
		if e.Category == category {
			return e, true
		}
	}
	return Email{}, false
}

// NewInternTemplate returns an intern with its dependents prebuilt:
// one email per known category and an empty link for every provider.
func NewInternTemplate() *Intern {
	in := &Intern{
		Emails: []Email{
			{Category: EmailCategoryThoughtWorks},
			{Category: EmailCategoryPersonal},
		},
	}
	for _, p := range Providers {
		in.SetLink(p, &IdentityLink{})
	}
	return in
}

// ==================== BATCHES ====================

// Batch represents the batches table.
type Batch struct {
	ID        int64     `json:"id" db:"id"`
	BatchName string    `json:"batch_name" db:"batch_name"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
}
