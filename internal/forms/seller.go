package forms

import (
	"net/url"
	"strings"

	"elyukal/internal/apiclient"
	"elyukal/internal/domain"
)

// ProfileForm is the store owner's own account. Email is the sign-in
// identity and is not editable here.
type ProfileForm struct {
	FirstName   string `form:"first_name" label:"First name" validate:"min=2"`
	LastName    string `form:"last_name" label:"Last name" validate:"min=2"`
	PhoneNumber string `form:"phone_number" label:"Phone number" validate:"omitempty,min=7"`
}

func ParseProfile(v url.Values) (ProfileForm, Errors) {
	f := ProfileForm{
		FirstName:   text(v, "first_name"),
		LastName:    text(v, "last_name"),
		PhoneNumber: text(v, "phone_number"),
	}
	return f, check(f, nil)
}

func ProfileFromDomain(p domain.Profile) ProfileForm {
	return ProfileForm{FirstName: p.FirstName, LastName: p.LastName, PhoneNumber: p.PhoneNumber}
}

func (f ProfileForm) Payload() *apiclient.Payload {
	return (&apiclient.Payload{}).
		Set("first_name", f.FirstName).
		Set("last_name", f.LastName).
		Set("phone_number", f.PhoneNumber)
}

type ApplicationForm struct {
	FirstName       string `form:"first_name" label:"First name" validate:"min=2"`
	LastName        string `form:"last_name" label:"Last name" validate:"min=2"`
	Email           string `form:"email" label:"Email" validate:"required,email,max=254"`
	Password        string `form:"password" label:"Password" validate:"min=8"`
	ConfirmPassword string `form:"confirm_password" label:"Password confirmation" validate:"eqfield=Password"`
	PhoneNumber     string `form:"phone_number" label:"Phone number" validate:"min=10"`
}

// ParseApplication binds the applicant's details. Passwords are taken as
// typed.
func ParseApplication(v url.Values) (ApplicationForm, Errors) {
	f := ApplicationForm{
		FirstName:       text(v, "first_name"),
		LastName:        text(v, "last_name"),
		Email:           strings.ToLower(text(v, "email")),
		Password:        v.Get("password"),
		ConfirmPassword: v.Get("confirm_password"),
		PhoneNumber:     text(v, "phone_number"),
	}
	return f, check(f, nil)
}

var requiredDocuments = []FieldError{
	{Field: domain.SlotBusinessPermit, Message: "Business permit is required"},
	{Field: domain.SlotValidID, Message: "Valid ID is required"},
}

// MissingDocuments reports the required documents not yet staged.
func MissingDocuments(staged []domain.StagedFile) Errors {
	have := map[string]bool{}
	for _, f := range staged {
		have[f.Slot] = true
	}
	var out Errors
	for _, d := range requiredDocuments {
		if !have[d.Field] {
			out = append(out, d)
		}
	}
	return out
}

// Payload always goes out as multipart: the documents are required.
func (f ApplicationForm) Payload(staged []domain.StagedFile) *apiclient.Payload {
	p := &apiclient.Payload{}
	p.Set("first_name", f.FirstName).
		Set("last_name", f.LastName).
		Set("email", f.Email).
		Set("password", f.Password).
		Set("phone_number", f.PhoneNumber)
	attach(p, staged)
	return p
}
