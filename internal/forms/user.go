package forms

import (
	"net/url"
	"strings"

	"elyukal/internal/apiclient"
	"elyukal/internal/domain"
)

type UserForm struct {
	FirstName string `form:"first_name" label:"First name" validate:"min=2"`
	LastName  string `form:"last_name" label:"Last name" validate:"min=2"`
	Email     string `form:"email" label:"Email" validate:"required,email"`
}

func ParseUser(v url.Values) (UserForm, Errors) {
	f := UserForm{
		FirstName: text(v, "first_name"),
		LastName:  text(v, "last_name"),
		Email:     strings.ToLower(text(v, "email")),
	}
	return f, check(f, nil)
}

func UserFromDomain(u domain.User) UserForm {
	return UserForm{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// Payload is always JSON: the user form has no file fields.
func (f UserForm) Payload() *apiclient.Payload {
	return (&apiclient.Payload{}).
		Set("first_name", f.FirstName).
		Set("last_name", f.LastName).
		Set("email", f.Email)
}

type LoginForm struct {
	Email    string `form:"email" label:"Email" validate:"required,email,max=254"`
	Password string `form:"password" label:"Password" validate:"required"`
}

func ParseLogin(v url.Values) (LoginForm, Errors) {
	f := LoginForm{Email: text(v, "email"), Password: v.Get("password")}
	return f, check(f, nil)
}
