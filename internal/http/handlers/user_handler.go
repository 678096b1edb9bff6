package handlers

import (
	"strings"

	"elyukal/internal/apiclient"
	"elyukal/internal/domain"
	"elyukal/internal/forms"
	applog "elyukal/internal/log"
	"elyukal/internal/services"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	API     *apiclient.Client
	Catalog *services.CatalogService
	Guard   *forms.Guard
}

const usersBase = "/users"

// GET /users
func (h *UserHandler) List(c *fiber.Ctx) error {
	sc := sessionOf(c)
	res, err := h.Catalog.Users(c.UserContext(), sc.Jar, queryOf(c))
	if err != nil {
		applog.Error(c, "users.list.fail", err, nil)
	}
	back := listURL(c, res.Query)
	data := fiber.Map{"Title": "Users", "Result": res, "Back": back, "Modal": modalBase(back)}

	if email := c.Query("id"); email != "" {
		name := email
		for _, u := range res.Items {
			if u.Email == email && u.FullName() != "" {
				name = u.FullName()
			}
		}
		switch c.Query("confirm") {
		case "ban":
			data["Confirm"] = Confirmation{
				Title:  "Ban user",
				Body:   "Ban " + name + "? They will no longer be able to sign in.",
				Button: "Ban",
				Action: userURL(email, "ban"),
				Return: back,
				Danger: true,
				Reason: true,
			}
		case "unban":
			data["Confirm"] = Confirmation{
				Title:  "Unban user",
				Body:   "Restore access for " + name + "?",
				Button: "Unban",
				Action: userURL(email, "unban"),
				Return: back,
			}
		}
	}
	return render(c, "users", data)
}

func userURL(email, suffix string) string {
	return usersBase + "/" + email + "/" + suffix
}

// POST /users/:email/ban
func (h *UserHandler) Ban(c *fiber.Ctx) error {
	email := c.Params("email")
	reason := strings.TrimSpace(c.FormValue("reason"))
	return mutation(c, "users.ban", map[string]any{"email": email}, returnTo(c, usersBase),
		"Could not ban the user", "User banned", func() (string, error) {
			return h.API.BanUser(c.UserContext(), sessionOf(c).Jar, email, reason)
		})
}

// POST /users/:email/unban
func (h *UserHandler) Unban(c *fiber.Ctx) error {
	email := c.Params("email")
	return mutation(c, "users.unban", map[string]any{"email": email}, returnTo(c, usersBase),
		"Could not unban the user", "User unbanned", func() (string, error) {
			return h.API.UnbanUser(c.UserContext(), sessionOf(c).Jar, email)
		})
}

// GET /users/:email/edit
func (h *UserHandler) Edit(c *fiber.Ctx) error {
	email := c.Params("email")
	u, err := h.API.User(c.UserContext(), sessionOf(c).Jar, email)
	if err != nil {
		applog.Error(c, "users.get.fail", err, map[string]any{"email": email})
		setFlash(c, "error", apiclient.Message(err, "Could not load the user"))
		return c.Redirect(usersBase)
	}
	return h.renderForm(c, fiber.StatusOK, email, u, forms.UserFromDomain(u), nil, "")
}

// POST /users/:email/edit
func (h *UserHandler) Update(c *fiber.Ctx) error {
	email := c.Params("email")
	sid := c.Cookies(sidCookie)
	f, errs := forms.ParseUser(formValues(c))
	if errs != nil {
		applog.Info(c, "validation.fail", map[string]any{"form": "user", "field": errs.First().Field})
		return h.renderForm(c, fiber.StatusUnprocessableEntity, email, domain.User{Email: email}, f, errs, "")
	}

	key := sid + "|" + forms.Key("user", email)
	release, ok := h.Guard.Acquire(key)
	if !ok {
		return h.renderForm(c, fiber.StatusConflict, email, domain.User{Email: email}, f, nil, "This form is already being saved. Please wait.")
	}
	defer release()

	msg, err := h.API.UpdateUser(c.UserContext(), sessionOf(c).Jar, email, f.Payload())
	if err != nil {
		applog.Error(c, "users.update.fail", err, map[string]any{"email": email})
		return h.renderForm(c, upstreamStatus(err), email, domain.User{Email: email}, f, nil,
			apiclient.Message(err, "Could not update the user. Please try again."))
	}
	applog.Audit(c, "users.update", map[string]any{"email": email})
	if msg == "" {
		msg = "User updated"
	}
	setFlash(c, "success", msg)
	return c.Redirect(usersBase)
}

func (h *UserHandler) renderForm(c *fiber.Ctx, status int, email string, u domain.User, f forms.UserForm, errs forms.Errors, submitErr string) error {
	c.Status(status)
	return render(c, "user_form", fiber.Map{
		"Title":       "Edit User",
		"Action":      userURL(email, "edit"),
		"Account":     u,
		"Form":        f,
		"Errors":      errs,
		"SubmitError": submitErr,
	})
}
