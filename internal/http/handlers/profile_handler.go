package handlers

import (
	"elyukal/internal/apiclient"
	"elyukal/internal/forms"
	applog "elyukal/internal/log"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler lets a store owner edit their own account.
type ProfileHandler struct {
	API   *apiclient.Client
	Guard *forms.Guard
}

const profilePage = "/store/profile"

// GET /store/profile
func (h *ProfileHandler) Edit(c *fiber.Ctx) error {
	p := sessionOf(c).State().Profile
	return h.renderForm(c, fiber.StatusOK, forms.ProfileFromDomain(p), nil, "")
}

// POST /store/profile
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	sc := sessionOf(c)
	f, errs := forms.ParseProfile(formValues(c))
	if errs != nil {
		applog.Info(c, "validation.fail", map[string]any{"form": "profile", "field": errs.First().Field})
		return h.renderForm(c, fiber.StatusUnprocessableEntity, f, errs, "")
	}

	release, ok := h.Guard.Acquire(c.Cookies(sidCookie) + "|profile")
	if !ok {
		return h.renderForm(c, fiber.StatusConflict, f, nil, "This form is already being saved. Please wait.")
	}
	defer release()

	msg, err := h.API.UpdateOwnerProfile(c.UserContext(), sc.Jar, f.Payload())
	if err != nil {
		applog.Error(c, "profile.update.fail", err, nil)
		return h.renderForm(c, upstreamStatus(err), f, nil, apiclient.Message(err, "Failed to update profile"))
	}
	applog.Audit(c, "profile.update", nil)
	if msg == "" {
		msg = "Profile updated successfully"
	}
	setFlash(c, "success", msg)
	return c.Redirect(profilePage)
}

func (h *ProfileHandler) renderForm(c *fiber.Ctx, status int, f forms.ProfileForm, errs forms.Errors, submitErr string) error {
	c.Status(status)
	return render(c, "profile", fiber.Map{
		"Title":       "My Profile",
		"Action":      profilePage,
		"Account":     sessionOf(c).State().Profile,
		"Form":        f,
		"Errors":      errs,
		"SubmitError": submitErr,
	})
}
