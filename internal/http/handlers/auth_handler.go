package handlers

import (
	"elyukal/internal/forms"
	applog "elyukal/internal/log"
	"elyukal/internal/session"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler signs one identity kind in and out. Admins and store owners
// each get their own.
type AuthHandler struct {
	Manager *session.Manager
	Secure  bool
}

func (h *AuthHandler) kind() string { return string(h.Manager.Endpoints.Kind) }

func (h *AuthHandler) page(c *fiber.Ctx, status int, data fiber.Map) error {
	ep := h.Manager.Endpoints
	data["Title"] = "Sign in"
	data["Action"] = ep.LoginPage
	data["Seller"] = ep.Kind == session.StoreOwner
	data["Next"] = localPath(c.Query("next", c.FormValue("next")), "")
	c.Status(status)
	return render(c, "login", data)
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return h.page(c, fiber.StatusOK, fiber.Map{"Err": "", "Email": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c, h.Secure)
	f, errs := forms.ParseLogin(formValues(c))
	if errs != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": f.Email, "role": h.kind(), "reason": "bad_format"})
		return h.page(c, fiber.StatusUnauthorized, fiber.Map{"Err": errs.First().Message, "Email": f.Email})
	}

	sc, err := h.Manager.Open(sid)
	if err != nil {
		return err
	}
	st, err := sc.Login(c.UserContext(), f.Email, f.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": f.Email, "role": h.kind(), "reason": err.Error()})
		return h.page(c, fiber.StatusUnauthorized, fiber.Map{"Err": st.Reason, "Email": f.Email})
	}

	c.Locals("user_id", st.Profile.Email)
	applog.Audit(c, "auth.login.success", map[string]any{"email": f.Email, "role": h.kind()})
	ep := h.Manager.Endpoints
	return c.Redirect(h.Manager.Destination(st, localPath(c.FormValue("next"), ep.HomePage)))
}

// Logout always ends the local session, even when the upstream call fails.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	ep := h.Manager.Endpoints
	if sid := c.Cookies(sidCookie); sid != "" {
		sc, err := h.Manager.Open(sid)
		if err != nil {
			return err
		}
		if err := sc.Logout(c.UserContext()); err != nil {
			applog.Error(c, "auth.logout.upstream.fail", err, map[string]any{"role": h.kind()})
		}
	}
	applog.Audit(c, "auth.logout", map[string]any{"role": h.kind()})
	return c.Redirect(ep.LoginPage)
}

// GET /seller-login/pending and /seller-login/rejected
func (h *AuthHandler) Holding(status string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, "seller_status", fiber.Map{"Title": "Application " + status, "Status": status})
	}
}
