package handlers

import (
	"net/url"
	"strings"

	applog "elyukal/internal/log"
	"elyukal/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sidCookie = "sid"

func ensureSID(c *fiber.Ctx, secure bool) string {
	sid := c.Cookies(sidCookie)
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sidCookie,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   secure,
		})
	}
	return sid
}

func sessionOf(c *fiber.Ctx) *session.Context {
	sc, _ := c.Locals("session").(*session.Context)
	return sc
}

// RequireSession resolves the identity m manages for this browser before the
// route runs. Anonymous visitors go to the role's login page; store owners
// whose application is not approved go to the matching holding page.
// Upstream cookie changes made while handling the request are saved after it.
func RequireSession(m *session.Manager) fiber.Handler {
	ep := m.Endpoints
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(sidCookie)
		if sid == "" {
			return c.Redirect(loginURL(ep, c.OriginalURL()))
		}
		sc, err := m.Open(sid)
		if err != nil {
			return err
		}
		st := sc.Resolve(c.UserContext())
		if !st.Authenticated() {
			applog.Security(c, "access.denied."+string(ep.Kind), map[string]any{"reason": st.Reason})
			return c.Redirect(loginURL(ep, c.OriginalURL()))
		}
		if dest := m.Destination(st, c.Path()); dest != c.Path() {
			return c.Redirect(dest)
		}

		c.Locals("session", sc)
		c.Locals("user_id", st.Profile.Email)

		err = c.Next()
		if perr := sc.Persist(); perr != nil {
			applog.Error(c, "session.persist.fail", perr, nil)
		}
		return err
	}
}

func loginURL(ep session.Endpoints, next string) string {
	if next == "" || next == "/" || next == ep.HomePage {
		return ep.LoginPage
	}
	return ep.LoginPage + "?next=" + url.QueryEscape(next)
}

// localPath keeps redirects on this host.
func localPath(p, fallback string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return fallback
	}
	return p
}
