package handlers

import (
	"elyukal/internal/session"

	"github.com/gofiber/fiber/v2"
)

const (
	dashboardLayout = "layouts/dashboard"
	plainLayout     = "layouts/plain"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	layout := plainLayout
	// Inject identity and navigation when a session was resolved
	if sc := sessionOf(c); sc != nil {
		data["User"] = sc.State().Profile
		data["Nav"] = sc.Endpoints()
		data["StoreOwner"] = sc.Endpoints().Kind == session.StoreOwner
		layout = dashboardLayout
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		// Fallback: the cookie carries the same token
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	if f := takeFlash(c); f != nil {
		data["Flash"] = f
	}
	data["Path"] = c.Path()
	return c.Render(tmpl, data, layout)
}

// notFound renders the friendly error page with status.
func notFound(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).Render("notfound", fiber.Map{"Message": msg}, plainLayout)
}
