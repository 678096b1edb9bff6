package handlers

import (
	"time"

	applog "elyukal/internal/log"
	"elyukal/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Register mounts every dashboard route on app.
func Register(app *fiber.App, d *Deps) {
	limit := d.LoginLimit
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Admin sign-in
	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect(d.Admin.Endpoints.HomePage) })
	app.Get("/login", d.AdminAuth.LoginForm)
	app.Post("/login", limit, d.AdminAuth.Login)
	app.Post("/logout", d.AdminAuth.Logout)

	// Store-owner sign-in
	app.Get("/seller-login", d.OwnerAuth.LoginForm)
	app.Post("/seller-login", limit, d.OwnerAuth.Login)
	app.Get("/seller-login/pending", d.OwnerAuth.Holding("pending"))
	app.Get("/seller-login/rejected", d.OwnerAuth.Holding("rejected"))
	app.Get("/seller-login/apply", d.Apply.Form)
	app.Post("/seller-login/apply", d.Apply.Submit)
	app.Post("/store/logout", d.OwnerAuth.Logout)

	// Staged upload previews
	app.Get("/staged/:id", d.Staged.Preview)

	id := validParam("id", validate.ID)
	email := validParam("email", validate.Email)

	admin := RequireSession(d.Admin)
	app.Get("/dashboard", admin, d.Dashboard.Admin)

	p := d.Products
	app.Get("/products", admin, p.List)
	app.Get("/products/archived", admin, p.Archived)
	app.Get("/products/new", admin, p.New)
	app.Post("/products/new", admin, p.Create)
	app.Get("/products/:id/edit", admin, id, p.Edit)
	app.Post("/products/:id/edit", admin, id, p.Update)
	app.Post("/products/:id/archive", admin, id, p.Archive)
	app.Post("/products/:id/restore", admin, id, p.Restore)
	app.Post("/products/:id/delete", admin, id, p.Purge)

	app.Get("/stores", admin, d.Stores.List)
	app.Get("/stores/new", admin, d.Stores.New)
	app.Post("/stores/new", admin, d.Stores.Create)
	app.Get("/stores/:id/edit", admin, id, d.Stores.Edit)
	app.Post("/stores/:id/edit", admin, id, d.Stores.Update)
	app.Post("/stores/:id/delete", admin, id, d.Stores.Delete)

	app.Get("/users", admin, d.Users.List)
	app.Get("/users/:email/edit", admin, email, d.Users.Edit)
	app.Post("/users/:email/edit", admin, email, d.Users.Update)
	app.Post("/users/:email/ban", admin, email, d.Users.Ban)
	app.Post("/users/:email/unban", admin, email, d.Users.Unban)

	app.Get("/activities", admin, d.Activities.List)

	app.Get("/applications", admin, d.Applications.List)
	app.Get("/applications/:id", admin, id, d.Applications.Detail)
	app.Post("/applications/:id/status", admin, id, d.Applications.SetStatus)

	// Store-owner dashboard
	owner := RequireSession(d.Owner)
	app.Get("/store/dashboard", owner, d.Dashboard.Store)

	op := d.OwnerProducts
	app.Get("/store/products", owner, op.List)
	app.Get("/store/products/archived", owner, op.Archived)
	app.Get("/store/products/new", owner, op.New)
	app.Post("/store/products/new", owner, op.Create)
	app.Get("/store/products/:id/edit", owner, id, op.Edit)
	app.Post("/store/products/:id/edit", owner, id, op.Update)
	app.Post("/store/products/:id/archive", owner, id, op.Archive)
	app.Post("/store/products/:id/restore", owner, id, op.Restore)
	app.Post("/store/products/:id/delete", owner, id, op.Purge)

	ms := d.MyStore
	app.Get("/store/store", owner, ms.Mine)
	app.Get("/store/store/new", owner, ms.New)
	app.Post("/store/store/new", owner, ms.Create)
	app.Get("/store/store/edit", owner, ms.Edit)
	app.Post("/store/store/edit", owner, ms.Update)

	app.Get("/store/profile", owner, d.Profile.Edit)
	app.Post("/store/profile", owner, d.Profile.Update)
}

// LoginLimiter throttles sign-in attempts per client and login page. A nil
// storage keeps the counters in memory.
func LoginLimiter(d *Deps, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			h := d.AdminAuth
			if c.Path() == d.Owner.Endpoints.LoginPage {
				h = d.OwnerAuth
			}
			applog.Security(c, "rate.login.hit", map[string]any{"role": h.kind()})
			return h.page(c, fiber.StatusTooManyRequests, fiber.Map{
				"Err":   "Too many attempts. Please try again later.",
				"Email": c.FormValue("email"),
			})
		},
	})
}

// ErrorHandler renders the friendly error page without leaking internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	if fe, ok := err.(*fiber.Error); ok && fe.Code < fiber.StatusInternalServerError {
		code = fe.Code
		msg = "Page not found"
		if code != fiber.StatusNotFound {
			msg = "The request could not be processed."
		}
	} else {
		applog.Error(c, "server.error", err, nil)
	}
	if rerr := notFound(c, code, msg); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
