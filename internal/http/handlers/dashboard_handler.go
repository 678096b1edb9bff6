package handlers

import (
	applog "elyukal/internal/log"
	"elyukal/internal/services"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	Dashboard *services.DashboardService
}

// GET /dashboard
func (h *DashboardHandler) Admin(c *fiber.Ctx) error {
	ov := h.Dashboard.Admin(c.UserContext(), sessionOf(c).Jar)
	for _, f := range ov.Failures {
		applog.Error(c, "dashboard."+f.Part+".fail", f.Err, nil)
	}
	return render(c, "dashboard", fiber.Map{"Title": "Dashboard", "Overview": ov})
}

// GET /store/dashboard
func (h *DashboardHandler) Store(c *fiber.Ctx) error {
	ov := h.Dashboard.Store(c.UserContext(), sessionOf(c).Jar)
	for _, f := range ov.Failures {
		applog.Error(c, "store.dashboard."+f.Part+".fail", f.Err, nil)
	}
	return render(c, "store_dashboard", fiber.Map{"Title": "My Store", "Overview": ov})
}
