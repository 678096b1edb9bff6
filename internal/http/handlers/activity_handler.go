package handlers

import (
	applog "elyukal/internal/log"
	"elyukal/internal/services"

	"github.com/gofiber/fiber/v2"
)

type ActivityHandler struct {
	Catalog *services.CatalogService
}

// GET /activities
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	res, err := h.Catalog.Activities(c.UserContext(), sessionOf(c).Jar, queryOf(c))
	if err != nil {
		applog.Error(c, "activities.list.fail", err, nil)
	}
	return render(c, "activities", fiber.Map{"Title": "Activity Log", "Result": res})
}
