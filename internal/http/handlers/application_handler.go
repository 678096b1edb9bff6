package handlers

import (
	"elyukal/internal/apiclient"
	"elyukal/internal/domain"
	applog "elyukal/internal/log"
	"elyukal/internal/services"

	"github.com/gofiber/fiber/v2"
)

type ApplicationHandler struct {
	API     *apiclient.Client
	Catalog *services.CatalogService
	// ApproveStatus is the value sent upstream when approving.
	ApproveStatus domain.ApplicationStatus
}

const applicationsBase = "/applications"

// GET /applications
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	res, err := h.Catalog.Applications(c.UserContext(), sessionOf(c).Jar, queryOf(c))
	if err != nil {
		applog.Error(c, "applications.list.fail", err, nil)
	}
	back := listURL(c, res.Query)
	data := fiber.Map{"Title": "Seller Applications", "Result": res, "Back": back, "Modal": modalBase(back)}

	if id := c.Query("id"); id != "" {
		name := "this applicant"
		for _, a := range res.Items {
			if a.ID.String() == id && a.FullName() != "" {
				name = a.FullName()
			}
		}
		if conf, ok := h.confirmation(c.Query("confirm"), id, name, back); ok {
			data["Confirm"] = conf
		}
	}
	return render(c, "applications", data)
}

// confirmation builds the approve/reject modal; back is where the status
// change returns to.
func (h *ApplicationHandler) confirmation(kind, id, name, back string) (Confirmation, bool) {
	switch kind {
	case "approve":
		return Confirmation{
			Title:  "Approve application",
			Body:   "Approve " + name + "? They will be able to manage their store.",
			Button: "Approve",
			Action: applicationsBase + "/" + id + "/status?to=approve",
			Return: back,
		}, true
	case "reject":
		return Confirmation{
			Title:  "Reject application",
			Body:   "Reject " + name + "? They will not be able to manage a store.",
			Button: "Reject",
			Action: applicationsBase + "/" + id + "/status?to=reject",
			Return: back,
			Danger: true,
		}, true
	}
	return Confirmation{}, false
}

// GET /applications/:id
func (h *ApplicationHandler) Detail(c *fiber.Ctx) error {
	id := c.Params("id")
	app, err := h.API.Application(c.UserContext(), sessionOf(c).Jar, id)
	if err != nil {
		applog.Error(c, "applications.get.fail", err, map[string]any{"application_id": id})
		setFlash(c, "error", apiclient.Message(err, "Could not load the application"))
		return c.Redirect(applicationsBase)
	}
	data := fiber.Map{"Title": "Application", "App": app}
	if conf, ok := h.confirmation(c.Query("confirm"), id, app.FullName(), c.Path()); ok {
		data["Confirm"] = conf
	}
	return render(c, "application", data)
}

// POST /applications/:id/status?to=approve|reject
func (h *ApplicationHandler) SetStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	var status domain.ApplicationStatus
	switch c.Query("to", c.FormValue("to")) {
	case "approve":
		status = h.ApproveStatus
	case "reject":
		status = domain.StatusRejected
	default:
		applog.Security(c, "validation.fail", map[string]any{"field": "status"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid status")
	}
	back := returnTo(c, applicationsBase+"/"+id)
	return mutation(c, "applications.status", map[string]any{"application_id": id, "status": string(status)}, back,
		"Could not update the application", "Application "+status.Label(), func() (string, error) {
			return h.API.SetApplicationStatus(c.UserContext(), sessionOf(c).Jar, id, status)
		})
}
