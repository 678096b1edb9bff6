package handlers

import (
	"elyukal/internal/apiclient"
	"elyukal/internal/domain"
	"elyukal/internal/forms"
	applog "elyukal/internal/log"
	"elyukal/internal/staging"

	"github.com/gofiber/fiber/v2"
)

// ApplyHandler takes seller applications from visitors without a session.
// Documents are staged under the browser session like any other upload.
type ApplyHandler struct {
	API     *apiclient.Client
	Staging *staging.Store
	Guard   *forms.Guard
	Secure  bool
	// Done is where a submitted applicant is sent: the seller sign-in page.
	Done string
}

const applyPage = "/seller-login/apply"

var applyKey = forms.Key("apply", "")

var documentSlots = []string{domain.SlotBusinessPermit, domain.SlotValidID, domain.SlotDTI}

var documentLabels = map[string]string{
	domain.SlotBusinessPermit: "Business permit",
	domain.SlotValidID:        "Valid ID",
	domain.SlotDTI:            "DTI registration (optional)",
}

// document is one upload row on the application form.
type document struct {
	Slot  string
	Label string
	File  *domain.StagedFile
}

type applyView struct {
	Form        forms.ApplicationForm
	Errors      forms.Errors
	Problems    []string
	SubmitError string
}

// GET /seller-login/apply
func (h *ApplyHandler) Form(c *fiber.Ctx) error {
	sid := ensureSID(c, h.Secure)
	return h.render(c, sid, fiber.StatusOK, applyView{})
}

// POST /seller-login/apply
func (h *ApplyHandler) Submit(c *fiber.Ctx) error {
	sid := ensureSID(c, h.Secure)
	v := formValues(c)
	action := v.Get("action")

	if action == "cancel" {
		releaseForm(c, h.Staging, sid, applyKey)
		return c.Redirect(h.Done)
	}

	f, errs := forms.ParseApplication(v)
	shown := f
	// passwords are never echoed back into the page
	shown.Password, shown.ConfirmPassword = "", ""
	view := applyView{Form: shown}
	view.Problems = stageUploads(c, h.Staging, sid, applyKey, documentSlots...)
	if stagingAction(c, h.Staging, sid, applyKey, action) {
		return h.render(c, sid, fiber.StatusOK, view)
	}

	staged, err := h.Staging.Files(sid, applyKey)
	if err != nil {
		return err
	}
	errs = append(errs, forms.MissingDocuments(staged)...)
	if len(errs) > 0 || len(view.Problems) > 0 {
		view.Errors = errs
		if fe := errs.First(); fe != nil {
			applog.Info(c, "validation.fail", map[string]any{"form": applyKey, "field": fe.Field})
		}
		return h.render(c, sid, fiber.StatusUnprocessableEntity, view)
	}

	release, ok := h.Guard.Acquire(sid + "|" + applyKey)
	if !ok {
		applog.Security(c, "form.double_submit", map[string]any{"form": applyKey})
		view.SubmitError = "This form is already being submitted. Please wait."
		return h.render(c, sid, fiber.StatusConflict, view)
	}
	defer release()

	fields := map[string]any{"email": f.Email, "files": len(staged)}
	msg, err := h.API.SubmitApplication(c.UserContext(), f.Payload(staged))
	if err != nil {
		applog.Error(c, "seller.apply.fail", err, fields)
		view.SubmitError = apiclient.Message(err, "There was a problem submitting your application. Please try again.")
		return h.render(c, sid, upstreamStatus(err), view)
	}

	releaseForm(c, h.Staging, sid, applyKey)
	applog.Audit(c, "seller.apply", fields)
	if msg == "" {
		msg = "Application submitted"
	}
	setFlash(c, "success", msg+". We will review your application and get back to you soon.")
	return c.Redirect(h.Done)
}

// render takes sid explicitly: a first visit only has it on the response.
func (h *ApplyHandler) render(c *fiber.Ctx, sid string, status int, v applyView) error {
	staged, err := h.Staging.List(sid, applyKey)
	if err != nil {
		applog.Error(c, "staging.list.fail", err, map[string]any{"form": applyKey})
	}
	docs := make([]document, 0, len(documentSlots))
	for _, slot := range documentSlots {
		d := document{Slot: slot, Label: documentLabels[slot]}
		for i := range staged {
			if staged[i].Slot == slot {
				d.File = &staged[i]
			}
		}
		docs = append(docs, d)
	}
	c.Status(status)
	return render(c, "apply", fiber.Map{
		"Title":  "Apply as a seller",
		"Action": applyPage,
		"View":   v,
		"Form":   v.Form,
		"Errors": v.Errors,
		"Docs":   docs,
	})
}
