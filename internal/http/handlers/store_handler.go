package handlers

import (
	"elyukal/internal/apiclient"
	"elyukal/internal/domain"
	"elyukal/internal/forms"
	applog "elyukal/internal/log"
	"elyukal/internal/services"
	"elyukal/internal/staging"

	"github.com/gofiber/fiber/v2"
)

// StoreHandler serves the admin store screens and, with Owner set, the
// store owner's own store under /store/store. An owner's store id always
// comes from the session profile, never from the URL.
type StoreHandler struct {
	API     *apiclient.Client
	Catalog *services.CatalogService
	Staging *staging.Store
	Guard   *forms.Guard
	Owner   bool
}

const (
	storesBase  = "/stores"
	myStoreBase = "/store/store"
)

func (h *StoreHandler) base() string {
	if h.Owner {
		return myStoreBase
	}
	return storesBase
}

func (h *StoreHandler) action(name string) string {
	if h.Owner {
		return "my_store." + name
	}
	return "stores." + name
}

func (h *StoreHandler) formKey(id string) string {
	if h.Owner {
		return forms.Key("my-store", id)
	}
	return forms.Key("store", id)
}

func (h *StoreHandler) formAction(id string) string {
	switch {
	case id == "":
		return h.base() + "/new"
	case h.Owner:
		return myStoreBase + "/edit"
	}
	return storesBase + "/" + id + "/edit"
}

// storeID is the record a form works on: the route parameter for admins,
// the profile's store for owners.
func (h *StoreHandler) storeID(c *fiber.Ctx) string {
	if h.Owner {
		return sessionOf(c).State().Profile.StoreOwned.String()
	}
	return c.Params("id")
}

func (h *StoreHandler) load(c *fiber.Ctx, id string) (domain.Store, error) {
	if h.Owner {
		return h.API.OwnerStore(c.UserContext(), sessionOf(c).Jar, id)
	}
	return h.API.Store(c.UserContext(), sessionOf(c).Jar, id)
}

func (h *StoreHandler) submit(c *fiber.Ctx, id string, body *apiclient.Payload) (string, error) {
	ctx, jar := c.UserContext(), sessionOf(c).Jar
	switch {
	case h.Owner && id == "":
		return h.API.CreateOwnerStore(ctx, jar, body)
	case h.Owner:
		return h.API.UpdateOwnerStore(ctx, jar, id, body)
	case id == "":
		return h.API.AddStore(ctx, jar, body)
	}
	return h.API.UpdateStore(ctx, jar, id, body)
}

// GET /stores
func (h *StoreHandler) List(c *fiber.Ctx) error {
	sc := sessionOf(c)
	res, err := h.Catalog.Stores(c.UserContext(), sc.Jar, queryOf(c))
	if err != nil {
		applog.Error(c, "stores.list.fail", err, nil)
	}
	back := listURL(c, res.Query)
	data := fiber.Map{"Title": "Stores", "Result": res, "Back": back, "Modal": modalBase(back)}

	id := c.Query("id")
	if id == "" {
		return render(c, "stores", data)
	}
	var picked *domain.Store
	for i := range res.Items {
		if res.Items[i].StoreID.String() == id {
			picked = &res.Items[i]
			break
		}
	}
	if c.Query("view") == "map" && picked != nil {
		data["Map"] = picked
	}
	if c.Query("confirm") == "delete" {
		name := "this store"
		if picked != nil {
			name = picked.Name
		}
		data["Confirm"] = Confirmation{
			Title:  "Delete store",
			Body:   "Delete " + name + "? Products linked to it lose their store.",
			Button: "Delete",
			Action: storesBase + "/" + id + "/delete",
			Return: back,
			Danger: true,
		}
	}
	return render(c, "stores", data)
}

// POST /stores/:id/delete
func (h *StoreHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	return mutation(c, "stores.delete", map[string]any{"store_id": id}, returnTo(c, storesBase),
		"Could not delete the store", "Store deleted", func() (string, error) {
			return h.API.DeleteStore(c.UserContext(), sessionOf(c).Jar, id)
		})
}

type storeView struct {
	ID            string
	Form          forms.StoreForm
	Errors        forms.Errors
	ExistingImage string
	Problems      []string
	SubmitError   string
}

// GET /stores/new, /store/store/new
func (h *StoreHandler) New(c *fiber.Ctx) error {
	if h.Owner && h.storeID(c) != "" {
		return c.Redirect(myStoreBase + "/edit")
	}
	return h.renderForm(c, fiber.StatusOK, storeView{})
}

// GET /stores/:id/edit, /store/store/edit
func (h *StoreHandler) Edit(c *fiber.Ctx) error {
	id := h.storeID(c)
	if id == "" {
		return c.Redirect(myStoreBase + "/new")
	}
	s, err := h.load(c, id)
	if err != nil {
		applog.Error(c, h.action("get.fail"), err, map[string]any{"store_id": id})
		setFlash(c, "error", apiclient.Message(err, "Could not load the store"))
		return c.Redirect(h.base())
	}
	return h.renderForm(c, fiber.StatusOK, storeView{ID: id, Form: forms.StoreFromDomain(s), ExistingImage: s.StoreImage})
}

// POST /stores/new, /store/store/new
func (h *StoreHandler) Create(c *fiber.Ctx) error {
	if h.Owner && h.storeID(c) != "" {
		setFlash(c, "error", "You already have a store. You can only own one store.")
		return c.Redirect(myStoreBase)
	}
	return h.save(c, "")
}

// POST /stores/:id/edit, /store/store/edit
func (h *StoreHandler) Update(c *fiber.Ctx) error {
	id := h.storeID(c)
	if id == "" {
		return c.Redirect(myStoreBase + "/new")
	}
	return h.save(c, id)
}

// GET /store/store
func (h *StoreHandler) Mine(c *fiber.Ctx) error {
	data := fiber.Map{"Title": "My Store"}
	if id := h.storeID(c); id != "" {
		s, err := h.load(c, id)
		if err != nil {
			applog.Error(c, h.action("get.fail"), err, map[string]any{"store_id": id})
			data["Failed"] = true
		} else {
			data["Store"] = s
		}
	}
	return render(c, "my_store", data)
}

func (h *StoreHandler) save(c *fiber.Ctx, id string) error {
	sid := c.Cookies(sidCookie)
	key := h.formKey(id)
	v := formValues(c)
	action := v.Get("action")

	if action == "cancel" {
		releaseForm(c, h.Staging, sid, key)
		return c.Redirect(h.base())
	}

	f, errs := forms.ParseStore(v, id != "")
	view := storeView{ID: id, Form: f, ExistingImage: v.Get("existing_store_image")}
	view.Problems = stageUploads(c, h.Staging, sid, key, domain.SlotStoreImage)
	if stagingAction(c, h.Staging, sid, key, action) {
		return h.renderForm(c, fiber.StatusOK, view)
	}
	if errs != nil || len(view.Problems) > 0 {
		view.Errors = errs
		if fe := errs.First(); fe != nil {
			applog.Info(c, "validation.fail", map[string]any{"form": key, "field": fe.Field})
		}
		return h.renderForm(c, fiber.StatusUnprocessableEntity, view)
	}

	release, ok := h.Guard.Acquire(sid + "|" + key)
	if !ok {
		applog.Security(c, "form.double_submit", map[string]any{"form": key})
		view.SubmitError = "This form is already being saved. Please wait."
		return h.renderForm(c, fiber.StatusConflict, view)
	}
	defer release()

	staged, err := h.Staging.Files(sid, key)
	if err != nil {
		return err
	}
	msg, err := h.submit(c, id, f.Payload(staged))
	fields := map[string]any{"store_id": id, "name": f.Name}
	if err != nil {
		applog.Error(c, h.action("save.fail"), err, fields)
		view.SubmitError = apiclient.Message(err, "Could not save the store. Please try again.")
		return h.renderForm(c, upstreamStatus(err), view)
	}

	releaseForm(c, h.Staging, sid, key)
	applog.Audit(c, h.action("save"), fields)
	if msg == "" {
		msg = "Store saved"
	}
	setFlash(c, "success", msg)
	return c.Redirect(h.base())
}

func (h *StoreHandler) renderForm(c *fiber.Ctx, status int, v storeView) error {
	key := h.formKey(v.ID)
	staged, err := h.Staging.List(c.Cookies(sidCookie), key)
	if err != nil {
		applog.Error(c, "staging.list.fail", err, map[string]any{"form": key})
	}
	title := "Add Store"
	if v.ID != "" {
		title = "Edit Store"
	}
	towns, err := h.Catalog.Towns(c.UserContext(), sessionOf(c).Jar)
	if err != nil {
		applog.Error(c, "municipalities.fail", err, nil)
	}
	c.Status(status)
	return render(c, "store_form", fiber.Map{
		"Title":       title,
		"Action":      h.formAction(v.ID),
		"View":        v,
		"Form":        v.Form,
		"Errors":      v.Errors,
		"Types":       forms.Choices(forms.StoreTypes, v.Form.Type),
		"Towns":       towns,
		"StagedImage": staged,
		"HasLocation": v.Form.Latitude != 0 || v.Form.Longitude != 0,
	})
}
