package handlers

import (
	"errors"

	"elyukal/internal/apiclient"
	"elyukal/internal/domain"
	"elyukal/internal/forms"
	applog "elyukal/internal/log"
	"elyukal/internal/services"
	"elyukal/internal/staging"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler serves the product screens. The admin and store-owner
// dashboards each get one, differing in upstream routes and URL root.
type ProductHandler struct {
	API     *apiclient.Client
	Catalog *services.CatalogService
	Staging *staging.Store
	Guard   *forms.Guard
	Routes  apiclient.ProductRoutes
	// Base is the screen root: /products or /store/products.
	Base  string
	Owner bool
}

func (h *ProductHandler) action(name string) string {
	if h.Owner {
		return "store.products." + name
	}
	return "products." + name
}

func (h *ProductHandler) formKey(id string) string {
	if h.Owner {
		return forms.Key("my-product", id)
	}
	return forms.Key("product", id)
}

// GET /products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	sc := sessionOf(c)
	res, err := h.Catalog.Products(c.UserContext(), sc.Jar, h.Routes, queryOf(c))
	if err != nil {
		applog.Error(c, h.action("list.fail"), err, nil)
	}
	back := listURL(c, res.Query)
	data := fiber.Map{"Title": "Products", "Result": res, "Base": h.Base, "Owner": h.Owner, "Back": back, "Modal": modalBase(back)}

	if id := c.Query("id"); id != "" && c.Query("confirm") == "archive" {
		name := productName(res.Items, id)
		data["Confirm"] = Confirmation{
			Title:  "Archive product",
			Body:   "Archive " + name + "? It will be hidden from the marketplace until restored from Archived Products.",
			Button: "Archive",
			Action: h.Base + "/" + id + "/archive",
			Return: back,
		}
	}
	if id := c.Query("reviews"); id != "" {
		reviews, err := h.API.Reviews(c.UserContext(), sc.Jar, id)
		if err != nil {
			applog.Error(c, h.action("reviews.fail"), err, map[string]any{"product_id": id})
		}
		data["Reviews"] = fiber.Map{"Product": productName(res.Items, id), "Items": reviews, "Failed": err != nil, "Close": back}
	}
	return render(c, "products", data)
}

// GET /products/archived
func (h *ProductHandler) Archived(c *fiber.Ctx) error {
	sc := sessionOf(c)
	res, err := h.Catalog.ArchivedProducts(c.UserContext(), sc.Jar, h.Routes, queryOf(c))
	if err != nil {
		applog.Error(c, h.action("archived.fail"), err, nil)
	}
	back := listURL(c, res.Query)
	data := fiber.Map{"Title": "Archived Products", "Result": res, "Base": h.Base, "Owner": h.Owner, "Back": back, "Modal": modalBase(back)}

	if id := c.Query("id"); id != "" {
		name := productName(res.Items, id)
		switch c.Query("confirm") {
		case "restore":
			data["Confirm"] = Confirmation{
				Title:  "Restore product",
				Body:   "Restore " + name + "? It will be visible in the marketplace again.",
				Button: "Restore",
				Action: h.Base + "/" + id + "/restore",
				Return: back,
			}
		case "delete":
			data["Confirm"] = Confirmation{
				Title:  "Delete permanently",
				Body:   "Permanently delete " + name + "? Its images, 3D model and reviews are removed and this cannot be undone.",
				Button: "Delete",
				Action: h.Base + "/" + id + "/delete",
				Return: back,
				Danger: true,
			}
		}
	}
	return render(c, "products_archived", data)
}

func productName(rows []domain.Product, id string) string {
	for _, p := range rows {
		if p.ID.String() == id {
			return p.Name
		}
	}
	return "this product"
}

// POST /products/:id/archive
func (h *ProductHandler) Archive(c *fiber.Ctx) error {
	id := c.Params("id")
	return mutation(c, h.action("archive"), map[string]any{"product_id": id}, returnTo(c, h.Base),
		"Could not archive the product", "Product archived", func() (string, error) {
			return h.API.ArchiveProduct(c.UserContext(), sessionOf(c).Jar, h.Routes, id)
		})
}

// POST /products/:id/restore
func (h *ProductHandler) Restore(c *fiber.Ctx) error {
	id := c.Params("id")
	return mutation(c, h.action("restore"), map[string]any{"product_id": id}, returnTo(c, h.Base+"/archived"),
		"Could not restore the product", "Product restored", func() (string, error) {
			return h.API.RestoreProduct(c.UserContext(), sessionOf(c).Jar, h.Routes, id)
		})
}

// POST /products/:id/delete
func (h *ProductHandler) Purge(c *fiber.Ctx) error {
	id := c.Params("id")
	return mutation(c, h.action("purge"), map[string]any{"product_id": id}, returnTo(c, h.Base+"/archived"),
		"Could not delete the product", "Product permanently deleted", func() (string, error) {
			return h.API.PurgeProduct(c.UserContext(), sessionOf(c).Jar, h.Routes, id)
		})
}

type productView struct {
	ID          string
	Form        forms.ProductForm
	Errors      forms.Errors
	Existing    []string
	ExistingAR  string
	Problems    []string
	SubmitError string
}

// GET /products/new
func (h *ProductHandler) New(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, productView{Form: forms.ProductForm{InStock: true}})
}

// GET /products/:id/edit
func (h *ProductHandler) Edit(c *fiber.Ctx) error {
	id := c.Params("id")
	p, err := h.API.Product(c.UserContext(), sessionOf(c).Jar, h.Routes, id)
	if err != nil {
		applog.Error(c, h.action("get.fail"), err, map[string]any{"product_id": id})
		setFlash(c, "error", apiclient.Message(err, "Could not load the product"))
		return c.Redirect(h.Base)
	}
	return h.renderForm(c, fiber.StatusOK, productView{
		ID:         id,
		Form:       forms.ProductFromDomain(p),
		Existing:   p.ImageURLs,
		ExistingAR: p.ARAssetURL,
	})
}

// POST /products/new
func (h *ProductHandler) Create(c *fiber.Ctx) error { return h.save(c, "") }

// POST /products/:id/edit
func (h *ProductHandler) Update(c *fiber.Ctx) error { return h.save(c, c.Params("id")) }

func (h *ProductHandler) save(c *fiber.Ctx, id string) error {
	sc := sessionOf(c)
	sid := c.Cookies(sidCookie)
	key := h.formKey(id)
	v := formValues(c)
	action := v.Get("action")

	if action == "cancel" {
		releaseForm(c, h.Staging, sid, key)
		applog.Info(c, h.action("form.cancel"), map[string]any{"form": key})
		return c.Redirect(h.Base)
	}

	f, errs := forms.ParseProduct(v, !h.Owner, id != "")
	view := productView{
		ID:         id,
		Form:       f,
		Existing:   v["existing_images"],
		ExistingAR: v.Get("existing_ar_asset"),
	}
	view.Problems = stageUploads(c, h.Staging, sid, key, domain.SlotImages, domain.SlotARAsset)
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
	storeOwned := ""
	if h.Owner {
		storeOwned = sc.State().Profile.StoreOwned.String()
	}
	body := f.Payload(staged, storeOwned)

	var msg string
	if id == "" {
		msg, err = h.API.AddProduct(c.UserContext(), sc.Jar, h.Routes, body)
	} else {
		msg, err = h.API.UpdateProduct(c.UserContext(), sc.Jar, h.Routes, id, body)
	}
	fields := map[string]any{"product_id": id, "name": f.Name, "files": len(staged)}
	if err != nil {
		applog.Error(c, h.action("save.fail"), err, fields)
		view.SubmitError = apiclient.Message(err, "Could not save the product. Please try again.")
		return h.renderForm(c, upstreamStatus(err), view)
	}

	releaseForm(c, h.Staging, sid, key)
	applog.Audit(c, h.action("save"), fields)
	if msg == "" {
		msg = "Product saved"
	}
	setFlash(c, "success", msg)
	return c.Redirect(h.Base)
}

func (h *ProductHandler) renderForm(c *fiber.Ctx, status int, v productView) error {
	sc := sessionOf(c)
	key := h.formKey(v.ID)
	staged, err := h.Staging.List(c.Cookies(sidCookie), key)
	if err != nil {
		applog.Error(c, "staging.list.fail", err, map[string]any{"form": key})
	}
	images, models := splitStaged(staged)

	title, action := "Add Product", h.Base+"/new"
	if v.ID != "" {
		title, action = "Edit Product", h.Base+"/"+v.ID+"/edit"
	}
	data := fiber.Map{
		"Title":        title,
		"Action":       action,
		"Base":         h.Base,
		"Owner":        h.Owner,
		"View":         v,
		"Form":         v.Form,
		"Errors":       v.Errors,
		"Categories":   forms.Choices(forms.Categories, v.Form.Category),
		"StagedImages": images,
		"StagedModel":  models,
	}
	towns, err := h.Catalog.Towns(c.UserContext(), sc.Jar)
	if err != nil {
		applog.Error(c, "municipalities.fail", err, nil)
	}
	data["Towns"] = towns
	if !h.Owner {
		stores, err := h.Catalog.StoreChoices(c.UserContext(), sc.Jar)
		if err != nil {
			applog.Error(c, "stores.choices.fail", err, nil)
		}
		data["Stores"] = stores
	}
	c.Status(status)
	return render(c, "product_form", data)
}

func splitStaged(staged []domain.StagedFile) (images, others []domain.StagedFile) {
	for _, f := range staged {
		if f.Slot == domain.SlotImages || f.Slot == domain.SlotStoreImage {
			images = append(images, f)
		} else {
			others = append(others, f)
		}
	}
	return images, others
}

// upstreamStatus maps a failed write to the status the re-rendered form uses.
func upstreamStatus(err error) int {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Status < fiber.StatusInternalServerError {
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusBadGateway
}
