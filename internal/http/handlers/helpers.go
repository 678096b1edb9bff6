package handlers

import (
	"mime/multipart"
	"net/url"
	"strings"

	"elyukal/internal/apiclient"
	"elyukal/internal/listing"
	applog "elyukal/internal/log"
	"elyukal/internal/validate"

	"github.com/gofiber/fiber/v2"
)

func queryOf(c *fiber.Ctx) listing.Query {
	return listing.Query{
		Search: validate.Search(c.Query("q")),
		Sort:   c.Query("sort"),
		Dir:    listing.Direction(c.Query("dir")),
		Page:   c.QueryInt("page", 1),
		Facet:  c.Query("facet"),
	}
}

// listURL is the current list screen without any modal parameters.
func listURL(c *fiber.Ctx, q listing.Query) string {
	if v := q.Values().Encode(); v != "" {
		return c.Path() + "?" + v
	}
	return c.Path()
}

// modalBase is back ready for extra modal parameters.
func modalBase(back string) string {
	if strings.Contains(back, "?") {
		return back + "&"
	}
	return back + "?"
}

// formValues returns the posted fields for urlencoded and multipart bodies alike.
func formValues(c *fiber.Ctx) url.Values {
	if isMultipart(c) {
		if form, err := c.MultipartForm(); err == nil {
			return url.Values(form.Value)
		}
		return url.Values{}
	}
	v := url.Values{}
	c.Request().PostArgs().VisitAll(func(k, val []byte) {
		v.Add(string(k), string(val))
	})
	return v
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

func uploadedFiles(c *fiber.Ctx, field string) []*multipart.FileHeader {
	if !isMultipart(c) {
		return nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	var out []*multipart.FileHeader
	for _, fh := range form.File[field] {
		// empty file inputs still post a part
		if fh.Filename == "" || fh.Size == 0 {
			continue
		}
		out = append(out, fh)
	}
	return out
}

// Confirmation is the modal shown before a status change.
type Confirmation struct {
	Title  string
	Body   string
	Button string
	Action string
	Return string
	Danger bool
	Reason bool
}

// mutation runs a status change and reports it back through the flash.
// Nothing changes locally on failure; the redirect refetches either way.
func mutation(c *fiber.Ctx, action string, fields map[string]any, back, fallback, success string, call func() (string, error)) error {
	msg, err := call()
	if err != nil {
		applog.Error(c, action+".fail", err, fields)
		setFlash(c, "error", apiclient.Message(err, fallback))
		return c.Redirect(back)
	}
	applog.Audit(c, action, fields)
	if msg == "" {
		msg = success
	}
	setFlash(c, "success", msg)
	return c.Redirect(back)
}

// validParam answers 404 when a route parameter is not a well-formed
// identifier, before it reaches an upstream path.
func validParam(name string, check func(string) (string, bool)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := check(c.Params(name)); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": name})
			return notFound(c, fiber.StatusNotFound, "Page not found")
		}
		return c.Next()
	}
}

func returnTo(c *fiber.Ctx, fallback string) string {
	return localPath(c.FormValue("return"), fallback)
}
