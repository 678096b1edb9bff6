package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	applog "elyukal/internal/log"
	"elyukal/internal/staging"

	"github.com/gofiber/fiber/v2"
)

type StagingHandler struct {
	Staging *staging.Store
}

// GET /staged/:id serves a staged file to the browser session that uploaded
// it: the JPEG preview for images, the original bytes otherwise.
func (h *StagingHandler) Preview(c *fiber.Ctx) error {
	sid := c.Cookies(sidCookie)
	if sid == "" {
		return c.SendStatus(fiber.StatusNotFound)
	}
	f, err := h.Staging.Open(sid, c.Params("id"))
	if errors.Is(err, staging.ErrNotFound) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	if f.IsImage() && len(f.Preview) > 0 {
		c.Set(fiber.HeaderContentType, f.PreviewMIME)
		return c.Send(f.Preview)
	}
	c.Set(fiber.HeaderContentType, f.MIME)
	return c.Send(f.Content)
}

// stageUploads stages every file posted under slots and returns one message
// per rejected file.
func stageUploads(c *fiber.Ctx, st *staging.Store, sid, key string, slots ...string) []string {
	var problems []string
	for _, slot := range slots {
		for _, fh := range uploadedFiles(c, slot) {
			if err := stageOne(st, sid, key, slot, fh); err != nil {
				applog.Info(c, "staging.reject", map[string]any{"slot": slot, "file": fh.Filename, "reason": err.Error()})
				problems = append(problems, uploadProblem(fh.Filename, err))
				continue
			}
			applog.Info(c, "staging.add", map[string]any{"slot": slot, "file": fh.Filename, "size": fh.Size})
		}
	}
	return problems
}

func stageOne(st *staging.Store, sid, key, slot string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = st.Stage(sid, key, slot, fh.Filename, f)
	return err
}

func uploadProblem(name string, err error) string {
	switch {
	case errors.Is(err, staging.ErrTooLarge):
		return fmt.Sprintf("%s is larger than the upload limit", name)
	case errors.Is(err, staging.ErrTooMany):
		return fmt.Sprintf("Only %d images can be attached", staging.MaxImagesPerForm)
	case errors.Is(err, staging.ErrUnsupported):
		return fmt.Sprintf("%s is not a supported file type", name)
	}
	return fmt.Sprintf("Could not read %s", name)
}

// stagingAction handles the non-submit buttons of a form with uploads.
// handled is false for a real submit.
func stagingAction(c *fiber.Ctx, st *staging.Store, sid, key, action string) (handled bool) {
	if action == "upload" {
		return true
	}
	id, ok := strings.CutPrefix(action, "remove:")
	if !ok || id == "" {
		return false
	}
	if err := st.Remove(sid, key, id); err != nil && !errors.Is(err, staging.ErrNotFound) {
		applog.Error(c, "staging.remove.fail", err, map[string]any{"id": id, "form": key})
	} else {
		applog.Info(c, "staging.remove", map[string]any{"id": id, "form": key})
	}
	return true
}

func releaseForm(c *fiber.Ctx, st *staging.Store, sid, key string) {
	if _, err := st.Release(sid, key); err != nil {
		applog.Error(c, "staging.release.fail", err, map[string]any{"form": key})
	}
}
