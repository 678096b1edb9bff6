package domain

import "strings"

// Upload slots a form can stage files into.
const (
	SlotImages     = "images"
	SlotARAsset    = "ar_asset"
	SlotStoreImage = "store_image"

	// seller application documents
	SlotBusinessPermit = "business_permit"
	SlotValidID        = "valid_id"
	SlotDTI            = "dti_registration"
)

// StagedFile is an upload held server-side until its form is submitted or
// abandoned. Content and Preview are only loaded by the single-file lookup.
type StagedFile struct {
	ID          string `db:"id"`
	Owner       string `db:"owner"`
	FormKey     string `db:"form_key"`
	Slot        string `db:"slot"`
	Position    int    `db:"position"`
	Filename    string `db:"filename"`
	MIME        string `db:"mime"`
	Size        int64  `db:"size"`
	Content     []byte `db:"content"`
	Preview     []byte `db:"preview"`
	PreviewMIME string `db:"preview_mime"`
	CreatedUnix int64  `db:"created_unix"`
}

func (f StagedFile) IsImage() bool {
	return strings.HasPrefix(f.MIME, "image/")
}

// URL is where the browser fetches the preview.
func (f StagedFile) URL() string { return "/staged/" + f.ID }
