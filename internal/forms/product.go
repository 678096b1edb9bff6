package forms

import (
	"encoding/json"
	"net/url"
	"strings"

	"elyukal/internal/apiclient"
	"elyukal/internal/domain"
)

var Categories = []string{
	"Handicrafts",
	"Food Products",
	"Textiles",
	"Souvenirs",
	"Agricultural Products",
	"Beverages",
	"Clothing",
	"Accessories",
}

type ProductForm struct {
	Name        string  `form:"name" label:"Product name" validate:"min=3"`
	Description string  `form:"description" label:"Description" validate:"min=10"`
	Category    string  `form:"category" label:"Category" validate:"required"`
	PriceMin    float64 `form:"price_min" label:"Minimum price" validate:"gte=0"`
	PriceMax    float64 `form:"price_max" label:"Maximum price" validate:"gte=0,gtefield=PriceMin"`
	Address     string  `form:"address" label:"Address" validate:"min=5"`
	Town        string  `form:"town" label:"Town"`
	StoreID     string  `form:"store_id" label:"Store" validate:"required_if=StoreRequired true"`
	InStock     bool    `form:"in_stock" label:"In stock"`

	// Edit flows: stored assets the user kept.
	KeepImages  []string `form:"keep_images"`
	KeepARAsset bool     `form:"keep_ar_asset"`

	StoreRequired bool `form:"-"`
	Editing       bool `form:"-"`
}

// ParseProduct binds and validates. Admins pick a store; store owners post
// into their own store, so storeRequired is false for them.
func ParseProduct(v url.Values, storeRequired, editing bool) (ProductForm, Errors) {
	parseErrs := map[string]string{}
	f := ProductForm{
		Name:          text(v, "name"),
		Description:   text(v, "description"),
		Category:      text(v, "category"),
		PriceMin:      number(v, "price_min", "Minimum price", parseErrs),
		PriceMax:      number(v, "price_max", "Maximum price", parseErrs),
		Address:       text(v, "address"),
		Town:          text(v, "town"),
		StoreID:       text(v, "store_id"),
		InStock:       checkbox(v, "in_stock"),
		KeepImages:    nonEmpty(v["keep_images"]),
		KeepARAsset:   checkbox(v, "keep_ar_asset"),
		StoreRequired: storeRequired,
		Editing:       editing,
	}
	return f, check(f, parseErrs)
}

// ProductFromDomain fills the edit form from a stored product.
func ProductFromDomain(p domain.Product) ProductForm {
	return ProductForm{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PriceMin:    p.PriceMin,
		PriceMax:    p.PriceMax,
		Address:     p.Address,
		Town:        p.Town,
		StoreID:     p.StoreID.String(),
		InStock:     p.InStock,
		KeepImages:  append([]string(nil), p.ImageURLs...),
		KeepARAsset: p.ARAssetURL != "",
		Editing:     true,
	}
}

// Payload encodes the form with its staged files. storeOwned is sent by the
// store-owner flow in place of store_id.
func (f ProductForm) Payload(staged []domain.StagedFile, storeOwned string) *apiclient.Payload {
	p := &apiclient.Payload{}
	p.Set("name", f.Name).
		Set("description", f.Description).
		Set("category", f.Category).
		Set("price_min", f.PriceMin).
		Set("price_max", f.PriceMax).
		Set("address", f.Address).
		Set("town", f.Town).
		Set("in_stock", f.InStock).
		Set("location_name", f.Address).
		Set("latitude", "0").
		Set("longitude", "0")
	if f.StoreID != "" {
		p.Set("store_id", f.StoreID)
	}
	if storeOwned != "" {
		p.Set("store_owned", storeOwned)
	}
	if f.Editing {
		keep := f.KeepImages
		if keep == nil {
			keep = []string{}
		}
		b, _ := json.Marshal(keep)
		p.Set("keep_images", string(b))
		p.Set("keep_ar_asset", f.KeepARAsset)
	}
	attach(p, staged)
	return p
}

func attach(p *apiclient.Payload, staged []domain.StagedFile) {
	for _, s := range staged {
		p.Attach(s.Slot, s.Filename, s.Content)
	}
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
