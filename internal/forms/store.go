package forms

import (
	"net/url"

	"elyukal/internal/apiclient"
	"elyukal/internal/domain"
)

var StoreTypes = []string{
	"Marketplace",
	"Agri-Tourism Center",
	"Local Crafts Shop",
	"Food Stall",
	"Souvenir Shop",
	"Farm & Vineyard",
}

type StoreForm struct {
	Name           string  `form:"name" label:"Store name" validate:"min=3"`
	Description    string  `form:"description" label:"Description" validate:"min=10"`
	Type           string  `form:"type" label:"Store type" validate:"required"`
	Phone          string  `form:"phone" label:"Phone" validate:"omitempty,min=7"`
	OperatingHours string  `form:"operating_hours" label:"Operating hours" validate:"omitempty,min=3"`
	Latitude       float64 `form:"latitude" label:"Latitude" validate:"min=-90,max=90"`
	Longitude      float64 `form:"longitude" label:"Longitude" validate:"min=-180,max=180"`
	Town           string  `form:"town" label:"Town"`
	KeepImage      bool    `form:"keep_image"`

	Editing bool `form:"-"`
}

func ParseStore(v url.Values, editing bool) (StoreForm, Errors) {
	parseErrs := map[string]string{}
	f := StoreForm{
		Name:           text(v, "name"),
		Description:    text(v, "description"),
		Type:           text(v, "type"),
		Phone:          text(v, "phone"),
		OperatingHours: text(v, "operating_hours"),
		Latitude:       number(v, "latitude", "Latitude", parseErrs),
		Longitude:      number(v, "longitude", "Longitude", parseErrs),
		Town:           text(v, "town"),
		KeepImage:      checkbox(v, "keep_image"),
		Editing:        editing,
	}
	return f, check(f, parseErrs)
}

func StoreFromDomain(s domain.Store) StoreForm {
	return StoreForm{
		Name:           s.Name,
		Description:    s.Description,
		Type:           s.Type,
		Phone:          s.Phone,
		OperatingHours: s.OperatingHours,
		Latitude:       s.Latitude,
		Longitude:      s.Longitude,
		Town:           s.Town,
		KeepImage:      s.StoreImage != "",
		Editing:        true,
	}
}

func (f StoreForm) Payload(staged []domain.StagedFile) *apiclient.Payload {
	p := &apiclient.Payload{}
	p.Set("name", f.Name).
		Set("description", f.Description).
		Set("type", f.Type).
		Set("phone", f.Phone).
		Set("operating_hours", f.OperatingHours).
		Set("latitude", f.Latitude).
		Set("longitude", f.Longitude).
		Set("town", f.Town)
	if f.Editing {
		p.Set("keep_image", f.KeepImage)
	}
	attach(p, staged)
	return p
}
