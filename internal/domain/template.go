package domain

import (
	"encoding/json"
	"time"
)

type TemplateKind string

const (
	TemplateHotel  TemplateKind = "hotel"
	TemplateCancel TemplateKind = "cancel"
	TemplateCommon TemplateKind = "common"
	TemplateNotice TemplateKind = "notice"

	TemplateRoom    TemplateKind = "room"
	TemplatePackage TemplateKind = "package"
	TemplatePrice   TemplateKind = "price"
)

func (k TemplateKind) Valid() bool {
	switch k {
	case TemplateHotel, TemplateCancel, TemplateCommon, TemplateNotice,
		TemplateRoom, TemplatePackage, TemplatePrice:
		return true
	}
	return false
}

// HotelScoped reports whether templates of this kind belong to one hotel.
func (k TemplateKind) HotelScoped() bool {
	switch k {
	case TemplateNotice, TemplateRoom, TemplatePackage, TemplatePrice:
		return true
	}
	return false
}

// Template is a named snapshot of a section (or a whole aggregate) that the
// editor can load back later.
type Template struct {
	ID          string          `json:"id"`
	Kind        TemplateKind    `json:"kind"`
	HotelID     string          `json:"hotelId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"createdAt"`
}
