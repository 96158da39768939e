package models

import (
	"encoding/json"
	"strings"
)

// Hotel is a listing record as the upstream service returns it. The list
// endpoint and the detail endpoint are not guaranteed to ship photos in the
// same shape, so the multi-photo fields stay raw until the resolver
// classifies them.
type Hotel struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	City        string `json:"city"`
	Address     string `json:"address"`
	Description string `json:"description,omitempty"`

	ImageURLs []string        `json:"imageUrls,omitempty"`
	Images    json.RawMessage `json:"images,omitempty"`
	Photos    json.RawMessage `json:"photos,omitempty"`

	// Alternate singular cover fields some representations carry instead of
	// a full photo list.
	CoverURL     string `json:"coverUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	PhotoURL     string `json:"photoUrl,omitempty"`
	MainImageURL string `json:"mainImageUrl,omitempty"`
}

// HotelInput carries the editable text fields of a hotel. Name, city and
// address are mandatory; the workflow validates them after trimming, before
// any request leaves the process.
type HotelInput struct {
	Name        string `json:"name" validate:"required"`
	City        string `json:"city" validate:"required"`
	Address     string `json:"address" validate:"required"`
	Description string `json:"description"`
}

// Trimmed returns a copy with all four fields space-trimmed.
func (in HotelInput) Trimmed() HotelInput {
	return HotelInput{
		Name:        strings.TrimSpace(in.Name),
		City:        strings.TrimSpace(in.City),
		Address:     strings.TrimSpace(in.Address),
		Description: strings.TrimSpace(in.Description),
	}
}
