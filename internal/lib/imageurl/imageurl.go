// Package imageurl normalizes the photo payloads the upstream hotels
// service returns. The list and detail endpoints disagree on shape, so every
// payload is classified once into one of a closed set of variants and mapped
// by an explicit rule; an unrecognized payload is never an error, it just
// resolves to no URLs.
package imageurl

import (
	"bytes"
	"encoding/json"

	"tutelo/internal/domain/models"
)

// Photo object fields tried in order when a list element is an object.
var objectURLFields = []string{"url", "path", "src", "imageUrl"}

// Singular cover fields tried in order when the multi-photo representation
// yields nothing.
func coverFields(h models.Hotel) []string {
	return []string{h.CoverURL, h.ThumbnailURL, h.ImageURL, h.PhotoURL, h.MainImageURL}
}

type payloadKind int

const (
	kindEmpty payloadKind = iota
	kindURLRecord            // {"imageUrls": ["...", ...]}
	kindNestedRecord         // {"images": <payload>}
	kindStringList           // ["...", ...]
	kindObjectList           // [{"url": "..."}, ...]
)

// Resolve extracts an ordered list of URL strings from an arbitrary photo
// payload. Relative order is preserved within the matched variant and empty
// entries are dropped. First matching variant wins; nothing here raises.
func Resolve(raw json.RawMessage) []string {
	kind, body := classify(raw)

	switch kind {
	case kindURLRecord, kindStringList:
		var urls []json.RawMessage
		if err := json.Unmarshal(body, &urls); err != nil {
			return nil
		}
		out := make([]string, 0, len(urls))
		for _, el := range urls {
			var s string
			if err := json.Unmarshal(el, &s); err == nil && s != "" {
				out = append(out, s)
			}
		}
		return out
	case kindNestedRecord:
		return Resolve(body)
	case kindObjectList:
		var objs []map[string]json.RawMessage
		if err := json.Unmarshal(body, &objs); err != nil {
			return nil
		}
		out := make([]string, 0, len(objs))
		for _, obj := range objs {
			if s := firstURLField(obj); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// classify tags the payload with its variant and returns the sub-document
// the variant's rule applies to.
func classify(raw json.RawMessage) (payloadKind, json.RawMessage) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return kindEmpty, nil
	}

	switch raw[0] {
	case '{':
		var rec struct {
			ImageURLs json.RawMessage `json:"imageUrls"`
			Images    json.RawMessage `json:"images"`
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return kindEmpty, nil
		}
		if isArray(rec.ImageURLs) {
			return kindURLRecord, rec.ImageURLs
		}
		if isArray(rec.Images) {
			return kindNestedRecord, rec.Images
		}
		return kindEmpty, nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil || len(elems) == 0 {
			return kindEmpty, nil
		}
		first := bytes.TrimSpace(elems[0])
		if len(first) > 0 && first[0] == '"' {
			return kindStringList, raw
		}
		if len(first) > 0 && first[0] == '{' {
			return kindObjectList, raw
		}
		return kindEmpty, nil
	default:
		return kindEmpty, nil
	}
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func firstURLField(obj map[string]json.RawMessage) string {
	for _, field := range objectURLFields {
		el, ok := obj[field]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(el, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// FromHotel resolves a hotel's own photo fields: the multi-photo
// representations in priority order, then the singular cover fields wrapped
// as a one-element list when everything else came up empty.
func FromHotel(h models.Hotel) []string {
	if urls := Resolve(h.Images); len(urls) > 0 {
		return urls
	}
	if urls := Resolve(h.Photos); len(urls) > 0 {
		return urls
	}
	if len(h.ImageURLs) > 0 {
		out := make([]string, 0, len(h.ImageURLs))
		for _, u := range h.ImageURLs {
			if u != "" {
				out = append(out, u)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	for _, single := range coverFields(h) {
		if single != "" {
			return []string{single}
		}
	}
	return nil
}
