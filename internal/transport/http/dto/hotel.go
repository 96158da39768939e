package dto

import "tutelo/internal/lib/pager"

// HotelSummary is one catalog card: the listing's text fields plus its
// merged, absolutized photo URLs (inline photos, or hydrated ones when the
// list endpoint shipped none).
type HotelSummary struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Address     string   `json:"address"`
	Description string   `json:"description,omitempty"`
	ImageURLs   []string `json:"imageUrls"`
}

type HotelDetail struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Address     string   `json:"address"`
	Description string   `json:"description,omitempty"`
	ImageURLs   []string `json:"imageUrls"`
}

// CatalogPage is one committed page of the catalog together with the pager
// marker sequence that renders the numbered control.
type CatalogPage struct {
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Pager      []pager.Item   `json:"pager"`
	Hotels     []HotelSummary `json:"hotels"`
}

// WorkflowState is the admin workflow snapshot: idle, submitting(op) or
// error, plus the delete target awaiting confirmation, if any.
type WorkflowState struct {
	Phase         string         `json:"phase"`
	Op            string         `json:"op,omitempty"`
	Error         *WorkflowError `json:"error,omitempty"`
	PendingDelete *DeleteTarget  `json:"pending_delete,omitempty"`
}

type WorkflowError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type DeleteTarget struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// SessionInfo reports whether an admin credential is stored and for whom.
// The password never leaves the store through this type.
type SessionInfo struct {
	LoggedIn bool   `json:"logged_in"`
	User     string `json:"user,omitempty"`
}
