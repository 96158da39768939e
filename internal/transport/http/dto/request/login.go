package request

// LoginRequest carries the admin pair exactly as typed; it is stored, not
// verified here. The upstream rejects bad pairs with 401/403 later.
type LoginRequest struct {
	User string `json:"user" validate:"required"`
	Pass string `json:"pass" validate:"required"`
}
