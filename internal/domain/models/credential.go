package models

// AdminCredential is the single admin user/password pair persisted between
// runs. The stored value is whatever the operator typed at login; the
// upstream service is the only party that ever verifies it.
type AdminCredential struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}
