package repository

import "fmt"

// StatusError is a non-2xx answer from the upstream service. The raw
// response body is kept so unclassified failures can surface the server's
// own message.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned %d", e.Code)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Code, e.Body)
}
