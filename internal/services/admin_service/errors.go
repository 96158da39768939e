package services

import (
	"errors"
	"net/http"

	"tutelo/internal/repository"
)

// ErrorKind buckets a failed workflow operation for rendering.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindBadRequest   ErrorKind = "bad_request"
	KindUnclassified ErrorKind = "unclassified"
)

// WorkflowError is what a workflow operation resolves a failure to. Every
// operation catches at its own boundary; nothing propagates to unrelated
// components.
type WorkflowError struct {
	Kind    ErrorKind
	Message string
}

func (e *WorkflowError) Error() string {
	return e.Message
}

var (
	// ErrSubmitInFlight gates duplicate submissions while one is pending.
	ErrSubmitInFlight = errors.New("another submission is in flight")

	// ErrNoPendingDelete means confirm was called without a delete request.
	ErrNoPendingDelete = errors.New("no delete pending confirmation")
)

// classify maps a failed upstream request onto the error taxonomy. The
// conflict message is create-specific: only the create endpoint rejects
// duplicate names this way. Anything unrecognized surfaces the raw server
// payload when there is one, else the transport error text.
func classify(op Op, err error) *WorkflowError {
	var status *repository.StatusError
	if errors.As(err, &status) {
		switch status.Code {
		case http.StatusUnauthorized:
			return &WorkflowError{KindUnauthorized, "unauthorized (401): check the admin user and password"}
		case http.StatusForbidden:
			return &WorkflowError{KindForbidden, "forbidden (403): this account has no admin privileges"}
		case http.StatusConflict:
			if op == OpCreate {
				return &WorkflowError{KindConflict, "a hotel with that name already exists"}
			}
		case http.StatusBadRequest:
			return &WorkflowError{KindBadRequest, "check the required fields (name, city, address)"}
		}
		if status.Body != "" {
			return &WorkflowError{KindUnclassified, status.Body}
		}
		return &WorkflowError{KindUnclassified, status.Error()}
	}

	return &WorkflowError{KindUnclassified, err.Error()}
}
