package fish

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for errors.Is checks.
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)

// NotFoundError is returned when a key, or the collection that should own
// it, is absent.
type NotFoundError struct {
	Key     string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Key)
	}
	return fmt.Sprintf("object %q not found", e.Key)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// BadRequestError is returned when a write would break a structural
// invariant of the tree.
type BadRequestError struct {
	Key     string
	Field   string
	Message string
}

func (e *BadRequestError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %q)", e.Key, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Key, e.Message)
}

// Is reports whether target is ErrBadRequest.
func (e *BadRequestError) Is(target error) bool {
	return target == ErrBadRequest
}

// StatusCode returns the HTTP status code for this error.
func (e *BadRequestError) StatusCode() int {
	return http.StatusBadRequest
}

// StatusCodeError is an error that maps onto an HTTP status.
type StatusCodeError interface {
	error
	StatusCode() int
}

// StatusCode returns the HTTP status for err, falling back to 500.
func StatusCode(err error) int {
	var sce StatusCodeError
	if errors.As(err, &sce) {
		return sce.StatusCode()
	}
	return http.StatusInternalServerError
}

// Detail returns the human-facing message carried by a store error.
func Detail(err error) string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		if nf.Message != "" {
			return nf.Message
		}
		return "Object not found"
	}
	var br *BadRequestError
	if errors.As(err, &br) {
		return br.Message
	}
	return err.Error()
}
