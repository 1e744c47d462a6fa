package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRejected     = errors.New("rejected")

	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", ErrRejected)
)

// ValidationError carries per-field messages keyed by json path. Kind
// defaults to ErrValidation; duplicate keys use ErrConflict.
type ValidationError struct {
	Fields map[string]string
	Kind   error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	if e.Kind != nil {
		return e.Kind
	}
	return ErrValidation
}

func fieldError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func conflictError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}, Kind: ErrConflict}
}

// Rejection is a business rule refusal shown to the user as a message.
// The request itself is not treated as failed.
type Rejection struct {
	Message  string
	Redirect string
	Cause    error
}

func (r *Rejection) Error() string { return r.Message }

func (r *Rejection) Unwrap() error {
	if r.Cause != nil {
		return r.Cause
	}
	return ErrRejected
}

func reject(msg string) error { return &Rejection{Message: msg} }

func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

const (
	MsgProductUnavailable = "Product is not available."
	MsgCartItemNotFound   = "Cart item not found."
	MsgCartEmpty          = "Your cart is empty."
)

func insufficientStock(name string) error {
	return &Rejection{Message: fmt.Sprintf("Insufficient stock for %s.", name), Cause: ErrInsufficientStock}
}
