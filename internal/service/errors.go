package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation            = errors.New("validation")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrOrderNotCompleted     = errors.New("order not completed")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// detailError keeps the client-facing message separate from its category.
type detailError struct {
	kind error
	msg  string
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.kind }

func errorf(kind error, format string, args ...any) error {
	return &detailError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// notFound turns a missing row into ErrNotFound naming what was looked up.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorf(ErrNotFound, "%s not found", what)
	}
	return err
}

func isMissing(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
