package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrExpired           = errors.New("referral code expired")
	ErrAlreadyUsed       = errors.New("referral code already used")
	ErrInvalidOrExpired  = errors.New("invalid or expired code")
	ErrProgramInactive   = errors.New("referral program is not active")
	ErrSelfReferral      = errors.New("a referral code cannot be redeemed by the person who shared it")
	ErrUsageNotCompleted = errors.New("referrer discount requires a completed usage")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidCreds      = errors.New("invalid email or password")
	ErrUploadsDisabled   = errors.New("uploads are not configured")
)

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// PersistenceError wraps a storage failure. Callers show a generic retry message.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// storeErr maps a repository error: missing rows become ErrNotFound, anything
// else is wrapped in a PersistenceError.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return &PersistenceError{Op: op, Err: err}
}

// fieldErrors collects "field: reason" entries and returns nil when empty.
type fieldErrors []string

func (f *fieldErrors) add(field, reason string) {
	*f = append(*f, field+": "+reason)
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
