package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrBackendUnavailable means the remote store is unreachable or unconfigured.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrNotFound means the target post does not exist.
	ErrNotFound = errors.New("post not found")
	// ErrValidationFailed means required post fields are missing or malformed.
	ErrValidationFailed = errors.New("validation failed")
	// ErrTranslationFailed means the translation provider failed.
	ErrTranslationFailed = errors.New("translation failed")
	// ErrInconsistentBundle means a post's secondary variant is only partially filled.
	ErrInconsistentBundle = errors.New("inconsistent language bundle")
	// ErrUnauthorized means the admin credential or session token was rejected.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s is required", ErrValidationFailed, e.Field)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidationFailed, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// TranslationError records which field failed to translate.
type TranslationError struct {
	Field string
	Err   error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("%s: field %s: %v", ErrTranslationFailed, e.Field, e.Err)
}

func (e *TranslationError) Unwrap() []error { return []error{ErrTranslationFailed, e.Err} }

// BatchError lists posts that could not be translated in an otherwise committed batch.
type BatchError struct {
	Failed map[string]error
}

func (e *BatchError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("%s: %d post(s) left untranslated: %s", ErrTranslationFailed, len(ids), strings.Join(ids, ", "))
}

func (e *BatchError) Unwrap() error { return ErrTranslationFailed }
