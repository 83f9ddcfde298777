// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admission

import (
	"errors"
	"fmt"
)

// Rejections. Each one maps to its own error tag at the HTTP layer.
var (
	ErrSurveyNotFound           = errors.New("survey not found")
	ErrSurveyNotAvailable       = errors.New("survey not available")
	ErrLoginRequired            = errors.New("login required")
	ErrDeviceIdentifierRequired = errors.New("device token or fingerprint required")
	ErrAlreadyAnswered          = errors.New("already answered")
	ErrMissingRequiredField     = errors.New("missing required field")
	ErrItems                    = errors.New("failed to store answers")
	ErrDatabase                 = errors.New("database error")
)

// AlreadyAnsweredError carries the id of the response that already exists.
// ResponseID is empty when the duplicate was caught by the store constraint.
type AlreadyAnsweredError struct {
	ResponseID string
}

func (e *AlreadyAnsweredError) Error() string {
	if e.ResponseID == "" {
		return ErrAlreadyAnswered.Error()
	}
	return fmt.Sprintf("%s (response %s)", ErrAlreadyAnswered, e.ResponseID)
}

func (e *AlreadyAnsweredError) Is(target error) bool {
	return target == ErrAlreadyAnswered
}

// StorageError wraps an unexpected store failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrDatabase
}
