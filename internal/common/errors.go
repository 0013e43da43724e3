// Package common defines shared constants, sentinel errors and typed errors
// used across the gophsite engine, server and admin client. Callers should
// use errors.Is / errors.As to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Editor state errors.
	ErrNoSession     = errors.New("no edit session")
	ErrSessionActive = errors.New("edit session already active")
	ErrSaving        = errors.New("submission in progress")

	// ErrRecordGone is returned when an edit targets a record that was
	// deleted by another session after the draft was opened.
	ErrRecordGone = errors.New("record no longer exists")

	// ErrConfirmationDeclined is returned when the user cancels a destructive
	// action. It is not a failure; callers treat it as a no-op.
	ErrConfirmationDeclined = errors.New("confirmation declined")

	// Validation / collection errors.
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidField      = errors.New("invalid field name")

	// Auth errors.
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid username/password")
)
