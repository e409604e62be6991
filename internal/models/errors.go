package models

import "errors"

// Sentinel errors for the delivery and scheduling paths. Wrap with %w so
// callers can classify with errors.Is.
var (
	// ErrPermissionDenied: caller lacks the admin capability.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound: unknown alert or task.
	ErrNotFound = errors.New("not found")
	// ErrAddressMissing: recipient lacks the address the channel requires.
	// Recorded per recipient, never fatal to a batch.
	ErrAddressMissing = errors.New("recipient address missing")
	// ErrChannelUnconfigured: the channel's transport is not set up at the
	// process level. Recorded per recipient, logged once per batch.
	ErrChannelUnconfigured = errors.New("channel transport not configured")
	// ErrTransportFailure: transport reachable but rejected or timed out.
	// Recorded as failed, eligible for retry.
	ErrTransportFailure = errors.New("transport failure")
	// ErrAlreadyRunning: manual trigger hit the single-flight guard.
	ErrAlreadyRunning = errors.New("task already running")
	// ErrInvalidInput: malformed input to a control operation.
	ErrInvalidInput = errors.New("invalid input")
)
