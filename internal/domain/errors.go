package domain

import "errors"

// Error kinds the service exposes to callers. The API layer maps these to
// transport status codes with errors.Is; storage and broker details never
// leak past them.
var (
	// ErrInvalidInput marks a rejected command (empty item list, bad field).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks an unknown order or product id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState marks an operation the current order status forbids:
	// deleting a non-pending order or requesting an illegal status transition.
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict marks a uniqueness violation (duplicate product SKU).
	ErrConflict = errors.New("conflict")

	// ErrPublishFailed marks a state mutation that committed but whose domain
	// event could not be handed to the broker. Callers must not treat the
	// mutation as lost.
	ErrPublishFailed = errors.New("event publish failed")
)
