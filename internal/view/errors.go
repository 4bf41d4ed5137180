// Package view implements the inventory console's view state: the paginated
// product snapshot, the inline quantity edit session, and the controller that
// reconciles both against the remote inventory service.
package view

import "errors"

var (
	// ErrInvalidQuantity marks a locally rejected quantity value. It never
	// reaches the inventory service.
	ErrInvalidQuantity = errors.New("quantity must be a non-negative integer")

	// ErrNoActiveEdit is returned when an edit operation targets a row that
	// is not currently being edited.
	ErrNoActiveEdit = errors.New("no active edit for this product")

	// ErrRowNotVisible is returned when an operation targets a product that
	// is not part of the current page snapshot.
	ErrRowNotVisible = errors.New("product is not on the current page")

	// ErrNotConfirmed is returned when a delete is attempted without the
	// explicit user confirmation gate.
	ErrNotConfirmed = errors.New("deletion requires confirmation")
)
