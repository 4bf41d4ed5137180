package view

import (
	"strconv"
	"sync"
)

// EditSession tracks the inline quantity edit for a single product row.
// Two states: idle (no active edit) and editing (a product id plus the
// pending text, which stays unvalidated until commit). At most one row is
// editable at a time; starting a new edit replaces the previous one.
type EditSession struct {
	mu        sync.Mutex
	active    bool
	productID string
	pending   string
}

// NewEditSession creates an idle edit session.
func NewEditSession() *EditSession {
	return &EditSession{}
}

// Start begins editing the given product, seeding the pending text with the
// product's current quantity. A previous edit, if any, is implicitly cancelled.
func (e *EditSession) Start(id string, currentQuantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.active = true
	e.productID = id
	e.pending = strconv.Itoa(currentQuantity)
}

// SetText replaces the pending text for the product being edited.
// Returns false when no edit for that product is active.
func (e *EditSession) SetText(id, text string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active || e.productID != id {
		return false
	}
	e.pending = text
	return true
}

// Cancel returns the session to idle.
func (e *EditSession) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.active = false
	e.productID = ""
	e.pending = ""
}

// Active returns the edited product id and the pending text.
// The boolean is false when the session is idle.
func (e *EditSession) Active() (string, string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.productID, e.pending, e.active
}

// Take closes the session and returns its state. The session always closes on
// a commit attempt, whatever the outcome of the commit.
func (e *EditSession) Take() (string, string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, text, active := e.productID, e.pending, e.active
	e.active = false
	e.productID = ""
	e.pending = ""
	return id, text, active
}
