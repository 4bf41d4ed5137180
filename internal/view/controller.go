package view

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/ankit-modi39/fi-inventory-management/internal/inventory"
)

// dashboardFetchSize is how many products the dashboard pulls to build its
// aggregates, independent of the paginated listing.
const dashboardFetchSize = 100

// recentProductCount is how many products the dashboard shows as recent.
const recentProductCount = 5

// Gateway is the remote inventory service as consumed by the controller.
// Implementations must return the typed transport error for remote failures
// so its detail message can be surfaced verbatim.
type Gateway interface {
	// ListProducts fetches one page of products. page is 1-based.
	ListProducts(ctx context.Context, page, size int) ([]inventory.Product, error)

	// CreateProduct registers a new product and returns it with the
	// identifier assigned by the inventory service.
	CreateProduct(ctx context.Context, product inventory.ProductCreate) (*inventory.Product, error)

	// UpdateQuantity sets a product's quantity.
	UpdateQuantity(ctx context.Context, id string, quantity int) (*inventory.Product, error)

	// DeleteProduct removes a product.
	DeleteProduct(ctx context.Context, id string) error
}

// Overview holds the dashboard projection: aggregates plus the most recently
// listed products.
type Overview struct {
	Stats  inventory.Stats     `json:"stats"`
	Recent []inventory.Product `json:"recent_products"`
}

// Controller owns the view state for one console session. It drives paginated
// fetches keyed by the cursor, applies mutations through the gateway, and
// re-fetches the current page after every confirmed mutation so the snapshot
// never drifts from the remote state.
//
// Every fetch carries the sequence number and page it was issued for; a
// response whose sequence or page no longer matches at resolution time is
// discarded, so rapid pagination cannot regress the snapshot to an older page.
type Controller struct {
	gateway Gateway
	logger  *slog.Logger

	store *Store
	edit  *EditSession

	mu       sync.Mutex // guards cursor and fetchSeq
	cursor   *Cursor
	fetchSeq uint64
}

// NewController creates a controller positioned at page 1 with an empty snapshot.
func NewController(gw Gateway, pageSize int, logger *slog.Logger) *Controller {
	cursor := NewCursor(pageSize)
	return &Controller{
		gateway: gw,
		logger:  logger.With("component", "view"),
		store:   NewStore(cursor.Size()),
		edit:    NewEditSession(),
		cursor:  cursor,
	}
}

// LoadPage fetches the page the cursor points at and replaces the snapshot on
// success. On failure the prior snapshot is left intact. A response that
// arrives after the cursor has moved on, or after a newer fetch was issued, is
// dropped silently.
func (c *Controller) LoadPage(ctx context.Context) error {
	c.mu.Lock()
	c.fetchSeq++
	seq := c.fetchSeq
	page, size := c.cursor.Page(), c.cursor.Size()
	c.mu.Unlock()

	products, err := c.gateway.ListProducts(ctx, page, size)
	if err != nil {
		return fmt.Errorf("failed to fetch page %d: %w", page, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.fetchSeq || page != c.cursor.Page() {
		c.logger.DebugContext(ctx, "Discarding stale page response", "page", page, "seq", seq)
		return nil
	}
	c.store.Replace(products, page, size)

	// An edit whose row left the snapshot has nothing to commit against.
	if id, _, active := c.edit.Active(); active && !c.store.Snapshot().Contains(id) {
		c.edit.Cancel()
	}
	return nil
}

// AdvancePage moves the cursor forward and re-fetches. The cursor only
// advances when the last snapshot filled the page; the re-fetch happens
// either way.
func (c *Controller) AdvancePage(ctx context.Context) (int, error) {
	c.mu.Lock()
	page := c.cursor.Next(c.store.Len())
	c.mu.Unlock()
	return page, c.LoadPage(ctx)
}

// RetreatPage moves the cursor back, floored at page 1, and re-fetches.
func (c *Controller) RetreatPage(ctx context.Context) (int, error) {
	c.mu.Lock()
	page := c.cursor.Previous()
	c.mu.Unlock()
	return page, c.LoadPage(ctx)
}

// CreateProduct registers a new product through the gateway and re-fetches the
// current page so the snapshot reflects the catalog ordering.
func (c *Controller) CreateProduct(ctx context.Context, product inventory.ProductCreate) (*inventory.Product, error) {
	created, err := c.gateway.CreateProduct(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	if err := c.LoadPage(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// DeleteProduct removes a product after an explicit confirmation. On gateway
// failure the snapshot is untouched; on success the row is dropped locally and
// the page re-fetched.
func (c *Controller) DeleteProduct(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := c.gateway.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	c.store.RemoveByID(id)
	if activeID, _, active := c.edit.Active(); active && activeID == id {
		c.edit.Cancel()
	}
	return c.LoadPage(ctx)
}

// StartEdit opens an inline quantity edit for a product on the current page,
// seeded with its displayed quantity. A previous edit is implicitly replaced.
func (c *Controller) StartEdit(id string) error {
	product, ok := c.store.Snapshot().Find(id)
	if !ok {
		return ErrRowNotVisible
	}
	c.edit.Start(id, product.Quantity)
	return nil
}

// UpdateEditText replaces the pending text of the active edit. The text is
// not validated here; arbitrary input is permitted until commit.
func (c *Controller) UpdateEditText(id, text string) error {
	if !c.edit.SetText(id, text) {
		return ErrNoActiveEdit
	}
	return nil
}

// CancelEdit discards the active edit, if any.
func (c *Controller) CancelEdit() {
	c.edit.Cancel()
}

// EditState returns the active edit's product id and pending text.
func (c *Controller) EditState() (string, string, bool) {
	return c.edit.Active()
}

// CommitEdit closes the active edit session and, if its pending text parses as
// a non-negative integer, sends the quantity update. The session closes before
// the outcome is known: a failed commit reverts the row to the last confirmed
// snapshot value rather than the attempted one.
func (c *Controller) CommitEdit(ctx context.Context) error {
	id, text, active := c.edit.Take()
	if !active {
		return ErrNoActiveEdit
	}
	quantity, err := parseQuantity(text)
	if err != nil {
		return err
	}
	return c.CommitQuantity(ctx, id, quantity)
}

// CommitQuantity sends a quantity update for the product and re-fetches the
// page on success. On gateway failure the snapshot is untouched.
func (c *Controller) CommitQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if _, err := c.gateway.UpdateQuantity(ctx, id, quantity); err != nil {
		return fmt.Errorf("failed to update quantity for product %s: %w", id, err)
	}
	c.store.PatchQuantity(id, quantity)
	return c.LoadPage(ctx)
}

// Loaded reports whether any page has been fetched yet.
func (c *Controller) Loaded() bool {
	return c.store.Loaded()
}

// Snapshot returns a copy of the current page snapshot.
func (c *Controller) Snapshot() Snapshot {
	return c.store.Snapshot()
}

// Stats projects the dashboard aggregates from the current snapshot.
func (c *Controller) Stats() inventory.Stats {
	return inventory.Project(c.store.Snapshot().Products)
}

// Overview builds the dashboard view: aggregates over the first hundred
// products plus the few most recent ones. It fetches independently of the
// paginated listing and leaves the page snapshot alone.
func (c *Controller) Overview(ctx context.Context) (*Overview, error) {
	products, err := c.gateway.ListProducts(ctx, 1, dashboardFetchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard data: %w", err)
	}
	recent := products
	if len(recent) > recentProductCount {
		recent = recent[:recentProductCount]
	}
	return &Overview{
		Stats:  inventory.Project(products),
		Recent: recent,
	}, nil
}

// parseQuantity parses the pending edit text as a non-negative integer.
func parseQuantity(text string) (int, error) {
	quantity, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || quantity < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, text)
	}
	return quantity, nil
}
