package view

// DefaultPageSize matches the page size used by the product listing.
const DefaultPageSize = 10

// Cursor tracks the page and page size the product listing is positioned at.
// The inventory service reports no total count, so a full page is the only
// signal that another page may exist.
type Cursor struct {
	page int
	size int
}

// NewCursor creates a cursor positioned at page 1.
func NewCursor(size int) *Cursor {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Cursor{page: 1, size: size}
}

// Page returns the current page, 1-based.
func (c *Cursor) Page() int {
	return c.page
}

// Size returns the page size.
func (c *Cursor) Size() int {
	return c.size
}

// Next advances to the next page only when the last fetch filled the page.
// It returns the resulting page so the caller can trigger a re-fetch.
func (c *Cursor) Next(lastCount int) int {
	if lastCount == c.size {
		c.page++
	}
	return c.page
}

// Previous moves back one page, floored at page 1.
// It returns the resulting page so the caller can trigger a re-fetch.
func (c *Cursor) Previous() int {
	if c.page > 1 {
		c.page--
	}
	return c.page
}
