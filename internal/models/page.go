package models

// Page selects one page of a sorted listing. From is validated as >= 0 and
// Size as > 0, but From is not a literal row offset: the effective page
// number is From / Size, so the returned rows start at (From/Size)*Size.
// This mirrors the historical behavior of every paged query here.
type Page struct {
	From int
	Size int
}

// Offset returns the row offset for the page-number arithmetic above.
func (p Page) Offset() int {
	return (p.From / p.Size) * p.Size
}
