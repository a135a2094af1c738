// Package menu builds bounded interactive payloads from domain summaries.
//
// All functions are pure: given the same items, page and profile they produce
// the same payload. Pagination never emits more than the transport's maximum
// row count and never drops an item — when more items remain beyond a page,
// the last row of that page is reserved for a "next page" sentinel instead of
// appending an eleventh row.
package menu

import (
	"fmt"

	"github.com/zapstore-app/zapstore/internal/models"
	"github.com/zapstore-app/zapstore/internal/rowid"
)

// NextPageTitle is the title of the synthetic "next page" sentinel row.
const NextPageTitle = "➡️ Next page"

// Item is a single domain summary to render as a list row. Title and
// Description are truncated to the transport limits by the builder.
type Item struct {
	ID          int64
	Title       string
	Description string
}

// Profile describes how a menu renders: its surrounding text, the action
// prefix stamped on each data row, the prefix used for page navigation, and
// any fixed trailing rows (such as "back") appended after the data rows.
type Profile struct {
	Header     string
	Body       string
	Footer     string
	ButtonText string
	RowPrefix  rowid.Prefix
	PagePrefix rowid.Prefix
	Trailing   []models.ListRow
}

// Page is a rendered list page together with its clamped page number and the
// total page count, so callers can echo "(page/total)" in the body text.
type Page struct {
	List   models.ListPayload
	Number int
	Total  int
}

// BuildPage renders the requested 1-based page of items under the profile.
//
// Usable rows per page are the transport maximum minus the fixed trailing
// rows. When the item count exceeds one page, one further row per page is
// reserved for the next-page sentinel; the final page omits it. The requested
// page is clamped into [1, total].
func BuildPage(items []Item, page int, p Profile) Page {
	usable := models.MaxListRows - len(p.Trailing)
	perPage := usable
	if len(items) > usable {
		perPage = usable - 1
	}

	total := (len(items) + perPage - 1) / perPage
	if total < 1 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	var slice []Item
	if start < len(items) {
		slice = items[start:end]
	}

	rows := make([]models.ListRow, 0, models.MaxListRows)
	for _, it := range slice {
		rows = append(rows, models.ListRow{
			ID:          rowid.Encode(p.RowPrefix, it.ID),
			Title:       models.Truncate(it.Title, models.MaxRowTitleLength),
			Description: models.Truncate(it.Description, models.MaxRowDescriptionLength),
		})
	}
	if end < len(items) {
		rows = append(rows, models.ListRow{
			ID:          rowid.Encode(p.PagePrefix, int64(page+1)),
			Title:       NextPageTitle,
			Description: fmt.Sprintf("Page %d of %d", page+1, total),
		})
	}
	rows = append(rows, p.Trailing...)

	body := p.Body
	if total > 1 {
		body = fmt.Sprintf("%s (%d/%d)", body, page, total)
	}

	return Page{
		List: models.ListPayload{
			Header:     p.Header,
			Body:       models.Truncate(body, models.MaxInteractiveBodyLength),
			Footer:     p.Footer,
			ButtonText: models.Truncate(p.ButtonText, models.MaxButtonTitleLength),
			Sections:   []models.ListSection{{Rows: rows}},
		},
		Number: page,
		Total:  total,
	}
}
