package menu

import (
	"fmt"

	"github.com/zapstore-app/zapstore/internal/models"
	"github.com/zapstore-app/zapstore/internal/rowid"
)

// CategoryAction selects which category picker is being rendered.
type CategoryAction string

// Category picker actions.
const (
	ActionRename CategoryAction = "rename"
	ActionPrice  CategoryAction = "price"
	ActionSKU    CategoryAction = "sku"
)

// cancelRow is the fixed trailing row appended to every picker.
var cancelRow = models.ListRow{ID: rowid.Cancel, Title: "✖️ Cancel"}

// MainMenu renders the top-level admin action list shown while idle.
func MainMenu() models.ListPayload {
	return models.ListPayload{
		Header:     "Store admin",
		Body:       "What would you like to do?",
		ButtonText: "Open menu",
		Sections: []models.ListSection{
			{
				Title: "Categories",
				Rows: []models.ListRow{
					{ID: rowid.MenuCategoryList, Title: "📋 List categories", Description: "Browse categories with price and SKU"},
					{ID: rowid.MenuCategoryRename, Title: "✏️ Rename category", Description: "Change a category's display name"},
					{ID: rowid.MenuCategoryPrice, Title: "💲 Change price", Description: "Set a new unit price"},
					{ID: rowid.MenuCategorySKU, Title: "🏷️ Change SKU", Description: "Set a new stock keeping unit"},
				},
			},
			{
				Title: "Customers",
				Rows: []models.ListRow{
					{ID: rowid.MenuCustomerEdit, Title: "👤 Edit customer", Description: "Look up a customer by phone number"},
				},
			},
		},
	}
}

// categoryItems projects categories into builder items with a price/SKU
// description line.
func categoryItems(cats []models.Category) []Item {
	items := make([]Item, 0, len(cats))
	for _, c := range cats {
		desc := fmt.Sprintf("R$ %.2f", c.Price)
		if c.SKU != "" {
			desc += " · " + c.SKU
		}
		if c.ItemCount > 0 {
			desc += fmt.Sprintf(" · %d items", c.ItemCount)
		}
		items = append(items, Item{ID: c.ID, Title: c.Name, Description: desc})
	}
	return items
}

// CategoryPicker renders the "choose a category" list for the given action at
// the requested page.
func CategoryPicker(cats []models.Category, page int, action CategoryAction) Page {
	var p Profile
	switch action {
	case ActionRename:
		p = Profile{
			Header:     "Rename category",
			Body:       "Pick the category to rename.",
			RowPrefix:  rowid.CategoryRenamePick,
			PagePrefix: rowid.CategoryRenamePage,
		}
	case ActionPrice:
		p = Profile{
			Header:     "Change price",
			Body:       "Pick the category to re-price.",
			RowPrefix:  rowid.CategoryPricePick,
			PagePrefix: rowid.CategoryPricePage,
		}
	case ActionSKU:
		p = Profile{
			Header:     "Change SKU",
			Body:       "Pick the category to update.",
			RowPrefix:  rowid.CategorySKUPick,
			PagePrefix: rowid.CategorySKUPage,
		}
	}
	p.ButtonText = "Categories"
	p.Trailing = []models.ListRow{cancelRow}
	return BuildPage(categoryItems(cats), page, p)
}

// CategoryBrowse renders the plain category listing at the requested page.
// Selecting a row answers with the category details and keeps the session
// idle.
func CategoryBrowse(cats []models.Category, page int) Page {
	return BuildPage(categoryItems(cats), page, Profile{
		Header:     "Categories",
		Body:       "Tap a category for details.",
		ButtonText: "Categories",
		RowPrefix:  rowid.CategoryBrowseRow,
		PagePrefix: rowid.CategoryBrowsePage,
	})
}

// CustomerEditMenu renders the per-customer action list.
func CustomerEditMenu(c *models.Customer) models.ListPayload {
	block := "🚫 Block"
	blockDesc := "Prevent this customer from buying"
	if c.Blocked {
		block = "✅ Unblock"
		blockDesc = "Allow this customer to buy again"
	}
	body := fmt.Sprintf("*%s*\nBalance: R$ %.2f · Purchases: %d", c.Name, c.Balance, c.PurchaseCount)
	return models.ListPayload{
		Header:     "Edit customer",
		Body:       models.Truncate(body, models.MaxInteractiveBodyLength),
		ButtonText: "Actions",
		Sections: []models.ListSection{{
			Rows: []models.ListRow{
				{ID: rowid.Encode(rowid.CustomerEditName, c.ID), Title: "✏️ Edit name"},
				{ID: rowid.Encode(rowid.CustomerEditBalance, c.ID), Title: "💰 Adjust balance", Description: "Send a signed amount, e.g. +10 or -5"},
				{ID: rowid.Encode(rowid.CustomerToggleBlock, c.ID), Title: block, Description: blockDesc},
				{ID: rowid.Encode(rowid.CustomerEditBack, c.ID), Title: "↩️ Back"},
			},
		}},
	}
}
