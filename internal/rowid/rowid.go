// Package rowid encodes and decodes the opaque string ids carried by
// selectable UI elements (list rows and reply buttons).
//
// Every action family owns a distinct colon-terminated prefix followed by a
// decimal integer (a category id, customer id, or page number). The colon
// terminator guarantees that no prefix can parse as another prefix plus
// digits. Decoding is always attempted against the specific prefix expected
// for the current flow context, never by scanning every known prefix, so a
// stale tap from a previous flow cannot be misattributed.
package rowid

import (
	"strconv"
	"strings"
)

// Prefix tags an action family on a selectable element id.
type Prefix string

// Action family prefixes.
const (
	// CategoryRenamePick selects a category to rename.
	CategoryRenamePick Prefix = "cat_rn:"
	// CategoryRenamePage navigates the rename-selection list.
	CategoryRenamePage Prefix = "cat_rn_pg:"
	// CategoryPricePick selects a category to re-price.
	CategoryPricePick Prefix = "cat_pr:"
	// CategoryPricePage navigates the price-selection list.
	CategoryPricePage Prefix = "cat_pr_pg:"
	// CategorySKUPick selects a category for a SKU change.
	CategorySKUPick Prefix = "cat_sku:"
	// CategorySKUPage navigates the SKU-selection list.
	CategorySKUPage Prefix = "cat_sku_pg:"
	// CategoryBrowseRow is a row of the plain category listing.
	CategoryBrowseRow Prefix = "cat_ls:"
	// CategoryBrowsePage navigates the plain category listing.
	CategoryBrowsePage Prefix = "cat_ls_pg:"
	// CustomerRow is a row of a customer listing.
	CustomerRow Prefix = "cust:"
	// CustomerPage navigates a customer listing.
	CustomerPage Prefix = "cust_pg:"
	// CustomerEditName opens the customer name editor.
	CustomerEditName Prefix = "cust_nm:"
	// CustomerEditBalance opens the customer balance editor.
	CustomerEditBalance Prefix = "cust_bal:"
	// CustomerToggleBlock flips the customer's block flag.
	CustomerToggleBlock Prefix = "cust_blk:"
	// CustomerEditBack leaves the customer edit menu.
	CustomerEditBack Prefix = "cust_bk:"
)

// Fixed element ids without a numeric suffix.
const (
	// Cancel aborts the active flow; valid in every non-idle state.
	Cancel = "flow_cancel"

	// Top-level menu action ids, valid only while idle.
	MenuCategoryRename = "menu_cat_rename"
	MenuCategoryPrice  = "menu_cat_price"
	MenuCategorySKU    = "menu_cat_sku"
	MenuCategoryList   = "menu_cat_list"
	MenuCustomerEdit   = "menu_cust_edit"
)

// Encode builds the element id for the given action family and numeric id.
func Encode(p Prefix, id int64) string {
	return string(p) + strconv.FormatInt(id, 10)
}

// Decode extracts the numeric id from candidate if it starts with the exact
// prefix and the remainder parses as a decimal integer. It returns false for
// any other input, including ids belonging to a different action family.
func Decode(candidate string, p Prefix) (int64, bool) {
	rest, found := strings.CutPrefix(candidate, string(p))
	if !found || rest == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
