// Package flow implements the administrative conversation state machine.
//
// It consumes inbound transport events, advances the per-session flow state
// persisted in the store, performs the resulting catalog/customer mutations,
// and selects the outbound payloads to send.
package flow

import (
	"strconv"
	"strings"
)

// Prompt and confirmation templates. Tokens of the form {token} are
// substituted by Render; unresolved tokens are left in place.
const (
	TplCategoryRenamePrompt  = "✏️ Renaming *{name}*.\n\nReply with the new category name."
	TplCategoryPricePrompt   = "💲 New price for *{name}* (currently R$ {price}).\n\nReply with the new price, e.g. 12,50."
	TplCategorySKUPrompt     = "🏷️ New SKU for *{name}* (currently {sku}).\n\nReply with up to 32 letters and digits."
	TplCustomerLookupPrompt  = "👤 Reply with the customer's phone number."
	TplCustomerNamePrompt    = "✏️ New name for *{name}*."
	TplCustomerBalancePrompt = "💰 Balance of *{name}* is R$ {balance}.\n\nReply with a signed amount: +10 adds, -5 subtracts, 0 changes nothing."

	TplCategoryRenamed     = "✅ Category renamed to *{name}*."
	TplCategoryPriceSet    = "✅ *{name}* now costs R$ {price}."
	TplCategorySKUSet      = "✅ *{name}* SKU is now {sku}."
	TplCategoryDetail      = "*{name}*\nPrice: R$ {price}\nSKU: {sku}\nItems: {items}"
	TplCustomerRenamed     = "✅ Customer renamed to *{name}*."
	TplCustomerBalanceSet  = "✅ Balance of *{name}* is now R$ {balance}."
	TplCustomerBlocked     = "🚫 *{name}* is now blocked."
	TplCustomerUnblocked   = "✅ *{name}* is no longer blocked."

	TplCancelled        = "Okay, cancelled."
	TplDidntUnderstand  = "🤔 I didn't understand that. Reply *menu* to see the options."
	TplRecordGone       = "⚠️ That record no longer exists. Open the menu and try again."
	TplCustomerNotFound = "🔍 No customer found with that number. Try again, or tap Cancel."
	TplNoCategories     = "📭 You have no categories yet."
	TplInvalidInput     = "⚠️ {reason}\n\nTry again, or tap Cancel."
)

// Render substitutes {token} occurrences in tpl with the bound values.
// Unknown tokens are left unresolved rather than causing a failure.
func Render(tpl string, bindings map[string]string) string {
	for token, value := range bindings {
		tpl = strings.ReplaceAll(tpl, "{"+token+"}", value)
	}
	return tpl
}

// FormatMoney renders an amount with two decimal places.
func FormatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
