package flow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zapstore-app/zapstore/internal/menu"
	"github.com/zapstore-app/zapstore/internal/models"
	"github.com/zapstore-app/zapstore/internal/rowid"
	"github.com/zapstore-app/zapstore/internal/store"
)

// Sender delivers outbound payloads. Delivery is best-effort: a false return
// means the message was not delivered, and the engine commits its state
// transitions regardless.
type Sender interface {
	SendText(ctx context.Context, to, body string) bool
	SendButtons(ctx context.Context, to string, payload models.ButtonsPayload) bool
	SendList(ctx context.Context, to string, payload models.ListPayload) bool
}

// Engine is the session-scoped state machine driving the admin conversation.
// It holds no per-session state in memory; everything needed to resume lives
// in the store, so concurrent handlers and multiple processes are safe.
type Engine struct {
	store  store.Store
	sender Sender
}

// NewEngine creates a flow engine over the given store and sender.
func NewEngine(st store.Store, sender Sender) *Engine {
	return &Engine{store: st, sender: sender}
}

// cancelButton is attached to every free-text prompt.
var cancelButton = []models.Button{{ID: rowid.Cancel, Title: "Cancel"}}

// HandleEvent processes one inbound event: it loads the sender's session,
// advances or starts a flow, performs the mutation when a flow completes, and
// sends the resulting payload. It returns an error only for store failures;
// everything user-facing is answered in the conversation itself.
func (e *Engine) HandleEvent(ctx context.Context, ev models.InboundEvent) error {
	remoteID := DigitsOnly(ev.From)
	if remoteID == "" {
		slog.Debug("Engine ignoring event without usable sender id", "from", ev.From)
		return nil
	}

	admin, err := e.store.GetAdmin(remoteID)
	if err != nil {
		return fmt.Errorf("failed to resolve admin for %s: %w", remoteID, err)
	}
	if admin == nil {
		// Unknown numbers are ignored entirely; the bot never reveals itself
		// to strangers.
		slog.Debug("Engine ignoring event from unbound number", "remoteID", remoteID)
		return nil
	}

	sess, err := e.store.GetSession(remoteID)
	if err != nil {
		return fmt.Errorf("failed to load session for %s: %w", remoteID, err)
	}
	if sess == nil || sess.OwnerID != admin.OwnerID {
		sess, err = e.store.UpsertSession(remoteID, admin.OwnerID)
		if err != nil {
			return fmt.Errorf("failed to upsert session for %s: %w", remoteID, err)
		}
	} else if err := e.store.TouchSession(remoteID); err != nil {
		slog.Warn("Engine failed to touch session", "error", err, "remoteID", remoteID)
	}

	slog.Debug("Engine handling event", "remoteID", remoteID, "selection", ev.SelectionID, "has_text", ev.Text != "", "idle", sess.Idle())

	if ev.IsSelection() && ev.SelectionID == rowid.Cancel {
		return e.cancelFlow(ctx, sess)
	}

	if sess.Idle() {
		return e.handleIdle(ctx, sess, ev)
	}

	switch sess.Flow.State {
	case models.StateCategoryRenameInput, models.StateCategoryPriceInput, models.StateCategorySKUInput:
		return e.handleCategoryInput(ctx, sess, ev)
	case models.StateCustomerLookupInput:
		return e.handleCustomerLookup(ctx, sess, ev)
	case models.StateCustomerEditMenu:
		return e.handleCustomerEditMenu(ctx, sess, ev)
	case models.StateCustomerEditNameInput, models.StateCustomerEditBalanceInput:
		return e.handleCustomerInput(ctx, sess, ev)
	default:
		// Unreachable as long as DecodeFlowContext rejects unknown tags.
		slog.Error("Engine found session in unknown state", "remoteID", sess.RemoteID, "state", sess.Flow.State)
		return e.clearAndShowMenu(ctx, sess)
	}
}

// cancelFlow clears any active flow and returns to the top-level menu.
func (e *Engine) cancelFlow(ctx context.Context, sess *models.Session) error {
	if !sess.Idle() {
		if err := e.store.SetSessionFlow(sess.RemoteID, nil); err != nil {
			return fmt.Errorf("failed to clear flow for %s: %w", sess.RemoteID, err)
		}
		e.sender.SendText(ctx, sess.RemoteID, TplCancelled)
	}
	e.sender.SendList(ctx, sess.RemoteID, menu.MainMenu())
	return nil
}

func (e *Engine) clearAndShowMenu(ctx context.Context, sess *models.Session) error {
	if err := e.store.SetSessionFlow(sess.RemoteID, nil); err != nil {
		return fmt.Errorf("failed to clear flow for %s: %w", sess.RemoteID, err)
	}
	e.sender.SendList(ctx, sess.RemoteID, menu.MainMenu())
	return nil
}

// handleIdle dispatches events received with no active flow: top-level menu
// actions, category picker selections and their page navigation, and the
// plain category listing.
func (e *Engine) handleIdle(ctx context.Context, sess *models.Session, ev models.InboundEvent) error {
	if !ev.IsSelection() {
		// Any free text while idle answers with the top-level menu.
		e.sender.SendList(ctx, sess.RemoteID, menu.MainMenu())
		return nil
	}

	switch ev.SelectionID {
	case rowid.MenuCategoryRename:
		return e.sendCategoryPicker(ctx, sess, 1, menu.ActionRename)
	case rowid.MenuCategoryPrice:
		return e.sendCategoryPicker(ctx, sess, 1, menu.ActionPrice)
	case rowid.MenuCategorySKU:
		return e.sendCategoryPicker(ctx, sess, 1, menu.ActionSKU)
	case rowid.MenuCategoryList:
		return e.sendCategoryBrowse(ctx, sess, 1)
	case rowid.MenuCustomerEdit:
		return e.startCustomerLookup(ctx, sess)
	}

	// Page navigation keeps the session idle.
	if page, ok := rowid.Decode(ev.SelectionID, rowid.CategoryRenamePage); ok {
		return e.sendCategoryPicker(ctx, sess, int(page), menu.ActionRename)
	}
	if page, ok := rowid.Decode(ev.SelectionID, rowid.CategoryPricePage); ok {
		return e.sendCategoryPicker(ctx, sess, int(page), menu.ActionPrice)
	}
	if page, ok := rowid.Decode(ev.SelectionID, rowid.CategorySKUPage); ok {
		return e.sendCategoryPicker(ctx, sess, int(page), menu.ActionSKU)
	}
	if page, ok := rowid.Decode(ev.SelectionID, rowid.CategoryBrowsePage); ok {
		return e.sendCategoryBrowse(ctx, sess, int(page))
	}

	// Picker selections start an input flow.
	if id, ok := rowid.Decode(ev.SelectionID, rowid.CategoryRenamePick); ok {
		return e.startCategoryFlow(ctx, sess, id, models.StateCategoryRenameInput)
	}
	if id, ok := rowid.Decode(ev.SelectionID, rowid.CategoryPricePick); ok {
		return e.startCategoryFlow(ctx, sess, id, models.StateCategoryPriceInput)
	}
	if id, ok := rowid.Decode(ev.SelectionID, rowid.CategorySKUPick); ok {
		return e.startCategoryFlow(ctx, sess, id, models.StateCategorySKUInput)
	}
	if id, ok := rowid.Decode(ev.SelectionID, rowid.CategoryBrowseRow); ok {
		return e.sendCategoryDetail(ctx, sess, id)
	}

	slog.Debug("Engine ignoring unrecognized idle selection", "remoteID", sess.RemoteID, "selection", ev.SelectionID)
	e.sender.SendText(ctx, sess.RemoteID, TplDidntUnderstand)
	return nil
}

func (e *Engine) sendCategoryPicker(ctx context.Context, sess *models.Session, page int, action menu.CategoryAction) error {
	cats, err := e.store.ListCategories(sess.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to list categories for owner %d: %w", sess.OwnerID, err)
	}
	if len(cats) == 0 {
		e.sender.SendText(ctx, sess.RemoteID, TplNoCategories)
		return nil
	}
	e.sender.SendList(ctx, sess.RemoteID, menu.CategoryPicker(cats, page, action).List)
	return nil
}

func (e *Engine) sendCategoryBrowse(ctx context.Context, sess *models.Session, page int) error {
	cats, err := e.store.ListCategories(sess.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to list categories for owner %d: %w", sess.OwnerID, err)
	}
	if len(cats) == 0 {
		e.sender.SendText(ctx, sess.RemoteID, TplNoCategories)
		return nil
	}
	e.sender.SendList(ctx, sess.RemoteID, menu.CategoryBrowse(cats, page).List)
	return nil
}

func (e *Engine) sendCategoryDetail(ctx context.Context, sess *models.Session, id int64) error {
	cat, err := e.store.GetCategory(id)
	if err != nil {
		return fmt.Errorf("failed to load category %d: %w", id, err)
	}
	if cat == nil {
		e.sender.SendText(ctx, sess.RemoteID, TplRecordGone)
		return nil
	}
	e.sender.SendText(ctx, sess.RemoteID, Render(TplCategoryDetail, map[string]string{
		"name":  cat.Name,
		"price": FormatMoney(cat.Price),
		"sku":   skuOrDash(cat.SKU),
		"items": fmt.Sprintf("%d", cat.ItemCount),
	}))
	return nil
}

// startCategoryFlow transitions to a category input state and sends the
// matching prompt.
func (e *Engine) startCategoryFlow(ctx context.Context, sess *models.Session, id int64, state models.StateType) error {
	cat, err := e.store.GetCategory(id)
	if err != nil {
		return fmt.Errorf("failed to load category %d: %w", id, err)
	}
	if cat == nil {
		e.sender.SendText(ctx, sess.RemoteID, TplRecordGone)
		return nil
	}

	if err := e.store.SetSessionFlow(sess.RemoteID, &models.FlowContext{State: state, CategoryID: id}); err != nil {
		return fmt.Errorf("failed to start flow for %s: %w", sess.RemoteID, err)
	}
	slog.Info("Engine started category flow", "remoteID", sess.RemoteID, "state", state, "categoryID", id)

	bindings := map[string]string{
		"name":  cat.Name,
		"price": FormatMoney(cat.Price),
		"sku":   skuOrDash(cat.SKU),
	}
	var tpl string
	switch state {
	case models.StateCategoryRenameInput:
		tpl = TplCategoryRenamePrompt
	case models.StateCategoryPriceInput:
		tpl = TplCategoryPricePrompt
	case models.StateCategorySKUInput:
		tpl = TplCategorySKUPrompt
	}
	e.prompt(ctx, sess.RemoteID, Render(tpl, bindings))
	return nil
}

// handleCategoryInput consumes free text for the three category input states.
func (e *Engine) handleCategoryInput(ctx context.Context, sess *models.Session, ev models.InboundEvent) error {
	if ev.IsSelection() {
		// A stale tap from some earlier menu; state unchanged.
		e.sender.SendText(ctx, sess.RemoteID, TplDidntUnderstand)
		return nil
	}

	id := sess.Flow.CategoryID
	var (
		cat     *models.Category
		confirm string
		err     error
	)
	switch sess.Flow.State {
	case models.StateCategoryRenameInput:
		name, verr := ValidateCategoryName(ev.Text)
		if verr != nil {
			return e.reprompt(ctx, sess, verr)
		}
		if cat, err = e.store.RenameCategory(id, name); err != nil {
			return fmt.Errorf("failed to rename category %d: %w", id, err)
		}
		confirm = TplCategoryRenamed
	case models.StateCategoryPriceInput:
		price, verr := ParsePrice(ev.Text)
		if verr != nil {
			return e.reprompt(ctx, sess, verr)
		}
		if cat, err = e.store.SetCategoryPrice(id, price); err != nil {
			return fmt.Errorf("failed to set price of category %d: %w", id, err)
		}
		confirm = TplCategoryPriceSet
	case models.StateCategorySKUInput:
		sku, verr := ValidateSKU(ev.Text)
		if verr != nil {
			return e.reprompt(ctx, sess, verr)
		}
		if cat, err = e.store.SetCategorySKU(id, sku); err != nil {
			return fmt.Errorf("failed to set SKU of category %d: %w", id, err)
		}
		confirm = TplCategorySKUSet
	}

	// Mutation attempted: the flow ends here whether or not the record still
	// existed, so a stale id is never retried.
	if err := e.store.SetSessionFlow(sess.RemoteID, nil); err != nil {
		return fmt.Errorf("failed to clear flow for %s: %w", sess.RemoteID, err)
	}
	if cat == nil {
		e.sender.SendText(ctx, sess.RemoteID, TplRecordGone)
		return nil
	}
	slog.Info("Engine completed category flow", "remoteID", sess.RemoteID, "state", sess.Flow.State, "categoryID", id)
	// Confirmation renders from the updated record, not the submitted text.
	e.sender.SendText(ctx, sess.RemoteID, Render(confirm, map[string]string{
		"name":  cat.Name,
		"price": FormatMoney(cat.Price),
		"sku":   skuOrDash(cat.SKU),
	}))
	return nil
}

// startCustomerLookup transitions to the phone-number search step.
func (e *Engine) startCustomerLookup(ctx context.Context, sess *models.Session) error {
	flow := &models.FlowContext{State: models.StateCustomerLookupInput, Mode: models.CustomerLookupModeEdit}
	if err := e.store.SetSessionFlow(sess.RemoteID, flow); err != nil {
		return fmt.Errorf("failed to start lookup for %s: %w", sess.RemoteID, err)
	}
	e.prompt(ctx, sess.RemoteID, TplCustomerLookupPrompt)
	return nil
}

// handleCustomerLookup resolves free text into a customer and fans out to the
// edit menu.
func (e *Engine) handleCustomerLookup(ctx context.Context, sess *models.Session, ev models.InboundEvent) error {
	if ev.IsSelection() {
		e.sender.SendText(ctx, sess.RemoteID, TplDidntUnderstand)
		return nil
	}

	digits := DigitsOnly(ev.Text)
	if digits == "" {
		e.prompt(ctx, sess.RemoteID, TplCustomerNotFound)
		return nil
	}
	cust, err := e.store.FindCustomerByPhone(sess.OwnerID, digits)
	if err != nil {
		return fmt.Errorf("failed to look up customer: %w", err)
	}
	if cust == nil {
		// Not found: re-prompt, flow unchanged.
		e.prompt(ctx, sess.RemoteID, TplCustomerNotFound)
		return nil
	}

	flow := &models.FlowContext{State: models.StateCustomerEditMenu, CustomerID: cust.ID}
	if err := e.store.SetSessionFlow(sess.RemoteID, flow); err != nil {
		return fmt.Errorf("failed to enter edit menu for %s: %w", sess.RemoteID, err)
	}
	slog.Info("Engine resolved customer lookup", "remoteID", sess.RemoteID, "customerID", cust.ID)
	e.sender.SendList(ctx, sess.RemoteID, menu.CustomerEditMenu(cust))
	return nil
}

// handleCustomerEditMenu fans out by the tapped option id. Decoding is only
// attempted against the prefixes valid in this state.
func (e *Engine) handleCustomerEditMenu(ctx context.Context, sess *models.Session, ev models.InboundEvent) error {
	custID := sess.Flow.CustomerID

	if !ev.IsSelection() {
		// Free text here just re-renders the menu.
		cust, err := e.store.GetCustomer(custID)
		if err != nil {
			return fmt.Errorf("failed to load customer %d: %w", custID, err)
		}
		if cust == nil {
			return e.recordGone(ctx, sess)
		}
		e.sender.SendList(ctx, sess.RemoteID, menu.CustomerEditMenu(cust))
		return nil
	}

	if id, ok := rowid.Decode(ev.SelectionID, rowid.CustomerEditBack); ok && id == custID {
		return e.clearAndShowMenu(ctx, sess)
	}
	if id, ok := rowid.Decode(ev.SelectionID, rowid.CustomerToggleBlock); ok && id == custID {
		cust, err := e.store.ToggleCustomerBlocked(custID)
		if err != nil {
			return fmt.Errorf("failed to toggle block on customer %d: %w", custID, err)
		}
		if err := e.store.SetSessionFlow(sess.RemoteID, nil); err != nil {
			return fmt.Errorf("failed to clear flow for %s: %w", sess.RemoteID, err)
		}
		if cust == nil {
			e.sender.SendText(ctx, sess.RemoteID, TplRecordGone)
			return nil
		}
		tpl := TplCustomerUnblocked
		if cust.Blocked {
			tpl = TplCustomerBlocked
		}
		slog.Info("Engine toggled customer block", "remoteID", sess.RemoteID, "customerID", custID, "blocked", cust.Blocked)
		e.sender.SendText(ctx, sess.RemoteID, Render(tpl, map[string]string{"name": cust.Name}))
		return nil
	}

	var next models.StateType
	var tpl string
	if id, ok := rowid.Decode(ev.SelectionID, rowid.CustomerEditName); ok && id == custID {
		next, tpl = models.StateCustomerEditNameInput, TplCustomerNamePrompt
	} else if id, ok := rowid.Decode(ev.SelectionID, rowid.CustomerEditBalance); ok && id == custID {
		next, tpl = models.StateCustomerEditBalanceInput, TplCustomerBalancePrompt
	} else {
		slog.Debug("Engine ignoring unrecognized edit-menu selection", "remoteID", sess.RemoteID, "selection", ev.SelectionID)
		e.sender.SendText(ctx, sess.RemoteID, TplDidntUnderstand)
		return nil
	}

	cust, err := e.store.GetCustomer(custID)
	if err != nil {
		return fmt.Errorf("failed to load customer %d: %w", custID, err)
	}
	if cust == nil {
		return e.recordGone(ctx, sess)
	}
	if err := e.store.SetSessionFlow(sess.RemoteID, &models.FlowContext{State: next, CustomerID: custID}); err != nil {
		return fmt.Errorf("failed to advance flow for %s: %w", sess.RemoteID, err)
	}
	e.prompt(ctx, sess.RemoteID, Render(tpl, map[string]string{
		"name":    cust.Name,
		"balance": FormatMoney(cust.Balance),
	}))
	return nil
}

// handleCustomerInput consumes free text for the customer name and balance
// states.
func (e *Engine) handleCustomerInput(ctx context.Context, sess *models.Session, ev models.InboundEvent) error {
	if ev.IsSelection() {
		e.sender.SendText(ctx, sess.RemoteID, TplDidntUnderstand)
		return nil
	}

	custID := sess.Flow.CustomerID
	var (
		cust    *models.Customer
		confirm string
		err     error
	)
	switch sess.Flow.State {
	case models.StateCustomerEditNameInput:
		name, verr := ValidateCustomerName(ev.Text)
		if verr != nil {
			return e.reprompt(ctx, sess, verr)
		}
		if cust, err = e.store.SetCustomerName(custID, name); err != nil {
			return fmt.Errorf("failed to rename customer %d: %w", custID, err)
		}
		confirm = TplCustomerRenamed
	case models.StateCustomerEditBalanceInput:
		delta, verr := ParseBalanceDelta(ev.Text)
		if verr != nil {
			return e.reprompt(ctx, sess, verr)
		}
		// The delta is passed through as submitted; any clamping of the
		// resulting balance belongs to the persistence layer.
		if cust, err = e.store.AdjustCustomerBalance(custID, delta); err != nil {
			return fmt.Errorf("failed to adjust balance of customer %d: %w", custID, err)
		}
		confirm = TplCustomerBalanceSet
	}

	if err := e.store.SetSessionFlow(sess.RemoteID, nil); err != nil {
		return fmt.Errorf("failed to clear flow for %s: %w", sess.RemoteID, err)
	}
	if cust == nil {
		e.sender.SendText(ctx, sess.RemoteID, TplRecordGone)
		return nil
	}
	slog.Info("Engine completed customer flow", "remoteID", sess.RemoteID, "state", sess.Flow.State, "customerID", custID)
	e.sender.SendText(ctx, sess.RemoteID, Render(confirm, map[string]string{
		"name":    cust.Name,
		"balance": FormatMoney(cust.Balance),
	}))
	return nil
}

// prompt sends a free-text prompt with the standard cancel button.
func (e *Engine) prompt(ctx context.Context, to, body string) {
	e.sender.SendButtons(ctx, to, models.ButtonsPayload{
		Body:    models.Truncate(body, models.MaxInteractiveBodyLength),
		Buttons: cancelButton,
	})
}

// reprompt answers a validation failure in place, leaving the flow unchanged.
func (e *Engine) reprompt(ctx context.Context, sess *models.Session, verr error) error {
	e.prompt(ctx, sess.RemoteID, Render(TplInvalidInput, map[string]string{"reason": verr.Error()}))
	return nil
}

// recordGone clears the flow after the target record disappeared, so the
// stale id is never retried.
func (e *Engine) recordGone(ctx context.Context, sess *models.Session) error {
	if err := e.store.SetSessionFlow(sess.RemoteID, nil); err != nil {
		return fmt.Errorf("failed to clear flow for %s: %w", sess.RemoteID, err)
	}
	e.sender.SendText(ctx, sess.RemoteID, TplRecordGone)
	return nil
}

func skuOrDash(sku string) string {
	if sku == "" {
		return "—"
	}
	return sku
}
