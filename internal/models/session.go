// Package models defines session and flow-state structures for the admin
// conversation engine.
package models

import (
	"encoding/json"
	"log/slog"
	"time"
)

// StateType identifies a flow state awaiting further input.
type StateType string

// Flow state constants. The serialized flow context embeds its own state tag;
// see DecodeFlowContext.
const (
	StateCategoryRenameInput      StateType = "category_rename_input"
	StateCategoryPriceInput       StateType = "category_price_input"
	StateCategorySKUInput         StateType = "category_sku_input"
	StateCustomerLookupInput      StateType = "customer_lookup_input"
	StateCustomerEditMenu         StateType = "customer_edit_menu"
	StateCustomerEditNameInput    StateType = "customer_edit_name_input"
	StateCustomerEditBalanceInput StateType = "customer_edit_balance_input"
)

// CustomerLookupModeEdit is the only lookup mode currently used.
const CustomerLookupModeEdit = "edit"

// FlowContext carries exactly the data needed to resume a flow. The State tag
// is embedded in the serialized form and cross-checked against the session's
// flow_state column on load.
type FlowContext struct {
	State      StateType `json:"state"`
	CategoryID int64     `json:"category_id,omitempty"`
	CustomerID int64     `json:"customer_id,omitempty"`
	Mode       string    `json:"mode,omitempty"`
}

// Valid reports whether the context carries the data its state requires.
func (f *FlowContext) Valid() bool {
	switch f.State {
	case StateCategoryRenameInput, StateCategoryPriceInput, StateCategorySKUInput:
		return f.CategoryID > 0
	case StateCustomerLookupInput:
		return true
	case StateCustomerEditMenu, StateCustomerEditNameInput, StateCustomerEditBalanceInput:
		return f.CustomerID > 0
	default:
		return false
	}
}

// DecodeFlowContext reconstructs a flow context from the stored state tag and
// serialized payload. A record whose embedded tag does not match the stored
// tag, that fails to parse, or that is missing required ids is treated as "no
// active flow" rather than an error, so a partially written or schema-drifted
// record can never wedge a session.
func DecodeFlowContext(stateTag, contextJSON string) *FlowContext {
	if stateTag == "" || contextJSON == "" {
		return nil
	}
	var fc FlowContext
	if err := json.Unmarshal([]byte(contextJSON), &fc); err != nil {
		slog.Warn("DecodeFlowContext discarding unparseable flow context", "error", err, "state", stateTag)
		return nil
	}
	if fc.State != StateType(stateTag) {
		slog.Warn("DecodeFlowContext discarding mismatched flow context", "state_column", stateTag, "embedded_tag", fc.State)
		return nil
	}
	if !fc.Valid() {
		slog.Warn("DecodeFlowContext discarding incomplete flow context", "state", stateTag)
		return nil
	}
	return &fc
}

// EncodeFlowContext serializes a flow context for storage, returning the
// state tag and JSON payload column values.
func EncodeFlowContext(fc *FlowContext) (stateTag, contextJSON string, err error) {
	if fc == nil {
		return "", "", nil
	}
	raw, err := json.Marshal(fc)
	if err != nil {
		return "", "", err
	}
	return string(fc.State), string(raw), nil
}

// Session binds a remote messaging identifier to its owning tenant and the
// current flow, if any. At most one flow is active per session; starting a new
// flow replaces any prior one.
type Session struct {
	RemoteID          string       `json:"remote_id"`
	OwnerID           int64        `json:"owner_id"`
	Flow              *FlowContext `json:"flow,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	LastInteractionAt time.Time    `json:"last_interaction_at"`
}

// Idle reports whether the session has no active flow.
func (s *Session) Idle() bool {
	return s.Flow == nil
}

// Admin binds an administrator's remote messaging identifier to a tenant.
type Admin struct {
	RemoteID  string    `json:"remote_id"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}
