package store

import (
	"strings"

	"qrdine-backend/internal/model"
	"qrdine-backend/internal/status"
)

// TableSelector identifies a table either by the opaque code printed on its
// QR sticker or by its human label. Exactly one field should be set; when
// both are, the code wins.
type TableSelector struct {
	Code  string
	Label string
}

// Empty reports whether neither field is set.
func (s TableSelector) Empty() bool {
	return s.Code == "" && s.Label == ""
}

// OrderLine is one requested line item. UnitPrice is optional; when it is
// not positive the price is resolved from the menu catalog.
type OrderLine struct {
	MenuItemID uint    `json:"menu_item_id"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
}

// PaymentAmount is the nested payment object some clients send. Its mere
// presence signals that the order was already paid for.
type PaymentAmount struct {
	Amount float64 `json:"amount"`
}

// PlaceOrderInput carries everything needed to place an order against a
// table. SessionID, when set, is a client-provided session that must be
// re-validated; otherwise the table's active session is ensured.
type PlaceOrderInput struct {
	TableLabel    string         `json:"table_label"`
	SessionID     *uint          `json:"session_id,omitempty"`
	Lines         []OrderLine    `json:"items"`
	Total         float64        `json:"total_amount"`
	PrepMinutes   int            `json:"prep_minutes"`
	Paid          bool           `json:"paid"`
	PaymentMethod string         `json:"payment_method"`
	PaymentStatus string         `json:"payment_status"`
	Payment       *PaymentAmount `json:"payment,omitempty"`
}

// PaidUpfront reports whether the request carries an immediate-payment
// intent: an explicit flag, an "online"/"paid" method hint, an explicit
// paid status, or a nested payment-amount object.
func (in PlaceOrderInput) PaidUpfront() bool {
	if in.Paid || in.Payment != nil {
		return true
	}
	switch strings.ToLower(in.PaymentMethod) {
	case "online", "paid":
		return true
	}
	return strings.EqualFold(in.PaymentStatus, string(model.PaymentPaid))
}

// ItemFailure records a line that could not be inserted. Failures do not
// abort the order; they ride along in the response as warnings.
type ItemFailure struct {
	MenuItemID uint   `json:"menu_item_id"`
	Reason     string `json:"reason"`
}

// PlaceOrderResult is the outcome of a successful (possibly partial)
// placement.
type PlaceOrderResult struct {
	Order       *model.Order         `json:"order"`
	Session     *model.DiningSession `json:"session"`
	Table       *model.Table         `json:"table"`
	FailedItems []ItemFailure        `json:"failed_items,omitempty"`
	Snapshot    status.Snapshot      `json:"-"`
}

// OrderStatusResult is the outcome of an order status update. BecameReady
// is true only on the transition that stamped actual_ready_at, so callers
// can fan out a single ready notification.
type OrderStatusResult struct {
	Order       *model.Order
	TableID     uint
	BecameReady bool
}

// TableState pairs a table with its classification snapshot. One overview
// call yields one TableState per table in the tenant.
type TableState struct {
	Table    model.Table
	Snapshot status.Snapshot
}
