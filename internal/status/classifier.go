// Package status derives the dashboard color for a table from
// pre-aggregated session and order counters. Classification is a pure
// function: no I/O, no clock, same inputs always give the same verdict.
package status

// Color is the three-valued operational state shown on the dashboard.
type Color string

const (
	ColorAsh    Color = "ash"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
)

// Policy selects how colors map to session/order state.
type Policy string

const (
	// PolicyEatLater: diners pay at the end, so yellow spans the whole
	// dine-in window until every order is settled.
	PolicyEatLater Policy = "eat_later"
	// PolicyPayFirst: payment is collected at order time, so green means
	// the first dish is physically ready.
	PolicyPayFirst Policy = "pay_first"
)

// Valid reports whether p is a recognized policy.
func (p Policy) Valid() bool {
	return p == PolicyEatLater || p == PolicyPayFirst
}

// Snapshot is the per-table input to classification. It is built from one
// aggregation query across all sessions, never by re-scanning rows per
// table, so a full-dashboard pass stays O(tables).
type Snapshot struct {
	Active      bool // a session with status=active exists for the table
	OrdersCount int  // orders in that session
	UnpaidCount int  // orders with payment_status != paid
	PaidCount   int  // orders with payment_status == paid
	AnyReady    bool // any order READY/COMPLETED, or any item COMPLETED
}

// Verdict is the derived classification for one table. It is computed on
// demand and never persisted.
type Verdict struct {
	Color  Color  `json:"color"`
	Reason string `json:"reason"`
}

// Classify maps a snapshot to a verdict under the given policy.
//
// A session with zero orders is always yellow under eat_later even if it
// was pre-marked paid: green requires at least one order, all paid.
func Classify(s Snapshot, policy Policy) Verdict {
	if !s.Active {
		return Verdict{Color: ColorAsh, Reason: "no active session"}
	}

	switch policy {
	case PolicyPayFirst:
		if s.AnyReady {
			return Verdict{Color: ColorGreen, Reason: "first dish ready"}
		}
		if s.PaidCount > 0 {
			return Verdict{Color: ColorYellow, Reason: "paid, awaiting first dish"}
		}
		return Verdict{Color: ColorAsh, Reason: "no payment yet"}

	default: // PolicyEatLater
		if s.OrdersCount == 0 {
			return Verdict{Color: ColorYellow, Reason: "session active, no orders yet"}
		}
		if s.UnpaidCount > 0 {
			return Verdict{Color: ColorYellow, Reason: "unpaid orders exist"}
		}
		return Verdict{Color: ColorGreen, Reason: "all orders paid"}
	}
}
