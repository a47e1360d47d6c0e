package model

import "time"

// OrderStatus is the preparation state of a placed order.
type OrderStatus string

const (
	OrderPlaced     OrderStatus = "PLACED"
	OrderInProgress OrderStatus = "IN_PROGRESS"
	OrderReady      OrderStatus = "READY"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderDelayed    OrderStatus = "DELAYED"
)

// Valid reports whether s is one of the five recognized values.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPlaced, OrderInProgress, OrderReady, OrderCompleted, OrderDelayed:
		return true
	}
	return false
}

// Ready reports whether the order has reached a state where food is on the
// pass: READY or COMPLETED.
func (s OrderStatus) Ready() bool {
	return s == OrderReady || s == OrderCompleted
}

// Order is a purchase placed against a dining session.
//
// ActualReadyAt is stamped exactly once, the first time the order enters
// READY or COMPLETED.
type Order struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	TenantID         uint          `gorm:"not null;index" json:"tenant_id"`
	SessionID        uint          `gorm:"not null;index" json:"session_id"`
	Status           OrderStatus   `gorm:"size:20;not null;default:'PLACED'" json:"status"`
	PaymentStatus    PaymentStatus `gorm:"size:20;not null;default:'unpaid'" json:"payment_status"`
	TotalAmount      float64       `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	PlacedAt         time.Time     `gorm:"not null" json:"placed_at"`
	EstimatedReadyAt time.Time     `json:"estimated_ready_at"`
	ActualReadyAt    *time.Time    `json:"actual_ready_at,omitempty"`
	CreatedAt        time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null" json:"updated_at"`

	// Associations
	Session DiningSession `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	Items   []OrderItem   `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}
