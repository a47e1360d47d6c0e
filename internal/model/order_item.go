package model

import "time"

// ItemStatus is the preparation state of a single line item.
type ItemStatus string

const (
	ItemQueued     ItemStatus = "QUEUED"
	ItemInProgress ItemStatus = "IN_PROGRESS"
	ItemCompleted  ItemStatus = "COMPLETED"
)

// Valid reports whether s is one of the three recognized values.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemQueued, ItemInProgress, ItemCompleted:
		return true
	}
	return false
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	OrderID    uint       `gorm:"not null;index" json:"order_id"`
	MenuItemID uint       `gorm:"not null" json:"menu_item_id"`
	Quantity   int        `gorm:"not null" json:"quantity"`
	UnitPrice  float64    `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Status     ItemStatus `gorm:"size:20;not null;default:'QUEUED'" json:"status"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`

	// Associations
	Order Order `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
