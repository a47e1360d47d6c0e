// Package store is the persistence gateway for the ordering core. Every
// operation is tenant-scoped and every multi-step write runs inside one
// transaction, so partial pointer or status updates are never observable.
package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"qrdine-backend/internal/menu"
	"qrdine-backend/internal/model"
)

// Store defines all database operations of the ordering core.
type Store interface {
	// DB exposes the underlying connection for collaborators that manage
	// their own queries (subscriptions, notification fan-out).
	DB() *gorm.DB

	// Table binding resolver.
	ResolveTable(ctx context.Context, tenantID uint, sel TableSelector) (*model.Table, error)

	// Session manager.
	EnsureActiveSession(ctx context.Context, tenantID, tableID uint) (*model.DiningSession, bool, error)
	ValidateSession(ctx context.Context, tenantID, tableID, sessionID uint) (*model.DiningSession, error)
	CloseSession(ctx context.Context, tenantID, sessionID uint, tableLabel string) (*model.DiningSession, error)

	// Order ledger.
	PlaceOrder(ctx context.Context, tenantID uint, in PlaceOrderInput) (*PlaceOrderResult, error)
	UpdateOrderStatus(ctx context.Context, tenantID, orderID uint, s model.OrderStatus) (*OrderStatusResult, error)
	UpdateItemStatus(ctx context.Context, tenantID, itemID uint, s model.ItemStatus) (*model.OrderItem, error)
	UpdatePaymentStatus(ctx context.Context, tenantID, orderID uint, s model.PaymentStatus) (*model.Order, error)

	// Dashboard read path.
	TableOverview(ctx context.Context, tenantID uint) ([]TableState, error)
}

// gormStore implements Store on GORM.
type gormStore struct {
	db          *gorm.DB
	catalog     menu.Catalog
	defaultPrep time.Duration
}

// NewGormStore creates a GORM-backed store. defaultPrep is used for
// estimated_ready_at when the caller does not supply a prep time.
func NewGormStore(db *gorm.DB, catalog menu.Catalog, defaultPrep time.Duration) Store {
	if defaultPrep <= 0 {
		defaultPrep = 15 * time.Minute
	}
	return &gormStore{db: db, catalog: catalog, defaultPrep: defaultPrep}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}
