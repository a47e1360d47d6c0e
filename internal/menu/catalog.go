// Package menu exposes the narrow slice of the catalog the order ledger
// needs: price and availability lookup by item id.
package menu

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"qrdine-backend/internal/model"
)

var (
	// ErrUnknownItem means no catalog entry exists for the id within the tenant.
	ErrUnknownItem = errors.New("menu item not found")
	// ErrItemUnavailable means the item exists but is not currently orderable.
	ErrItemUnavailable = errors.New("menu item unavailable")
)

// Catalog is the read-only menu lookup collaborator.
type Catalog interface {
	Lookup(ctx context.Context, tenantID, itemID uint) (*model.MenuItem, error)
}

type gormCatalog struct {
	db *gorm.DB
}

// NewGormCatalog creates a catalog backed by the shared database.
func NewGormCatalog(db *gorm.DB) Catalog {
	return &gormCatalog{db: db}
}

func (c *gormCatalog) Lookup(ctx context.Context, tenantID, itemID uint) (*model.MenuItem, error) {
	var item model.MenuItem
	err := c.db.WithContext(ctx).
		First(&item, "id = ? AND tenant_id = ?", itemID, tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownItem
	}
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, ErrItemUnavailable
	}
	return &item, nil
}
