package store

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qrdine-backend/internal/model"
)

// ResolveTable maps a selector to a durable table record within the tenant.
// A label selector is an idempotent insert-or-fetch; a code selector is a
// direct lookup. The last-seen stamp is best effort and never fails the call.
func (s *gormStore) ResolveTable(ctx context.Context, tenantID uint, sel TableSelector) (*model.Table, error) {
	if sel.Empty() {
		return nil, ErrInvalidArgument
	}

	var table *model.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if sel.Code != "" {
			table, err = resolveByCode(tx, tenantID, sel.Code)
		} else {
			table, err = resolveByLabel(tx, tenantID, sel.Label)
		}
		return err
	})
	if err != nil {
		return nil, wrapDBError(err)
	}

	// Observability only: a failed stamp must not surface to the caller.
	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&model.Table{}).
		Where("id = ?", table.ID).
		UpdateColumn("last_seen_at", now).Error; err != nil {
		log.Printf("could not stamp last_seen_at for table %d: %v", table.ID, err)
	} else {
		table.LastSeenAt = &now
	}

	return table, nil
}

func resolveByCode(tx *gorm.DB, tenantID uint, code string) (*model.Table, error) {
	var table model.Table
	err := tx.First(&table, "tenant_id = ? AND code_id = ?", tenantID, code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// resolveByLabel is the idempotent insert-or-fetch keyed by (tenant, label).
// The ON CONFLICT DO NOTHING keeps a concurrent create from failing the
// transaction; the loser simply re-fetches the winner's row.
func resolveByLabel(tx *gorm.DB, tenantID uint, label string) (*model.Table, error) {
	var table model.Table
	err := tx.First(&table, "tenant_id = ? AND label = ?", tenantID, label).Error
	if err == nil {
		return &table, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	candidate := model.Table{TenantID: tenantID, Label: label}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "label"}},
		DoNothing: true,
	}).Create(&candidate).Error; err != nil {
		return nil, err
	}

	if err := tx.First(&table, "tenant_id = ? AND label = ?", tenantID, label).Error; err != nil {
		return nil, err
	}
	return &table, nil
}
