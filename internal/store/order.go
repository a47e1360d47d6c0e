package store

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"qrdine-backend/internal/model"
)

// PlaceOrder records an order against the table's live session. Lines that
// fail validation or price resolution are skipped and reported back as
// warnings; the order itself still succeeds with whatever was insertable.
func (s *gormStore) PlaceOrder(ctx context.Context, tenantID uint, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if in.TableLabel == "" {
		return nil, ErrInvalidArgument
	}

	res := &PlaceOrderResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := resolveByLabel(tx, tenantID, in.TableLabel)
		if err != nil {
			return err
		}

		var session *model.DiningSession
		if in.SessionID != nil {
			session, err = validateSession(tx, tenantID, table.ID, *in.SessionID)
		} else {
			session, _, err = ensureActiveSession(tx, tenantID, table.ID)
		}
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		items, failures, sum := s.buildItems(ctx, tenantID, in.Lines)

		total := sum
		if in.Total > 0 {
			// Trust the caller's pre-computed total when present.
			total = in.Total
		}

		prep := s.defaultPrep
		if in.PrepMinutes > 0 {
			prep = time.Duration(in.PrepMinutes) * time.Minute
		}

		payment := model.PaymentUnpaid
		if in.PaidUpfront() {
			payment = model.PaymentPaid
		}

		order := model.Order{
			TenantID:         tenantID,
			SessionID:        session.ID,
			Status:           model.OrderPlaced,
			PaymentStatus:    payment,
			TotalAmount:      total,
			PlacedAt:         now,
			EstimatedReadyAt: now.Add(prep),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		if len(items) > 0 {
			for i := range items {
				items[i].OrderID = order.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
			order.Items = items
		}

		if payment == model.PaymentPaid {
			// Mirror the intent on the session aggregate. Classification
			// never reads this field; order rows stay the truth.
			if err := tx.Model(&model.DiningSession{}).
				Where("id = ?", session.ID).
				Update("payment_status", model.PaymentPaid).Error; err != nil {
				return err
			}
			session.PaymentStatus = model.PaymentPaid
		}

		snap, err := sessionCounters(tx, session.ID)
		if err != nil {
			return err
		}
		snap.Active = true

		res.Order = &order
		res.Session = session
		res.Table = table
		res.FailedItems = failures
		res.Snapshot = snap
		return nil
	})
	if err != nil {
		return nil, wrapDBError(err)
	}
	return res, nil
}

// buildItems validates lines and resolves missing unit prices from the
// catalog. Reads go through the catalog's own connection; item rows are
// written later by the caller's transaction.
func (s *gormStore) buildItems(ctx context.Context, tenantID uint, lines []OrderLine) ([]model.OrderItem, []ItemFailure, float64) {
	var items []model.OrderItem
	var failures []ItemFailure
	var sum float64

	for _, line := range lines {
		if line.Quantity <= 0 {
			failures = append(failures, ItemFailure{MenuItemID: line.MenuItemID, Reason: "quantity must be positive"})
			continue
		}

		price := line.UnitPrice
		if price <= 0 {
			item, err := s.catalog.Lookup(ctx, tenantID, line.MenuItemID)
			if err != nil {
				log.Printf("skipping order line for menu item %d: %v", line.MenuItemID, err)
				failures = append(failures, ItemFailure{MenuItemID: line.MenuItemID, Reason: err.Error()})
				continue
			}
			price = item.Price
		}

		sum += float64(line.Quantity) * price
		items = append(items, model.OrderItem{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
			UnitPrice:  price,
			Status:     model.ItemQueued,
		})
	}

	return items, failures, sum
}

// UpdateOrderStatus sets the order's preparation status. The first
// transition into READY or COMPLETED stamps actual_ready_at; the stamp is
// written at most once.
func (s *gormStore) UpdateOrderStatus(ctx context.Context, tenantID, orderID uint, newStatus model.OrderStatus) (*OrderStatusResult, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidArgument
	}

	res := &OrderStatusResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		err := tx.First(&order, "id = ? AND tenant_id = ?", orderID, tenantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		updates := map[string]any{"status": newStatus}
		if newStatus.Ready() && order.ActualReadyAt == nil {
			now := time.Now().UTC()
			updates["actual_ready_at"] = now
			order.ActualReadyAt = &now
			res.BecameReady = true
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}
		order.Status = newStatus

		var session model.DiningSession
		if err := tx.First(&session, "id = ?", order.SessionID).Error; err != nil {
			return err
		}

		res.Order = &order
		res.TableID = session.TableID
		return nil
	})
	if err != nil {
		return nil, wrapDBError(err)
	}
	return res, nil
}

// UpdateItemStatus sets a line item's preparation status. Cross-tenant ids
// fail closed as not found.
func (s *gormStore) UpdateItemStatus(ctx context.Context, tenantID, itemID uint, newStatus model.ItemStatus) (*model.OrderItem, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidArgument
	}

	var item model.OrderItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("order_items.id = ? AND orders.tenant_id = ?", itemID, tenantID).
			First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&item).Update("status", newStatus).Error; err != nil {
			return err
		}
		item.Status = newStatus
		return nil
	})
	if err != nil {
		return nil, wrapDBError(err)
	}
	return &item, nil
}

// UpdatePaymentStatus sets the order's payment status. It deliberately does
// not cascade to the session aggregate; session-level "all paid" is always
// derived from the order rows.
func (s *gormStore) UpdatePaymentStatus(ctx context.Context, tenantID, orderID uint, newStatus model.PaymentStatus) (*model.Order, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidArgument
	}

	var order model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&order, "id = ? AND tenant_id = ?", orderID, tenantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&order).Update("payment_status", newStatus).Error; err != nil {
			return err
		}
		order.PaymentStatus = newStatus
		return nil
	})
	if err != nil {
		return nil, wrapDBError(err)
	}
	return &order, nil
}
