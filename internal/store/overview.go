package store

import (
	"context"

	"gorm.io/gorm"

	"qrdine-backend/internal/model"
	"qrdine-backend/internal/status"
)

// orderAgg is one row of the per-session counter aggregation.
type orderAgg struct {
	SessionID   uint
	OrdersCount int
	UnpaidCount int
	PaidCount   int
	ReadyOrders int
}

const orderAggSelect = "session_id, COUNT(*) AS orders_count, " +
	"SUM(CASE WHEN payment_status <> ? THEN 1 ELSE 0 END) AS unpaid_count, " +
	"SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END) AS paid_count, " +
	"MAX(CASE WHEN status IN (?, ?) THEN 1 ELSE 0 END) AS ready_orders"

// TableOverview builds one classification snapshot per table from three
// queries total: the tables, the active sessions, and one counter
// aggregation over orders (plus one over completed items). The dashboard
// therefore stays O(tables) regardless of order volume.
func (s *gormStore) TableOverview(ctx context.Context, tenantID uint) ([]TableState, error) {
	db := s.db.WithContext(ctx)

	var tables []model.Table
	if err := db.Where("tenant_id = ?", tenantID).Order("label").Find(&tables).Error; err != nil {
		return nil, wrapDBError(err)
	}

	// The sessions table is the truth for liveness; the pointer on the
	// table row may be stale and is ignored here.
	var sessions []model.DiningSession
	if err := db.Where("tenant_id = ? AND status = ?", tenantID, model.SessionActive).
		Find(&sessions).Error; err != nil {
		return nil, wrapDBError(err)
	}
	activeByTable := make(map[uint]uint, len(sessions))
	for _, sess := range sessions {
		activeByTable[sess.TableID] = sess.ID
	}

	var aggs []orderAgg
	if len(sessions) > 0 {
		sessionIDs := make([]uint, 0, len(sessions))
		for _, sess := range sessions {
			sessionIDs = append(sessionIDs, sess.ID)
		}

		if err := db.Model(&model.Order{}).
			Select(orderAggSelect,
				model.PaymentPaid, model.PaymentPaid, model.OrderReady, model.OrderCompleted).
			Where("tenant_id = ? AND session_id IN ?", tenantID, sessionIDs).
			Group("session_id").
			Scan(&aggs).Error; err != nil {
			return nil, wrapDBError(err)
		}

		itemReady, err := completedItemSessions(db, tenantID, sessionIDs)
		if err != nil {
			return nil, wrapDBError(err)
		}
		for i := range aggs {
			if itemReady[aggs[i].SessionID] {
				aggs[i].ReadyOrders = 1
			}
		}
	}

	aggMap := make(map[uint]orderAgg, len(aggs))
	for _, a := range aggs {
		aggMap[a.SessionID] = a
	}

	states := make([]TableState, 0, len(tables))
	for _, table := range tables {
		snap := status.Snapshot{}
		if sessID, ok := activeByTable[table.ID]; ok {
			snap.Active = true
			if a, ok := aggMap[sessID]; ok {
				snap.OrdersCount = a.OrdersCount
				snap.UnpaidCount = a.UnpaidCount
				snap.PaidCount = a.PaidCount
				snap.AnyReady = a.ReadyOrders > 0
			}
		}
		states = append(states, TableState{Table: table, Snapshot: snap})
	}
	return states, nil
}

// completedItemSessions returns the set of sessions that have at least one
// COMPLETED line item, which counts as "any ready" even when no order has
// reached READY.
func completedItemSessions(db *gorm.DB, tenantID uint, sessionIDs []uint) (map[uint]bool, error) {
	type row struct{ SessionID uint }
	var rows []row
	err := db.Model(&model.OrderItem{}).
		Select("orders.session_id AS session_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.tenant_id = ? AND orders.session_id IN ? AND order_items.status = ?",
			tenantID, sessionIDs, model.ItemCompleted).
		Group("orders.session_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(rows))
	for _, r := range rows {
		out[r.SessionID] = true
	}
	return out, nil
}

// sessionCounters builds the snapshot for a single session, used for the
// color hint returned by order placement. Active is left for the caller.
func sessionCounters(tx *gorm.DB, sessionID uint) (status.Snapshot, error) {
	var agg orderAgg
	err := tx.Model(&model.Order{}).
		Select(orderAggSelect,
			model.PaymentPaid, model.PaymentPaid, model.OrderReady, model.OrderCompleted).
		Where("session_id = ?", sessionID).
		Group("session_id").
		Scan(&agg).Error
	if err != nil {
		return status.Snapshot{}, err
	}

	snap := status.Snapshot{
		OrdersCount: agg.OrdersCount,
		UnpaidCount: agg.UnpaidCount,
		PaidCount:   agg.PaidCount,
		AnyReady:    agg.ReadyOrders > 0,
	}
	if !snap.AnyReady {
		var n int64
		err := tx.Model(&model.OrderItem{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.session_id = ? AND order_items.status = ?", sessionID, model.ItemCompleted).
			Count(&n).Error
		if err != nil {
			return status.Snapshot{}, err
		}
		snap.AnyReady = n > 0
	}
	return snap, nil
}
