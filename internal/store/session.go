package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"qrdine-backend/internal/model"
)

// EnsureActiveSession returns the table's live session, creating one when
// no reusable active session exists. The second return value is true when
// a session was created. Stale pointers (table pointing at a closed or
// deleted session) are treated the same as no pointer; a live session the
// pointer lost track of is adopted rather than duplicated. The pointer is
// only ever moved by compare-and-swap, so racing creators cannot leave two
// active sessions behind: the loser discards its insert and adopts the
// winner.
func (s *gormStore) EnsureActiveSession(ctx context.Context, tenantID, tableID uint) (*model.DiningSession, bool, error) {
	var session *model.DiningSession
	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, created, err = ensureActiveSession(tx, tenantID, tableID)
		return err
	})
	if err != nil {
		return nil, false, wrapDBError(err)
	}
	return session, created, nil
}

func ensureActiveSession(tx *gorm.DB, tenantID, tableID uint) (*model.DiningSession, bool, error) {
	for attempt := 0; attempt < 3; attempt++ {
		var table model.Table
		err := tx.First(&table, "id = ? AND tenant_id = ?", tableID, tenantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		if err != nil {
			return nil, false, err
		}

		if table.CurrentSessionID != nil {
			var existing model.DiningSession
			err := tx.First(&existing, "id = ? AND tenant_id = ?", *table.CurrentSessionID, tenantID).Error
			if err == nil && existing.Status == model.SessionActive {
				return &existing, false, nil
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, err
			}
			// Pointer is stale; fall through.
		}

		// The sessions table is the truth: a live session may exist even
		// when the pointer was lost. Adopt it and repair the pointer.
		var live model.DiningSession
		err = tx.First(&live, "table_id = ? AND tenant_id = ? AND status = ?",
			table.ID, tenantID, model.SessionActive).Error
		if err == nil {
			swapped, err := casSessionPointer(tx, table.ID, table.CurrentSessionID, &live.ID)
			if err != nil {
				return nil, false, err
			}
			if !swapped {
				continue // pointer moved underneath us, re-read
			}
			return &live, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}

		now := time.Now().UTC()
		session := model.DiningSession{
			TenantID:      tenantID,
			TableID:       table.ID,
			Status:        model.SessionActive,
			PaymentStatus: model.PaymentUnpaid,
			StartedAt:     now,
		}
		if err := tx.Create(&session).Error; err != nil {
			return nil, false, err
		}

		swapped, err := casSessionPointer(tx, table.ID, table.CurrentSessionID, &session.ID)
		if err != nil {
			return nil, false, err
		}
		if swapped {
			return &session, true, nil
		}

		// A racing creator won the pointer. Discard our session and adopt
		// the winner on the next pass.
		if err := tx.Delete(&model.DiningSession{}, session.ID).Error; err != nil {
			return nil, false, err
		}
	}
	return nil, false, ErrUnavailable
}

// casSessionPointer swaps tables.current_session_id from the observed value
// to target, treating nil as SQL NULL on both sides. It reports whether the
// row matched; a miss means another writer changed the pointer first.
func casSessionPointer(tx *gorm.DB, tableID uint, observed, target *uint) (bool, error) {
	q := tx.Model(&model.Table{}).Where("id = ?", tableID)
	if observed == nil {
		q = q.Where("current_session_id IS NULL")
	} else {
		q = q.Where("current_session_id = ?", *observed)
	}
	res := q.Update("current_session_id", target)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ValidateSession re-checks a client-provided session id. A provided id is
// never trusted blindly: it may reference a closed session, another table,
// or another tenant entirely.
func (s *gormStore) ValidateSession(ctx context.Context, tenantID, tableID, sessionID uint) (*model.DiningSession, error) {
	var session *model.DiningSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = validateSession(tx, tenantID, tableID, sessionID)
		return err
	})
	if err != nil {
		return nil, wrapDBError(err)
	}
	return session, nil
}

func validateSession(tx *gorm.DB, tenantID, tableID, sessionID uint) (*model.DiningSession, error) {
	var session model.DiningSession
	err := tx.First(&session, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.TenantID != tenantID || session.TableID != tableID || session.Status != model.SessionActive {
		return nil, ErrForbidden
	}
	return &session, nil
}

// CloseSession marks the session completed and stamps ended_at. The
// table's current_session_id is cleared only if it still points at this
// session, so a newer session created while the close was in flight keeps
// its pointer. Closing an already-closed session succeeds without change.
func (s *gormStore) CloseSession(ctx context.Context, tenantID, sessionID uint, tableLabel string) (*model.DiningSession, error) {
	var session model.DiningSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&session, "id = ? AND tenant_id = ?", sessionID, tenantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if tableLabel != "" {
			var table model.Table
			if err := tx.First(&table, "id = ?", session.TableID).Error; err != nil {
				return err
			}
			if table.Label != tableLabel {
				return ErrForbidden
			}
		}

		if session.Status != model.SessionActive {
			return nil // already closed, idempotent
		}

		now := time.Now().UTC()
		if err := tx.Model(&session).Updates(map[string]any{
			"status":   model.SessionCompleted,
			"ended_at": now,
		}).Error; err != nil {
			return err
		}
		session.Status = model.SessionCompleted
		session.EndedAt = &now

		// Compare-and-clear: only drop the pointer if it is still ours.
		_, err = casSessionPointer(tx, session.TableID, &session.ID, nil)
		return err
	})
	if err != nil {
		return nil, wrapDBError(err)
	}
	return &session, nil
}
