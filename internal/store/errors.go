package store

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"gorm.io/gorm"
)

// Sentinel errors returned by store operations. The API layer maps these
// to HTTP statuses in one place; everything else is treated as internal.
var (
	ErrNotFound        = errors.New("record not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnavailable     = errors.New("persistence unavailable")
)

// wrapDBError classifies connection-level failures as ErrUnavailable so
// callers see a retryable condition instead of a generic internal error.
// Domain sentinels and everything else pass through untouched.
func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, gorm.ErrInvalidDB) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
