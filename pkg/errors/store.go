package errors

import (
	"database/sql/driver"
	"errors"
	"net"
)

// StoreError classifies a database failure. Transport-level failures (dead
// connections, unreachable host) surface as ErrStoreUnavailable so callers
// can tell an outage from a query bug; everything else maps to ErrInternal.
func StoreError(err error, message string) *Error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return Wrap(err, ErrStoreUnavailable.Code, ErrStoreUnavailable.Status, message)
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, message)
}
