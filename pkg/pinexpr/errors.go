package pinexpr

import "errors"

var (
	errUnknownPin          = errors.New("UnknownPin")
	errUnknownInterconnect = errors.New("UnknownInterconnect")
)

// IsUnknownPin reports whether err is (or wraps) an UnknownPin failure.
func IsUnknownPin(err error) bool { return errors.Is(err, errUnknownPin) }

// IsUnknownInterconnect reports whether err is (or wraps) an
// UnknownInterconnect failure.
func IsUnknownInterconnect(err error) bool { return errors.Is(err, errUnknownInterconnect) }
