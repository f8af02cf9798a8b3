package cnst

import "errors"

var (
	// ErrNotRunning is returned when an event is handed to a dispatcher whose loop has stopped
	ErrNotRunning = errors.New("dispatcher is not running")
	// ErrBusClosed is returned when publishing on or subscribing to a closed bus
	ErrBusClosed = errors.New("bus is closed")
	// ErrUnsupportedBackend is returned when a registry or bus type is unknown
	ErrUnsupportedBackend = errors.New("unsupported backend type")
)
