package appliance

import "errors"

var (
	// ErrUnsupportedDeviceType is returned when no profile is registered
	// for a type id.
	ErrUnsupportedDeviceType = errors.New("unsupported device type")

	// ErrUnknownCommand is returned when a command name is outside the
	// device's profile.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrValueOutOfRange is returned when a raw service value falls
	// outside the service's declared domain or enumeration table.
	ErrValueOutOfRange = errors.New("value out of range")
)
