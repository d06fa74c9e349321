package camera

import "errors"

var (
	// ErrUnavailable is returned when no capture API or device exists.
	ErrUnavailable = errors.New("camera: unavailable")

	// ErrPermissionDenied is returned when the device exists but cannot be opened.
	ErrPermissionDenied = errors.New("camera: permission denied")

	// ErrClosed is returned when reading from a closed source.
	ErrClosed = errors.New("camera: source closed")

	// ErrInvalidConfig is returned when a configuration update fails validation.
	ErrInvalidConfig = errors.New("camera: invalid config")

	// ErrNoFrame is returned when the device produced an empty frame.
	ErrNoFrame = errors.New("camera: empty frame")
)

// Terminal reports whether err means the camera will not work this session.
func Terminal(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrPermissionDenied)
}
