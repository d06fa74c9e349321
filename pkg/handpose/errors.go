package handpose

import "errors"

var (
	// ErrModelNotFound is returned when the model file does not exist.
	ErrModelNotFound = errors.New("handpose: model file not found")

	// ErrModelLoad is returned when the model exists but cannot be initialised.
	ErrModelLoad = errors.New("handpose: failed to load model")

	// ErrBackendMissing is returned when the runtime has no usable inference backend.
	ErrBackendMissing = errors.New("handpose: inference backend missing")

	// ErrEmptyFrame is returned for frames without pixels.
	ErrEmptyFrame = errors.New("handpose: empty frame")

	// ErrBadTensor is returned when the model output has an unexpected shape.
	ErrBadTensor = errors.New("handpose: unexpected output tensor")
)
