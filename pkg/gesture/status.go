package gesture

import (
	"errors"
	"fmt"
)

// Status is the state of gesture control.
type Status int

const (
	CameraOff Status = iota
	LoadingModel
	ReadyNoHand
	ReadyHandOpen
	ReadyHandClosed
	// Unavailable is terminal for the session: the camera is missing or
	// permission was denied. It is left only by disabling the camera.
	Unavailable
	// ModelFailed means the model did not load. UI mode toggles still work.
	ModelFailed
)

var statusNames = map[Status]string{
	CameraOff:       "CAMERA_OFF",
	LoadingModel:    "LOADING_MODEL",
	ReadyNoHand:     "READY_NO_HAND",
	ReadyHandOpen:   "READY_HAND_OPEN",
	ReadyHandClosed: "READY_HAND_CLOSED",
	Unavailable:     "UNAVAILABLE",
	ModelFailed:     "MODEL_FAILED",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText encodes the status name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Ready reports whether detection is running.
func (s Status) Ready() bool {
	return s == ReadyNoHand || s == ReadyHandOpen || s == ReadyHandClosed
}

// Status lines shown to the user.
const (
	MsgLoading        = "Loading AI Model..."
	MsgReady          = "Ready. Show hand."
	MsgOpen           = "Detected: OPEN (Unleashed)"
	MsgClosed         = "Detected: CLOSED (Formed)"
	MsgSwipeRight     = ">> SWIPE RIGHT >>"
	MsgSwipeLeft      = "<< SWIPE LEFT <<"
	MsgNoHand         = "No hand detected"
	MsgModelError     = "Error loading model."
	MsgBackendMissing = "Handpose library missing."
	MsgDenied         = "Webcam denied."
	MsgUnavailable    = "Camera unavailable."
)

// Event drives the status machine.
type Event int

const (
	EvEnable Event = iota
	EvLoaded
	EvHandOpen
	EvHandClosed
	EvNoHand
	EvCameraFailed
	EvModelFailed
	EvDisable
)

var eventNames = [...]string{"enable", "loaded", "hand_open", "hand_closed", "no_hand", "camera_failed", "model_failed", "disable"}

func (e Event) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

// ErrTransition is returned for events that do not apply in the current status.
var ErrTransition = errors.New("gesture: invalid transition")

// Transition returns the status after ev. Disabling is valid from anywhere.
func Transition(s Status, ev Event) (Status, error) {
	if ev == EvDisable {
		return CameraOff, nil
	}
	switch s {
	case CameraOff:
		if ev == EvEnable {
			return LoadingModel, nil
		}
	case LoadingModel:
		switch ev {
		case EvLoaded:
			return ReadyNoHand, nil
		case EvCameraFailed:
			return Unavailable, nil
		case EvModelFailed:
			return ModelFailed, nil
		}
	case ReadyNoHand, ReadyHandOpen, ReadyHandClosed:
		switch ev {
		case EvHandOpen:
			return ReadyHandOpen, nil
		case EvHandClosed:
			return ReadyHandClosed, nil
		case EvNoHand:
			return ReadyNoHand, nil
		case EvCameraFailed:
			return Unavailable, nil
		}
	}
	return s, fmt.Errorf("%w: %s on %s", ErrTransition, ev, s)
}
