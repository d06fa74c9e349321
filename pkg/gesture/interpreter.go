package gesture

import (
	"time"

	"github.com/teslashibe/grandtree/pkg/handpose"
	"github.com/teslashibe/grandtree/pkg/state"
)

// Update is everything one processed frame asks of the interaction state.
type Update struct {
	Event   Event
	Sample  Sample
	Offset  state.Offset
	Swipe   Direction
	Message string
}

// Interpreter combines classification and swipe detection. It holds the
// only memory carried between frames: the previous wrist X, the cooldown
// and the hysteresis state.
type Interpreter struct {
	cls   *Classifier
	swipe *SwipeDetector
}

// NewInterpreter returns an interpreter for a feed that is mirrored or not.
func NewInterpreter(cfg Config, mirrored bool) *Interpreter {
	return &Interpreter{
		cls:   NewClassifier(cfg, mirrored),
		swipe: NewSwipeDetector(cfg.SwipeThreshold, cfg.SwipeCooldown),
	}
}

// Step interprets the estimator output for one width x height frame.
// Only the first hand is used.
func (in *Interpreter) Step(hands []handpose.Hand, width, height int, at time.Time) Update {
	hand, ok := handpose.First(hands)
	if !ok {
		return in.lost(at)
	}
	s := in.cls.Classify(hand, width, height, at)
	if !s.Detected {
		return in.lost(at)
	}

	u := Update{Sample: s, Offset: in.cls.Offset(s), Event: EvHandClosed, Message: MsgClosed}
	if s.Open {
		u.Event, u.Message = EvHandOpen, MsgOpen
	}

	u.Swipe = in.swipe.Observe(s.X, s.Open, at)
	switch u.Swipe {
	case Next:
		u.Message = MsgSwipeRight
	case Prev:
		u.Message = MsgSwipeLeft
	}
	return u
}

func (in *Interpreter) lost(at time.Time) Update {
	in.swipe.Reset()
	return Update{Event: EvNoHand, Sample: Sample{At: at}, Message: MsgNoHand}
}
