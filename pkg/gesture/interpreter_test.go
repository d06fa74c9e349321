package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teslashibe/grandtree/pkg/handpose"
)

func TestInterpreter_NoHand(t *testing.T) {
	in := NewInterpreter(DefaultConfig(), true)
	u := in.Step(nil, 320, 240, t0)
	assert.Equal(t, EvNoHand, u.Event)
	assert.Equal(t, MsgNoHand, u.Message)
	assert.False(t, u.Sample.Detected)
}

func TestInterpreter_OpenAndClosed(t *testing.T) {
	in := NewInterpreter(DefaultConfig(), true)

	u := in.Step([]handpose.Hand{handpose.SyntheticHand(160, 120, 120)}, 320, 240, t0)
	assert.Equal(t, EvHandOpen, u.Event)
	assert.Equal(t, MsgOpen, u.Message)
	assert.InDelta(t, 0, u.Offset.X, 1e-6)

	u = in.Step([]handpose.Hand{handpose.SyntheticHand(160, 120, 40)}, 320, 240, t0.Add(time.Second))
	assert.Equal(t, EvHandClosed, u.Event)
	assert.Equal(t, MsgClosed, u.Message)
}

func TestInterpreter_UsesFirstHand(t *testing.T) {
	in := NewInterpreter(DefaultConfig(), true)
	hands := []handpose.Hand{handpose.SyntheticHand(160, 120, 40), handpose.SyntheticHand(160, 120, 200)}
	assert.Equal(t, EvHandClosed, in.Step(hands, 320, 240, t0).Event)
}

func TestInterpreter_SwipeMessage(t *testing.T) {
	in := NewInterpreter(DefaultConfig(), false)
	open := func(x float64) []handpose.Hand { return []handpose.Hand{handpose.SyntheticHand(x, 120, 120)} }

	in.Step(open(160), 320, 240, t0)
	u := in.Step(open(200), 320, 240, t0.Add(100*time.Millisecond))
	assert.Equal(t, Next, u.Swipe)
	assert.Equal(t, MsgSwipeRight, u.Message)
	assert.Equal(t, EvHandOpen, u.Event)

	u = in.Step(open(100), 320, 240, t0.Add(800*time.Millisecond))
	assert.Equal(t, Prev, u.Swipe)
	assert.Equal(t, MsgSwipeLeft, u.Message)
}

func TestInterpreter_LostHandResetsSwipe(t *testing.T) {
	in := NewInterpreter(DefaultConfig(), false)
	in.Step([]handpose.Hand{handpose.SyntheticHand(10, 120, 120)}, 320, 240, t0)
	in.Step(nil, 320, 240, t0.Add(100*time.Millisecond))
	u := in.Step([]handpose.Hand{handpose.SyntheticHand(300, 120, 120)}, 320, 240, t0.Add(200*time.Millisecond))
	assert.Equal(t, None, u.Swipe)
}
