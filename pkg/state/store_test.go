package state

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCycle(t *testing.T) {
	tests := []struct {
		name                string
		current, dir, total int
		want                int
	}{
		{"back from first wraps", 0, -1, 4, 3},
		{"forward from last wraps", 3, 1, 4, 0},
		{"forward", 1, 1, 4, 2},
		{"back", 2, -1, 4, 1},
		{"large step", 1, 9, 4, 2},
		{"large negative step", 1, -9, 4, 0},
		{"empty collection", 2, 1, 0, 0},
		{"single photo", 0, -1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cycle(tt.current, tt.dir, tt.total); got != tt.want {
				t.Errorf("Cycle(%d, %d, %d) = %d, want %d", tt.current, tt.dir, tt.total, got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"chaos": Chaos, "FORMED": Formed, " Formed ": Formed} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("tree"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestNewStore_Defaults(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()

	if snap.Mode != Formed {
		t.Errorf("mode = %s, want FORMED", snap.Mode)
	}
	if len(snap.Photos) != 4 {
		t.Errorf("photos = %d, want 4", len(snap.Photos))
	}
	if snap.Current != 0 || snap.CameraEnabled {
		t.Errorf("unexpected initial state %+v", snap)
	}
}

func TestStore_CyclePhoto(t *testing.T) {
	s := NewStore()

	idx, err := s.CyclePhoto(-1)
	if err != nil || idx != 3 {
		t.Fatalf("CyclePhoto(-1) = %d, %v; want 3", idx, err)
	}
	idx, _ = s.CyclePhoto(1)
	if idx != 0 {
		t.Errorf("CyclePhoto(+1) = %d, want 0", idx)
	}

	empty := NewStore(WithPhotos(nil))
	if _, err := empty.CyclePhoto(1); !errors.Is(err, ErrNoPhotos) {
		t.Errorf("expected ErrNoPhotos, got %v", err)
	}
	if got := empty.Snapshot().Current; got != 0 {
		t.Errorf("empty collection index = %d, want 0", got)
	}
}

func TestStore_AddPhotosPrepends(t *testing.T) {
	s := NewStore(WithPhotos([]Photo{{ID: "old"}}))
	s.AddPhotos(Photo{ID: "a"}, Photo{ID: "b"})
	s.AddPhotos(Photo{ID: "c"})

	snap := s.Snapshot()
	want := []string{"c", "a", "b", "old"}
	if len(snap.Photos) != len(want) {
		t.Fatalf("got %d photos, want %d", len(snap.Photos), len(want))
	}
	for i, id := range want {
		if snap.Photos[i].ID != id {
			t.Errorf("photo[%d] = %s, want %s", i, snap.Photos[i].ID, id)
		}
	}
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()
	snap.Photos[0].URI = "mutated"

	if s.Snapshot().Photos[0].URI == "mutated" {
		t.Error("snapshot shares backing array with the store")
	}
}

func TestStore_Selection(t *testing.T) {
	s := NewStore(WithPhotos([]Photo{{ID: "x"}, {ID: "y"}}))

	if err := s.SelectPhoto("y"); err != nil {
		t.Fatalf("SelectPhoto: %v", err)
	}
	if got := s.Snapshot().Selected; got != "y" {
		t.Errorf("selected = %q, want y", got)
	}
	if err := s.SelectPhoto("nope"); !errors.Is(err, ErrUnknownPhoto) {
		t.Errorf("expected ErrUnknownPhoto, got %v", err)
	}
	s.ClearSelection()
	if got := s.Snapshot().Selected; got != "" {
		t.Errorf("selected = %q after clear", got)
	}
}

func TestStore_ModeLastWriteWins(t *testing.T) {
	s := NewStore()
	t0 := time.Unix(1000, 0)

	if !s.ApplyMode(Chaos, SourceGesture, t0.Add(2*time.Second)) {
		t.Fatal("first write should apply")
	}
	// A UI toggle stamped earlier arrives late and loses.
	if s.ApplyMode(Formed, SourceUI, t0.Add(time.Second)) {
		t.Error("stale write should be rejected")
	}
	if got := s.Mode(); got != Chaos {
		t.Errorf("mode = %s, want CHAOS", got)
	}

	if !s.ApplyMode(Formed, SourceUI, t0.Add(3*time.Second)) {
		t.Error("newer write should apply")
	}
	snap := s.Snapshot()
	if snap.Mode != Formed || snap.ModeSource != SourceUI {
		t.Errorf("got %s from %s, want FORMED from ui", snap.Mode, snap.ModeSource)
	}
}

func TestStore_ConcurrentModeWrites(t *testing.T) {
	s := NewStore()
	base := time.Unix(2000, 0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, src := Chaos, SourceGesture
			if i%2 == 0 {
				m, src = Formed, SourceUI
			}
			s.ApplyMode(m, src, base.Add(time.Duration(i)*time.Millisecond))
		}(i)
	}
	wg.Wait()

	// i = 99 carries the newest stamp.
	snap := s.Snapshot()
	if snap.Mode != Chaos || !snap.ModeAt.Equal(base.Add(99*time.Millisecond)) {
		t.Errorf("got %s at %v, want CHAOS at newest stamp", snap.Mode, snap.ModeAt)
	}
}

func TestStore_CameraDisableRecentres(t *testing.T) {
	s := NewStore()
	s.SetCameraEnabled(true)
	s.SetCameraOffset(3, -1)
	if got := s.Snapshot().CameraOffset; got != (Offset{X: 3, Y: -1}) {
		t.Fatalf("offset = %+v", got)
	}
	s.SetCameraEnabled(false)
	if got := s.Snapshot().CameraOffset; got != (Offset{}) {
		t.Errorf("offset = %+v after disable, want zero", got)
	}
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()

	s.SetGestureStatus("one")
	s.SetGestureStatus("two")

	select {
	case snap := <-ch:
		if snap.GestureStatus != "two" {
			t.Errorf("status = %q, want the newest", snap.GestureStatus)
		}
		if snap.Revision != 2 {
			t.Errorf("revision = %d, want 2", snap.Revision)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	// Unchanged writes do not notify.
	s.SetGestureStatus("two")
	select {
	case snap := <-ch:
		t.Errorf("unexpected snapshot %+v", snap)
	default:
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}
	s.SetGestureStatus("three")
}
