// Package state holds the process-wide interaction state shared by the UI,
// the gesture controller and the render loop.
//
// All mutation goes through Store command methods. Readers take a Snapshot,
// which is a consistent copy of every field at one revision.
package state

import (
	"slices"
	"sync"
	"time"
)

// Source names who issued a command.
type Source string

const (
	SourceUI      Source = "ui"
	SourceGesture Source = "gesture"
	SourceSystem  Source = "system"
)

// Offset is the camera pan/tilt requested by the hand position.
type Offset struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Snapshot is a point-in-time copy of the store.
type Snapshot struct {
	Revision      uint64    `json:"revision"`
	Mode          Mode      `json:"mode"`
	ModeSource    Source    `json:"modeSource"`
	ModeAt        time.Time `json:"modeAt"`
	CameraOffset  Offset    `json:"cameraOffset"`
	CameraEnabled bool      `json:"cameraEnabled"`
	Photos        []Photo   `json:"photos"`
	Current       int       `json:"currentPhotoIndex"`
	Selected      string    `json:"selectedPhoto,omitempty"`
	GestureStatus string    `json:"gestureStatus"`
}

// CurrentPhoto returns the photo under the browse cursor.
func (s Snapshot) CurrentPhoto() (Photo, bool) {
	if s.Current < 0 || s.Current >= len(s.Photos) {
		return Photo{}, false
	}
	return s.Photos[s.Current], true
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for command timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithPhotos replaces the default placeholder collection.
func WithPhotos(photos []Photo) Option {
	return func(s *Store) { s.snap.Photos = slices.Clone(photos) }
}

// WithMode sets the starting mode.
func WithMode(m Mode) Option {
	return func(s *Store) { s.snap.Mode = m }
}

// Store is the explicit, injectable interaction state container.
//
// Every field follows last-write-wins. Mode writes carry a timestamp so a
// late-arriving gesture classification cannot override a newer UI toggle.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time

	subMu  sync.Mutex
	subs   map[int]chan Snapshot
	nextID int
}

// NewStore creates a store in FORMED mode with the default photos.
func NewStore(opts ...Option) *Store {
	s := &Store{
		snap: Snapshot{
			Mode:       Formed,
			ModeSource: SourceSystem,
			Photos:     DefaultPhotos(),
		},
		now:  time.Now,
		subs: make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Mode returns the current target mode.
func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Mode
}

// SetMode records mode from src at the current time.
func (s *Store) SetMode(m Mode, src Source) {
	s.ApplyMode(m, src, s.now())
}

// ApplyMode records mode if at is not older than the last mode write.
// It reports whether the write took effect.
func (s *Store) ApplyMode(m Mode, src Source, at time.Time) bool {
	if !m.Valid() {
		return false
	}
	accepted := false
	s.update(func(snap *Snapshot) bool {
		if at.Before(snap.ModeAt) {
			return false
		}
		accepted = true
		changed := snap.Mode != m
		snap.Mode, snap.ModeSource, snap.ModeAt = m, src, at
		return changed
	})
	return accepted
}

// SetCameraOffset stores the requested camera offset.
func (s *Store) SetCameraOffset(x, y float32) {
	s.update(func(snap *Snapshot) bool {
		o := Offset{X: x, Y: y}
		if snap.CameraOffset == o {
			return false
		}
		snap.CameraOffset = o
		return true
	})
}

// SetCameraEnabled toggles the camera flag. Disabling also recentres the camera.
func (s *Store) SetCameraEnabled(enabled bool) {
	s.update(func(snap *Snapshot) bool {
		if snap.CameraEnabled == enabled {
			return false
		}
		snap.CameraEnabled = enabled
		if !enabled {
			snap.CameraOffset = Offset{}
		}
		return true
	})
}

// AddPhotos prepends photos, newest first. The browse index is kept as is.
func (s *Store) AddPhotos(photos ...Photo) {
	if len(photos) == 0 {
		return
	}
	s.update(func(snap *Snapshot) bool {
		snap.Photos = append(slices.Clone(photos), snap.Photos...)
		return true
	})
}

// CyclePhoto moves the browse index by dir and returns the new index.
func (s *Store) CyclePhoto(dir int) (int, error) {
	var (
		idx int
		err error
	)
	s.update(func(snap *Snapshot) bool {
		if len(snap.Photos) == 0 {
			err = ErrNoPhotos
			return false
		}
		idx = Cycle(snap.Current, dir, len(snap.Photos))
		if idx == snap.Current {
			return false
		}
		snap.Current = idx
		return true
	})
	return idx, err
}

// SelectPhoto marks the photo with id as selected for full-screen viewing.
func (s *Store) SelectPhoto(id string) error {
	err := ErrUnknownPhoto
	s.update(func(snap *Snapshot) bool {
		if !slices.ContainsFunc(snap.Photos, func(p Photo) bool { return p.ID == id }) {
			return false
		}
		err = nil
		if snap.Selected == id {
			return false
		}
		snap.Selected = id
		return true
	})
	return err
}

// ClearSelection deselects the full-screen photo.
func (s *Store) ClearSelection() {
	s.update(func(snap *Snapshot) bool {
		if snap.Selected == "" {
			return false
		}
		snap.Selected = ""
		return true
	})
}

// SetGestureStatus stores the human-readable gesture status line.
func (s *Store) SetGestureStatus(status string) {
	s.update(func(snap *Snapshot) bool {
		if snap.GestureStatus == status {
			return false
		}
		snap.GestureStatus = status
		return true
	})
}

// Subscribe returns a channel that receives the latest snapshot after every
// change. Slow readers only ever see the newest snapshot. Call cancel to
// stop receiving; the channel is closed.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// update applies fn under the write lock. When fn reports a change the
// revision is bumped and subscribers are notified.
func (s *Store) update(fn func(*Snapshot) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !fn(&s.snap) {
		return false
	}
	s.snap.Revision++
	// Publishing under the write lock keeps subscribers in revision order.
	s.publish(s.copyLocked())
	return true
}

func (s *Store) publish(snap Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		// Drop a stale pending snapshot so the newest one always fits.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Store) copyLocked() Snapshot {
	snap := s.snap
	snap.Photos = slices.Clone(s.snap.Photos)
	return snap
}
