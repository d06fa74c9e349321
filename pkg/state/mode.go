package state

import (
	"fmt"
	"strings"
)

// Mode is the configuration every entity is heading toward.
type Mode string

const (
	// Chaos disperses the tree into a cloud.
	Chaos Mode = "CHAOS"
	// Formed assembles the tree.
	Formed Mode = "FORMED"
)

// ParseMode accepts "chaos" or "formed" in any case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case Chaos:
		return Chaos, nil
	case Formed:
		return Formed, nil
	}
	return "", fmt.Errorf("state: unknown mode %q", s)
}

// TargetProgress is 1 for Formed and 0 otherwise.
func (m Mode) TargetProgress() float32 {
	if m == Formed {
		return 1
	}
	return 0
}

// Valid reports whether m is one of the two modes.
func (m Mode) Valid() bool { return m == Chaos || m == Formed }

func (m Mode) String() string { return string(m) }
