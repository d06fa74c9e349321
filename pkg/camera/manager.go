package camera

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Patch is a partial config update. Nil fields are left alone; a preset,
// when named, is applied first and the other fields override it.
type Patch struct {
	Preset     *string `json:"preset,omitempty"`
	Device     *string `json:"device,omitempty"`
	Width      *int    `json:"width,omitempty"`
	Height     *int    `json:"height,omitempty"`
	Framerate  *int    `json:"framerate,omitempty"`
	Mirrored   *bool   `json:"mirrored,omitempty"`
	BufferSize *int    `json:"buffer_size,omitempty"`
}

// Apply returns cfg with the patch applied. The result is not validated.
func (p Patch) Apply(cfg Config) (Config, error) {
	if p.Preset != nil {
		preset := GetPreset(*p.Preset)
		if preset == nil {
			return cfg, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, *p.Preset)
		}
		cfg = *preset
	}
	set(&cfg.Device, p.Device)
	set(&cfg.Width, p.Width)
	set(&cfg.Height, p.Height)
	set(&cfg.Framerate, p.Framerate)
	set(&cfg.Mirrored, p.Mirrored)
	set(&cfg.BufferSize, p.BufferSize)
	return cfg, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// ParsePatch decodes a JSON object into a Patch. Unknown keys and values
// of the wrong type are errors.
func ParsePatch(data []byte) (Patch, error) {
	var p Patch
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Patch{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return p, nil
}

// Manager holds the current camera configuration and handles updates.
type Manager struct {
	mu     sync.Mutex // serialises updates, including the callback
	config Config

	// OnConfigChange is called with a validated config before it is stored.
	// An error rejects the update.
	OnConfigChange func(cfg Config) error
}

// NewManager creates a camera manager holding cfg.
func NewManager(cfg Config) *Manager {
	return &Manager{config: cfg}
}

// GetConfig returns the current camera configuration.
func (m *Manager) GetConfig() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// SetConfig validates cfg, hands it to OnConfigChange and stores it.
func (m *Manager) SetConfig(cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setLocked(cfg)
}

// ApplyPatch updates the fields named by p.
func (m *Manager) ApplyPatch(p Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, err := p.Apply(m.config)
	if err != nil {
		return err
	}
	return m.setLocked(cfg)
}

// UpdateConfig applies a decoded JSON object such as {"preset":"vga"} or
// {"width":640,"height":480}.
func (m *Manager) UpdateConfig(params map[string]interface{}) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	p, err := ParsePatch(data)
	if err != nil {
		return err
	}
	return m.ApplyPatch(p)
}

func (m *Manager) setLocked(cfg Config) error {
	if problems := cfg.Validate(); len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	if m.OnConfigChange != nil {
		if err := m.OnConfigChange(cfg); err != nil {
			return fmt.Errorf("failed to apply config: %w", err)
		}
	}
	m.config = cfg
	return nil
}

// GetConfigJSON returns the current config as a map for JSON serialization.
func (m *Manager) GetConfigJSON() map[string]interface{} {
	data, _ := json.Marshal(m.GetConfig())
	var result map[string]interface{}
	_ = json.Unmarshal(data, &result)
	return result
}
