package camera

// Preset names accepted by the camera config API.
const (
	PresetDefault = "default"
	PresetLow     = "low"
	PresetVGA     = "vga"
	Preset720p    = "720p"
	PresetRear    = "rear"
)

// presets lists the named configs in display order. Each entry edits a
// copy of DefaultConfig.
var presets = []struct {
	name   string
	modify func(*Config)
}{
	{PresetDefault, func(*Config) {}},
	// Quarter of the model input for slow machines.
	{PresetLow, func(c *Config) { c.Width, c.Height, c.Framerate = 160, 120, 15 }},
	// The openness threshold scales with the frame diagonal, so larger
	// frames need no retuning.
	{PresetVGA, func(c *Config) { c.Width, c.Height = 640, 480 }},
	{Preset720p, func(c *Config) { c.Width, c.Height = 1280, 720 }},
	// Camera behind the screen facing the user; its image is not flipped.
	{PresetRear, func(c *Config) { c.Mirrored = false }},
}

// Presets returns all available preset configurations keyed by name.
func Presets() map[string]Config {
	out := make(map[string]Config, len(presets))
	for _, p := range presets {
		cfg := DefaultConfig()
		p.modify(&cfg)
		out[p.name] = cfg
	}
	return out
}

// PresetNames returns the preset names in display order.
func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.name
	}
	return names
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	for _, p := range presets {
		if p.name == name {
			cfg := DefaultConfig()
			p.modify(&cfg)
			return &cfg
		}
	}
	return nil
}
