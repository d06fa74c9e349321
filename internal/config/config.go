// Package config loads grandtree settings from an optional YAML file and
// the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/grandtree/pkg/app"
	"github.com/teslashibe/grandtree/pkg/camera"
	"github.com/teslashibe/grandtree/pkg/formation"
	"github.com/teslashibe/grandtree/pkg/gesture"
	"github.com/teslashibe/grandtree/pkg/handpose"
	"github.com/teslashibe/grandtree/pkg/photos"
	"github.com/teslashibe/grandtree/pkg/rig"
	"github.com/teslashibe/grandtree/pkg/web"
)

// ErrInvalid is matched by every ValidationError.
var ErrInvalid = errors.New("config: invalid")

// ValidationError lists every problem found in a Config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config: " + strings.Join(e.Problems, "; ")
}

// Unwrap returns ErrInvalid.
func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Config aggregates every component's settings.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Scene    formation.Config `yaml:"scene"`
	Rig      rig.Config       `yaml:"rig"`
	Gesture  gesture.Config   `yaml:"gesture"`
	Camera   camera.Config    `yaml:"camera"`
	HandPose handpose.Config  `yaml:"hand_pose"`
	Photos   photos.Config    `yaml:"photos"`
	Render   app.Config       `yaml:"render"`
	Server   web.Config       `yaml:"server"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Scene:    formation.DefaultConfig(),
		Rig:      rig.DefaultConfig(),
		Gesture:  gesture.DefaultConfig(),
		Camera:   camera.DefaultConfig(),
		HandPose: handpose.DefaultConfig(),
		Photos:   photos.DefaultConfig(),
		Render:   app.DefaultConfig(),
		Server:   web.DefaultConfig(),
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path falls back to TREE_CONFIG; with
// neither set only defaults and the environment apply.
func Load(path string) (Config, error) {
	cfg := Default()
	path = ConfigFile(path)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML onto cfg; fields absent from data keep their values.
// Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate returns a *ValidationError when any section is invalid.
func (c *Config) Validate() error {
	var problems []string
	add := func(section string, ps []string) {
		for _, p := range ps {
			problems = append(problems, section+": "+p)
		}
	}
	add("scene", c.Scene.Validate())
	add("rig", c.Rig.Validate())
	add("gesture", c.Gesture.Validate())
	add("camera", c.Camera.Validate())
	add("hand_pose", c.HandPose.Validate())
	add("photos", c.Photos.Validate())
	add("render", c.Render.Validate())
	add("server", c.Server.Validate())
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
