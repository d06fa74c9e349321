package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfigFile   = "TREE_CONFIG"
	EnvPort         = "TREE_PORT"
	EnvStaticDir    = "TREE_STATIC_DIR"
	EnvCameraDevice = "TREE_CAMERA_DEVICE"
	EnvHandModel    = "TREE_HAND_MODEL"
	EnvMirrored     = "TREE_CAMERA_MIRRORED"
	EnvLogLevel     = "LOG_LEVEL"
)

// env returns the value of key, or def if it is unset or blank.
func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envBool parses key as a bool, keeping def when unset or malformed.
func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// ConfigFile returns path if set, otherwise TREE_CONFIG.
func ConfigFile(path string) string {
	if path != "" {
		return path
	}
	return env(EnvConfigFile, "")
}

// ApplyEnv overlays environment overrides onto c.
func (c *Config) ApplyEnv() {
	if port := env(EnvPort, ""); port != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	c.Server.StaticDir = env(EnvStaticDir, c.Server.StaticDir)
	c.Camera.Device = env(EnvCameraDevice, c.Camera.Device)
	c.Camera.Mirrored = envBool(EnvMirrored, c.Camera.Mirrored)
	c.HandPose.ModelPath = env(EnvHandModel, c.HandPose.ModelPath)
	c.LogLevel = env(EnvLogLevel, c.LogLevel)
}
