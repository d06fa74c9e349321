package handpose

import (
	"context"

	"github.com/teslashibe/grandtree/pkg/camera"
)

// Estimator finds hands in a frame. Implementations may be slow; callers
// keep at most one call in flight.
type Estimator interface {
	// EstimateHands returns zero or more hands, best first.
	EstimateHands(ctx context.Context, frame camera.Frame) ([]Hand, error)

	// Close releases model resources.
	Close() error
}

// Loader initialises an Estimator. Loading can take seconds.
type Loader interface {
	Load(ctx context.Context) (Estimator, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (Estimator, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) (Estimator, error) { return f(ctx) }

// Config holds model configuration.
type Config struct {
	ModelPath   string   `yaml:"model_path" json:"model_path"`
	InputWidth  int      `yaml:"input_width" json:"input_width"`
	InputHeight int      `yaml:"input_height" json:"input_height"`
	Stride      int      `yaml:"stride" json:"stride"`             // floats per landmark in the output
	ScoreThresh float64  `yaml:"score_thresh" json:"score_thresh"` // minimum hand presence score
	Outputs     []string `yaml:"outputs" json:"outputs"`           // landmark output, then score output
}

// DefaultConfig returns defaults for the MediaPipe hand landmark model.
func DefaultConfig() Config {
	return Config{
		ModelPath:   "models/hand_landmark.onnx",
		InputWidth:  224,
		InputHeight: 224,
		Stride:      3,
		ScoreThresh: 0.5,
	}
}

// Validate returns any problems with the configuration.
func (c Config) Validate() []string {
	var problems []string
	if c.ModelPath == "" {
		problems = append(problems, "handpose model_path must not be empty")
	}
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		problems = append(problems, "handpose input size must be positive")
	}
	if c.Stride < 2 {
		problems = append(problems, "handpose stride must be at least 2")
	}
	if c.ScoreThresh < 0 || c.ScoreThresh > 1 {
		problems = append(problems, "handpose score_thresh must be between 0 and 1")
	}
	return problems
}

// First returns the first hand, the only one gesture control consumes.
func First(hands []Hand) (Hand, bool) {
	if len(hands) == 0 {
		return Hand{}, false
	}
	return hands[0], true
}
