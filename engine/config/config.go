// Package config loads the viewer's optional YAML configuration onto built-in defaults.
package config

import (
	"bytes"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable that overrides the config path.
const EnvVar = "OXY_CONFIG"

// DefaultPath is the config file read from the working directory.
const DefaultPath = "oxy.yaml"

// ErrInvalid is the cause of every rejected configuration.
var ErrInvalid = errors.New("invalid configuration")

// Present mode names accepted in the config file.
const (
	PresentVSync    = "vsync"
	PresentUncapped = "uncapped"
	PresentMailbox  = "mailbox"
)

var presentModes = map[string]backend.PresentMode{
	PresentVSync:    backend.PresentModeFifo,
	PresentUncapped: backend.PresentModeImmediate,
	PresentMailbox:  backend.PresentModeMailbox,
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Duration wraps time.Duration for YAML values such as "1s" or "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", s)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Window configures the host window.
type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Assets selects the model to display.
type Assets struct {
	// Root is a directory on disk. Empty selects the bundled assets.
	Root  string `yaml:"root"`
	Model string `yaml:"model"`
}

// Camera configures the fixed camera. The aspect ratio always follows the surface.
type Camera struct {
	Eye    [3]float32 `yaml:"eye"`
	Center [3]float32 `yaml:"center"`
	Up     [3]float32 `yaml:"up"`
	Fovy   float32    `yaml:"fovy"`
	Near   float32    `yaml:"near"`
	Far    float32    `yaml:"far"`
}

// Light configures the point light.
type Light struct {
	Position [3]float32 `yaml:"position"`
	Color    [3]float32 `yaml:"color"`
}

// Profiler configures the frame-rate logger.
type Profiler struct {
	Enabled  bool     `yaml:"enabled"`
	Interval Duration `yaml:"interval"`
}

// Loader configures model loading.
type Loader struct {
	Workers int `yaml:"workers"`
}

// Config is the full viewer configuration.
type Config struct {
	Window      Window     `yaml:"window"`
	Assets      Assets     `yaml:"assets"`
	PresentMode string     `yaml:"present_mode"`
	ClearColor  [4]float64 `yaml:"clear_color"`
	Camera      Camera     `yaml:"camera"`
	Light       Light      `yaml:"light"`
	LogLevel    string     `yaml:"log_level"`
	Profiler    Profiler   `yaml:"profiler"`
	Loader      Loader     `yaml:"loader"`
}

// Default returns the configuration used when no file is present.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Window:      Window{Title: "oxy-viewer", Width: 800, Height: 600},
		Assets:      Assets{Model: "cube.obj"},
		PresentMode: PresentVSync,
		ClearColor:  [4]float64{0.1, 0.2, 0.3, 1.0},
		Camera: Camera{
			Eye:  [3]float32{0, 1, 2},
			Up:   [3]float32{0, 1, 0},
			Fovy: 0.7,
			Near: 0.1,
			Far:  100,
		},
		Light: Light{
			Position: [3]float32{0, 2, -3},
			Color:    [3]float32{1, 1, 1},
		},
		LogLevel: "info",
		Profiler: Profiler{Interval: Duration(time.Second)},
		Loader:   Loader{Workers: 4},
	}
}

// Path returns the config path: the value of OXY_CONFIG if set, otherwise oxy.yaml.
//
// Returns:
//   - string: the path to read
func Path() string {
	if p := os.Getenv(EnvVar); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the file at path onto the defaults. A missing or empty file yields the defaults.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - Config: the validated configuration
//   - error: a read, parse or ErrInvalid-caused error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML onto the defaults and validates the result. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the validated configuration
//   - error: a parse or ErrInvalid-caused error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "parse")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks sizes, the camera range, and the present mode and log level names.
//
// Returns:
//   - error: an ErrInvalid-caused error for the first violation, or nil
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Wrapf(ErrInvalid, "window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Assets.Model == "" {
		return errors.Wrap(ErrInvalid, "assets.model is empty")
	}
	if _, ok := presentModes[strings.ToLower(c.PresentMode)]; !ok {
		return errors.Wrapf(ErrInvalid, "unknown present_mode %q", c.PresentMode)
	}
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return errors.Wrapf(ErrInvalid, "unknown log_level %q", c.LogLevel)
	}
	if !(c.Camera.Near > 0 && c.Camera.Near < c.Camera.Far) || math32.IsInf(c.Camera.Far, 1) {
		return errors.Wrapf(ErrInvalid, "camera near %v and far %v need 0 < near < far", c.Camera.Near, c.Camera.Far)
	}
	if !(c.Camera.Fovy > 0 && c.Camera.Fovy < math32.Pi) {
		return errors.Wrapf(ErrInvalid, "camera fovy %v must be in (0, pi)", c.Camera.Fovy)
	}
	if c.Loader.Workers < 1 {
		return errors.Wrapf(ErrInvalid, "loader.workers %d must be at least 1", c.Loader.Workers)
	}
	if c.Profiler.Enabled && c.Profiler.Interval <= 0 {
		return errors.Wrap(ErrInvalid, "profiler.interval must be positive")
	}
	return nil
}

// Present returns the backend present mode for the configured name.
//
// Returns:
//   - backend.PresentMode: the present mode, Fifo for an unknown name
func (c Config) Present() backend.PresentMode {
	return presentModes[strings.ToLower(c.PresentMode)]
}

// Level returns the slog level for the configured name.
//
// Returns:
//   - slog.Level: the level, Info for an unknown name
func (c Config) Level() slog.Level {
	if l, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return l
	}
	return slog.LevelInfo
}

// Clear returns the clear color as a backend color.
func (c Config) Clear() backend.Color {
	return backend.Color{R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: c.ClearColor[3]}
}
