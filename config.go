package prism

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mazznoer/csscolorparser"
	"github.com/pelletier/go-toml/v2"
	"honnef.co/go/prism/decode"
	"honnef.co/go/prism/frontend"
	"honnef.co/go/prism/palette"
	"honnef.co/go/prism/renderer"
	"honnef.co/go/wgpu"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config configures a session. The zero value is not useful; start from
// DefaultConfig.
type Config struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	Title  string `toml:"title"`

	// Effect is the effect selected at startup.
	Effect int  `toml:"effect"`
	Fill   bool `toml:"fill"`

	// Background is a CSS colour. It is decoded with a 2.2 gamma curve to
	// produce the clear colour.
	Background      string `toml:"background"`
	PresentMode     string `toml:"present_mode"`
	PowerPreference string `toml:"power_preference"`
	QueueSize       int    `toml:"queue_size"`
	LogLevel        string `toml:"log_level"`

	// Profile enables GPU timestamp queries and CPU frame spans. Timings are
	// logged at debug level.
	Profile bool `toml:"profile"`

	// MaxTextureSize caps the larger dimension of decoded images.
	MaxTextureSize int           `toml:"max_texture_size"`
	Palette        []palette.Hex `toml:"palette"`
}

func DefaultConfig() Config {
	return Config{
		Width:           800,
		Height:          600,
		Title:           "prism",
		Background:      "#2A16AD",
		PresentMode:     "fifo",
		PowerPreference: "high-performance",
		QueueSize:       frontend.DefaultQueueSize,
		LogLevel:        "info",
		MaxTextureSize:  decode.DefaultMaxDimension,
	}
}

// LoadConfig reads the TOML file at path on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	cfg, err := ReadConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ReadConfig is like LoadConfig but reads from r. Unknown keys are an error.
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, serr.String())
		}
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return invalid("window size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Effect < 0 || cfg.Effect >= renderer.NumEffects {
		return invalid("effect %d out of range [0, %d)", cfg.Effect, renderer.NumEffects)
	}
	if cfg.QueueSize < 0 {
		return invalid("negative queue size %d", cfg.QueueSize)
	}
	if cfg.MaxTextureSize < 0 {
		return invalid("negative maximum texture size %d", cfg.MaxTextureSize)
	}
	if _, err := cfg.ClearColor(); err != nil {
		return invalid("background: %s", err)
	}
	if _, err := cfg.WGPUPresentMode(); err != nil {
		return invalid("%s", err)
	}
	if _, err := cfg.WGPUPowerPreference(); err != nil {
		return invalid("%s", err)
	}
	if _, err := cfg.Level(); err != nil {
		return invalid("%s", err)
	}
	if _, err := palette.Parse(cfg.Palette); err != nil {
		return invalid("%s", err)
	}
	return nil
}

// ClearColor returns the linear clear colour for the configured background.
func (cfg *Config) ClearColor() ([4]float64, error) {
	return parseBackground(cfg.Background)
}

func parseBackground(s string) ([4]float64, error) {
	if s == "" {
		return renderer.DefaultBackground, nil
	}
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return [4]float64{}, err
	}
	return renderer.ClearColor(c.R, c.G, c.B), nil
}

func (cfg *Config) WGPUPresentMode() (wgpu.PresentMode, error) {
	switch strings.ToLower(cfg.PresentMode) {
	case "", "fifo":
		return wgpu.PresentModeFifo, nil
	case "mailbox":
		return wgpu.PresentModeMailbox, nil
	case "immediate":
		return wgpu.PresentModeImmediate, nil
	default:
		return 0, fmt.Errorf("unknown present mode %q", cfg.PresentMode)
	}
}

func (cfg *Config) WGPUPowerPreference() (wgpu.PowerPreference, error) {
	switch strings.ToLower(cfg.PowerPreference) {
	case "", "high-performance":
		return wgpu.PowerPreferenceHighPerformance, nil
	case "low-power":
		return wgpu.PowerPreferenceLowPower, nil
	default:
		return 0, fmt.Errorf("unknown power preference %q", cfg.PowerPreference)
	}
}

// Level returns the configured log level.
func (cfg *Config) Level() (slog.Level, error) {
	var l slog.Level
	if cfg.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return 0, err
	}
	return l, nil
}

// DecodeOptions returns the decode options matching the configuration.
func (cfg *Config) DecodeOptions() *decode.Options {
	return &decode.Options{MaxDimension: cfg.MaxTextureSize}
}
