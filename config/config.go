package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"
)

// Encoder backends understood by the encoder package.
const (
	EncoderMJPEG  = "mjpeg"
	EncoderFFmpeg = "ffmpeg"
)

// Config holds runtime configuration for capture pacing, encoding and app behavior.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug    bool   `json:"debug"`
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Capture pacing
	TargetFPS  float64 `json:"target_fps"`
	RateWindow int     `json:"rate_window"`

	// Output
	OutputDir   string `json:"output_dir"`
	Encoder     string `json:"encoder"`
	FFmpegPath  string `json:"ffmpeg_path"`
	JPEGQuality int    `json:"jpeg_quality"`

	// Upper bound stop waits for an in-flight frame write before closing the encoder.
	StopTimeoutMillis int `json:"stop_timeout_ms"`

	// Preview size in percent of the screen resolution.
	PreviewScale int `json:"preview_scale"`

	// Global key that cancels capture and runs export/exit.
	CancelKey string `json:"cancel_key"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:             false,
		LogLevel:          "info",
		LogFile:           "",
		TargetFPS:         20,
		RateWindow:        20,
		OutputDir:         ".",
		Encoder:           EncoderMJPEG,
		FFmpegPath:        "ffmpeg",
		JPEGQuality:       90,
		StopTimeoutMillis: 500,
		PreviewScale:      25,
		CancelKey:         "esc",
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.TargetFPS <= 0 || c.TargetFPS > 240 {
		c.TargetFPS = 20
	}
	if c.RateWindow < 2 {
		c.RateWindow = 20
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		c.OutputDir = "."
	}
	c.Encoder = strings.ToLower(strings.TrimSpace(c.Encoder))
	if c.Encoder != EncoderMJPEG && c.Encoder != EncoderFFmpeg {
		c.Encoder = EncoderMJPEG
	}
	if strings.TrimSpace(c.FFmpegPath) == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		c.JPEGQuality = 90
	}
	if c.StopTimeoutMillis <= 0 {
		c.StopTimeoutMillis = 500
	}
	if c.PreviewScale < 5 || c.PreviewScale > 100 {
		c.PreviewScale = 25
	}
	if strings.TrimSpace(c.CancelKey) == "" {
		c.CancelKey = "esc"
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = "info"
	}
	return nil
}

// StopTimeout returns StopTimeoutMillis as a duration.
func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.StopTimeoutMillis) * time.Millisecond
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
