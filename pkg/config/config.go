package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for configurations that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Scale       ScaleConfig       `yaml:"scale"`
	Predictor   PredictorConfig   `yaml:"predictor"`
	Buttons     ButtonsConfig     `yaml:"buttons"`
	Measurement MeasurementConfig `yaml:"measurement"`
	Log         LogConfig         `yaml:"log"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Mock        MockConfig        `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// ScaleConfig converts the scale's reported weight: grams = (raw - offset) * factor.
type ScaleConfig struct {
	Offset float64 `yaml:"offset"`
	Factor float64 `yaml:"factor"`
}

// PredictorConfig contains the estimator parameters.
type PredictorConfig struct {
	Capacity     int     `yaml:"capacity"`      // Readings in the regression window (>= 2)
	TargetWeight float64 `yaml:"target_weight"` // Weight to predict towards (g)
}

// ButtonsConfig contains operator button parameters.
type ButtonsConfig struct {
	DebounceMillis int64  `yaml:"debounce_ms"`
	StartName      string `yaml:"start_name"`
	ResetName      string `yaml:"reset_name"`
}

// MeasurementConfig contains sample pipeline parameters.
type MeasurementConfig struct {
	AverageSamples int `yaml:"average_samples"` // Moving average length (0 = disabled, default)
}

// LogConfig selects log verbosity and format.
type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // "text" or "json"
}

// MetricsConfig contains the Prometheus endpoint configuration.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // e.g. ":9100"; empty disables the endpoint
}

// MockConfig contains mock scale configuration.
type MockConfig struct {
	FlowRate      float64       `yaml:"flow_rate"`      // Simulated dispensing rate (g/s)
	NoiseLevel    float64       `yaml:"noise_level"`    // Noise amplitude (g)
	SampleRate    time.Duration `yaml:"sample_rate"`    // Time between readings
	CycleDuration time.Duration `yaml:"cycle_duration"` // Length of one dispensing cycle
	StartDelay    time.Duration `yaml:"start_delay"`    // Time from cycle start to start button press
	PressDuration time.Duration `yaml:"press_duration"` // How long simulated buttons are held
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 115200,
		},
		Scale: ScaleConfig{
			Offset: 0,
			Factor: 1,
		},
		Predictor: PredictorConfig{
			Capacity:     10,
			TargetWeight: 100,
		},
		Buttons: ButtonsConfig{
			DebounceMillis: 60,
			StartName:      "start",
			ResetName:      "reset",
		},
		Measurement: MeasurementConfig{
			AverageSamples: 0, // No averaging by default
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Mock: MockConfig{
			FlowRate:      5.0,
			NoiseLevel:    0.05,
			SampleRate:    100 * time.Millisecond,
			CycleDuration: 30 * time.Second,
			StartDelay:    time.Second,
			PressDuration: 200 * time.Millisecond,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports settings the estimator cannot run with.
func (c *Config) Validate() error {
	if c.Predictor.Capacity < 2 {
		return fmt.Errorf("%w: predictor capacity %d, need at least 2", ErrInvalid, c.Predictor.Capacity)
	}
	if math.IsNaN(c.Predictor.TargetWeight) || math.IsInf(c.Predictor.TargetWeight, 0) {
		return fmt.Errorf("%w: target weight %v", ErrInvalid, c.Predictor.TargetWeight)
	}
	if c.Buttons.DebounceMillis < 0 {
		return fmt.Errorf("%w: negative debounce window %d", ErrInvalid, c.Buttons.DebounceMillis)
	}
	if c.Scale.Factor == 0 {
		return fmt.Errorf("%w: zero scale factor", ErrInvalid)
	}
	if c.Measurement.AverageSamples < 0 {
		return fmt.Errorf("%w: negative average_samples %d", ErrInvalid, c.Measurement.AverageSamples)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Scale.Factor == 0 {
		c.Scale.Factor = def.Scale.Factor
	}

	if c.Predictor.Capacity == 0 {
		c.Predictor.Capacity = def.Predictor.Capacity
	}

	if c.Buttons.DebounceMillis == 0 {
		c.Buttons.DebounceMillis = def.Buttons.DebounceMillis
	}
	if c.Buttons.StartName == "" {
		c.Buttons.StartName = def.Buttons.StartName
	}
	if c.Buttons.ResetName == "" {
		c.Buttons.ResetName = def.Buttons.ResetName
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}

	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
	if c.Mock.CycleDuration == 0 {
		c.Mock.CycleDuration = def.Mock.CycleDuration
	}
	if c.Mock.PressDuration == 0 {
		c.Mock.PressDuration = def.Mock.PressDuration
	}
}
