package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts "3s"-style strings.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Serial holds the serial port parameters. Baud and framing defaults
// follow the device vendor's recommendation (9600 8N1).
type Serial struct {
	Port     string  `yaml:"port"`
	Baud     int     `yaml:"baud"`
	DataBits int     `yaml:"data_bits"`
	Parity   string  `yaml:"parity"` // N, E, O, S, M
	StopBits float64 `yaml:"stop_bits"`
}

// Network selects the gateway role. When Connect is empty the bridge
// listens on ListenPort (server role); otherwise it dials Connect
// ("host:port") and retries with a fixed delay (client role).
type Network struct {
	ListenHost string `yaml:"listen_host"`
	ListenPort int    `yaml:"listen_port"`
	Connect    string `yaml:"connect"`
	WebSocket  bool   `yaml:"websocket"`
	Zeroconf   bool   `yaml:"zeroconf"`
}

// Config is the root of the YAML file.
type Config struct {
	Version  int     `yaml:"version"`
	TypeID   byte    `yaml:"type_id"`
	Serial   Serial  `yaml:"serial"`
	Network  Network `yaml:"network"`
	LogLevel string  `yaml:"log_level"`

	// FrameTimeout bounds serial silence while a command is
	// outstanding. Zero disables the timeout, the default behavior.
	FrameTimeout Duration `yaml:"frame_timeout,omitempty"`

	// MaxFrameSize caps assembler buffer growth; zero selects the
	// protocol default.
	MaxFrameSize int `yaml:"max_frame_size"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version: 1,
		Serial: Serial{
			Baud:     9600,
			DataBits: 8,
			Parity:   "N",
			StopBits: 1,
		},
		Network: Network{
			ListenHost: "",
			ListenPort: 7777,
		},
	}
}

// Load reads a YAML config file. A missing path yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d (expected 1)", cfg.Version)
	}
	return cfg, nil
}

// Validate checks the fields the gateway cannot default.
func (c *Config) Validate() error {
	if c.Serial.Port == "" {
		return fmt.Errorf("serial port not set")
	}
	switch c.Serial.DataBits {
	case 5, 6, 7, 8:
	default:
		return fmt.Errorf("data_bits must be one of 5, 6, 7, 8, got %d", c.Serial.DataBits)
	}
	switch c.Serial.Parity {
	case "N", "E", "O", "S", "M":
	default:
		return fmt.Errorf("parity must be one of N, E, O, S, M, got %q", c.Serial.Parity)
	}
	switch c.Serial.StopBits {
	case 1, 1.5, 2:
	default:
		return fmt.Errorf("stop_bits must be one of 1, 1.5, 2, got %v", c.Serial.StopBits)
	}
	if c.Network.Connect == "" && c.Network.ListenPort <= 0 {
		return fmt.Errorf("listen_port must be positive, got %d", c.Network.ListenPort)
	}
	if c.FrameTimeout < 0 {
		return fmt.Errorf("frame_timeout must not be negative")
	}
	return nil
}
