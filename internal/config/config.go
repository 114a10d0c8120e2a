// Package config provides YAML-based configuration loading for hioload-net.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Transport TransportConfig `mapstructure:"transport" yaml:"transport"`
	UDP       UDPConfig       `mapstructure:"udp" yaml:"udp"`
	WebRTC    WebRTCConfig    `mapstructure:"webrtc" yaml:"webrtc"`
	Bridge    BridgeConfig    `mapstructure:"bridge" yaml:"bridge"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level" yaml:"level"`
	// Format: console or json
	Format string `mapstructure:"format" yaml:"format"`
	// Outputs: stdout, stderr, or file paths
	Outputs     []string       `mapstructure:"outputs" yaml:"outputs"`
	Rotation    RotationConfig `mapstructure:"rotation" yaml:"rotation"`
	Development bool           `mapstructure:"development" yaml:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable" yaml:"enable"`
	Filename   string `mapstructure:"filename" yaml:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// TransportConfig tunes the receive loop.
type TransportConfig struct {
	// PollIntervalMS is the loop tick.
	PollIntervalMS int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	// RecvBuffer is the size of the loop's receive buffer.
	RecvBuffer int `mapstructure:"recv_buffer" yaml:"recv_buffer"`
	// MaxPacketsPerTick bounds how many packets one tick drains.
	MaxPacketsPerTick int `mapstructure:"max_packets_per_tick" yaml:"max_packets_per_tick"`
}

// UDPConfig describes the default datagram socket. Empty Listen leaves the
// transport without a socket.
type UDPConfig struct {
	Listen      string `mapstructure:"listen" yaml:"listen"`
	MaxDatagram int    `mapstructure:"max_datagram" yaml:"max_datagram"`
	ReadBuffer  int    `mapstructure:"read_buffer" yaml:"read_buffer"`
	WriteBuffer int    `mapstructure:"write_buffer" yaml:"write_buffer"`
}

// WebRTCConfig sizes the browser-channel inbound queue.
type WebRTCConfig struct {
	QueueCapacity int `mapstructure:"queue_capacity" yaml:"queue_capacity"`
	MaxPacketSize int `mapstructure:"max_packet_size" yaml:"max_packet_size"`
}

// BridgeConfig controls the WebSocket relay feeding the browser channel.
type BridgeConfig struct {
	Enable         bool     `mapstructure:"enable" yaml:"enable"`
	Listen         string   `mapstructure:"listen" yaml:"listen"`
	Path           string   `mapstructure:"path" yaml:"path"`
	ReadLimit      int64    `mapstructure:"read_limit" yaml:"read_limit"`
	WriteTimeoutMS int      `mapstructure:"write_timeout_ms" yaml:"write_timeout_ms"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			Outputs:     []string{"stdout"},
			Development: false,
			Rotation: RotationConfig{
				Enable:     false,
				Filename:   "logs/hioload-net.log",
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Transport: TransportConfig{
			PollIntervalMS:    5,
			RecvBuffer:        65536,
			MaxPacketsPerTick: 256,
		},
		UDP: UDPConfig{
			Listen:      ":27015",
			MaxDatagram: 65507,
		},
		WebRTC: WebRTCConfig{
			QueueCapacity: 64,
			MaxPacketSize: 2048,
		},
		Bridge: BridgeConfig{
			Enable:         false,
			Listen:         ":8080",
			Path:           "/ws",
			ReadLimit:      65536,
			WriteTimeoutMS: 1000,
		},
	}
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment overrides.
// Environment variables use the prefix HIOLOAD and `.`/`-` are replaced with `_`.
// Example: HIOLOAD_LOG_LEVEL=debug
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("HIOLOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	seedDefaults(v, cfg)

	if path == "" {
		if envPath := os.Getenv("HIOLOAD_CONFIG"); envPath != "" {
			path = envPath
		}
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hioload-net")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".hioload-net"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// seed defaults for viper so env-only configs work
func seedDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("transport.poll_interval_ms", cfg.Transport.PollIntervalMS)
	v.SetDefault("transport.recv_buffer", cfg.Transport.RecvBuffer)
	v.SetDefault("transport.max_packets_per_tick", cfg.Transport.MaxPacketsPerTick)
	v.SetDefault("udp.listen", cfg.UDP.Listen)
	v.SetDefault("udp.max_datagram", cfg.UDP.MaxDatagram)
	v.SetDefault("udp.read_buffer", cfg.UDP.ReadBuffer)
	v.SetDefault("udp.write_buffer", cfg.UDP.WriteBuffer)
	v.SetDefault("webrtc.queue_capacity", cfg.WebRTC.QueueCapacity)
	v.SetDefault("webrtc.max_packet_size", cfg.WebRTC.MaxPacketSize)
	v.SetDefault("bridge.enable", cfg.Bridge.Enable)
	v.SetDefault("bridge.listen", cfg.Bridge.Listen)
	v.SetDefault("bridge.path", cfg.Bridge.Path)
	v.SetDefault("bridge.read_limit", cfg.Bridge.ReadLimit)
	v.SetDefault("bridge.write_timeout_ms", cfg.Bridge.WriteTimeoutMS)
	v.SetDefault("bridge.allowed_origins", cfg.Bridge.AllowedOrigins)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Transport.PollIntervalMS <= 0:
		return fmt.Errorf("transport.poll_interval_ms must be positive, got %d", c.Transport.PollIntervalMS)
	case c.Transport.RecvBuffer <= 0:
		return fmt.Errorf("transport.recv_buffer must be positive, got %d", c.Transport.RecvBuffer)
	case c.Transport.MaxPacketsPerTick <= 0:
		return fmt.Errorf("transport.max_packets_per_tick must be positive, got %d", c.Transport.MaxPacketsPerTick)
	case c.UDP.MaxDatagram <= 0 || c.UDP.MaxDatagram > 65507:
		return fmt.Errorf("udp.max_datagram out of range: %d", c.UDP.MaxDatagram)
	case c.WebRTC.QueueCapacity <= 0:
		return fmt.Errorf("webrtc.queue_capacity must be positive, got %d", c.WebRTC.QueueCapacity)
	case c.WebRTC.MaxPacketSize <= 0:
		return fmt.Errorf("webrtc.max_packet_size must be positive, got %d", c.WebRTC.MaxPacketSize)
	case c.Bridge.Enable && !strings.HasPrefix(c.Bridge.Path, "/"):
		return fmt.Errorf("bridge.path must start with '/', got %q", c.Bridge.Path)
	}
	return nil
}
