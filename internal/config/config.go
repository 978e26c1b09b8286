// Package config loads the server's YAML configuration and fills in defaults
// for anything the file leaves out.
package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v2"
)

// Duration is a time.Duration that unmarshals from YAML strings like "10s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds everything the server needs at startup. The zero value is not
// usable; go through Default or Load.
type Config struct {
	ListenAddr      string   `yaml:"listen_addr"`
	MetricsAddr     string   `yaml:"metrics_addr"`
	CredentialsFile string   `yaml:"credentials_file"`
	HistoryFile     string   `yaml:"history_file"`
	HistoryLimit    int      `yaml:"history_limit"`
	PingTimeout     Duration `yaml:"ping_timeout"`
	SweepInterval   Duration `yaml:"sweep_interval"`
	InboundQueue    int      `yaml:"inbound_queue"`
	OutboundQueue   int      `yaml:"outbound_queue"`
}

func Default() Config {
	return Config{
		ListenAddr:      "127.0.0.1:5000",
		MetricsAddr:     "127.0.0.1:9090",
		CredentialsFile: "user_credentials.txt",
		HistoryFile:     "chat_history.txt",
		HistoryLimit:    100,
		PingTimeout:     Duration(10 * time.Second),
		SweepInterval:   Duration(2 * time.Second),
		InboundQueue:    128,
		OutboundQueue:   256,
	}
}

// Load reads the YAML file at path on top of the defaults. A missing file is
// fine and yields the defaults; a file that exists but does not parse is a
// startup error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg.sanitized(), nil
}

func (c Config) sanitized() Config {
	def := Default()
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = def.MetricsAddr
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = def.CredentialsFile
	}
	if c.HistoryFile == "" {
		c.HistoryFile = def.HistoryFile
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = def.HistoryLimit
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = def.PingTimeout
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = def.SweepInterval
	}
	if c.InboundQueue <= 0 {
		c.InboundQueue = def.InboundQueue
	}
	if c.OutboundQueue <= 0 {
		c.OutboundQueue = def.OutboundQueue
	}
	return c
}
