package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SanjoDeundiak/childproc/pkg/lib/runner"
)

const defaultAddress = "localhost:50051"

// Config is the server configuration. It is read from the YAML file named
// by PRN_CONFIG, if any; PRN_* variables override the file.
type Config struct {
	Address  string        `yaml:"address"`
	LogLevel string        `yaml:"log_level"`
	TLS      TLSConfig     `yaml:"tls"`
	Cgroup   runner.Limits `yaml:"cgroup"`
}

// TLSConfig names PEM files. The PRN_TLS_* variables carry PEM text
// instead.
type TLSConfig struct {
	KeyFile  string `yaml:"key_file"`
	CertFile string `yaml:"cert_file"`
	CAFile   string `yaml:"ca_file"`

	keyPEM, certPEM, caPEM []byte
}

func loadConfig(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Address:  defaultAddress,
		LogLevel: "info",
		Cgroup:   runner.DefaultLimits,
	}

	if path := getenv("PRN_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := strings.TrimSpace(getenv("PRN_ADDRESS")); v != "" {
		cfg.Address = v
	}
	if v := strings.TrimSpace(getenv("PRN_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}

	var err error
	if cfg.TLS.keyPEM, err = pemFrom(getenv("PRN_TLS_KEY"), cfg.TLS.KeyFile); err != nil {
		return nil, err
	}
	if cfg.TLS.certPEM, err = pemFrom(getenv("PRN_TLS_CERT"), cfg.TLS.CertFile); err != nil {
		return nil, err
	}
	if cfg.TLS.caPEM, err = pemFrom(getenv("PRN_CA_TLS_CERT"), cfg.TLS.CAFile); err != nil {
		return nil, err
	}
	if len(cfg.TLS.keyPEM) == 0 || len(cfg.TLS.certPEM) == 0 || len(cfg.TLS.caPEM) == 0 {
		return nil, fmt.Errorf("missing TLS material; set PRN_TLS_KEY, PRN_TLS_CERT, PRN_CA_TLS_CERT or tls files in the config")
	}
	return cfg, nil
}

func pemFrom(env, file string) ([]byte, error) {
	if strings.TrimSpace(env) != "" {
		return []byte(env), nil
	}
	if file == "" {
		return nil, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return data, nil
}

func (c *Config) level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
