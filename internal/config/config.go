package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RowanDark/enigma/internal/enigma"
	"github.com/RowanDark/enigma/internal/env"
)

const (
	homeDirName   = ".enigma"
	homeFileName  = "config.yml"
	localFileName = "enigma.yml"
)

// Config captures the service configuration resolved from defaults, optional
// files, and environment overrides.
type Config struct {
	HTTPAddr    string          `yaml:"http_addr"`
	GRPCAddr    string          `yaml:"grpc_addr"`
	RecipeDir   string          `yaml:"recipe_dir"`
	AuditLog    string          `yaml:"audit_log"`
	AuditStdout bool            `yaml:"audit_stdout"`
	Defaults    MachineDefaults `yaml:"defaults"`
	Tracing     Tracing         `yaml:"tracing"`
}

// Tracing controls span sampling and the optional span file.
type Tracing struct {
	SampleRatio float64 `yaml:"sample_ratio"`
	File        string  `yaml:"file"`
}

// MachineDefaults is the key the HTML form starts from.
type MachineDefaults enigma.SettingsInput

// Input returns d as engine input.
func (d MachineDefaults) Input() enigma.SettingsInput {
	return enigma.SettingsInput(d)
}

// Default returns the built-in configuration. RecipeDir is left empty and
// resolved against the home directory by Load.
func Default() Config {
	return Config{
		HTTPAddr:    "127.0.0.1:8080",
		GRPCAddr:    "127.0.0.1:50051",
		AuditStdout: true,
		Defaults:    MachineDefaults(enigma.DefaultSettings().Input()),
		Tracing:     Tracing{SampleRatio: 1},
	}
}

// Validate checks the listeners, the sample ratio and that the configured
// default key builds a machine.
func (c Config) Validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" && strings.TrimSpace(c.GRPCAddr) == "" {
		return errors.New("at least one of http_addr and grpc_addr must be set")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing sample_ratio %v is outside [0,1]", c.Tracing.SampleRatio)
	}
	if _, err := enigma.ParseSettings(c.Defaults.Input()); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	return nil
}

// Load resolves the configuration using defaults, configuration files, and
// environment overrides, in that order:
//  1. ~/.enigma/config.yml
//  2. ./enigma.yml
//
// Environment variables prefixed with ENIGMA_ have the highest precedence.
func Load() (Config, error) {
	cfg := Default()

	// Without a home directory only the local file and environment apply.
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		cfg.RecipeDir = filepath.Join(home, homeDirName, "recipes")
		if err := loadFile(&cfg, filepath.Join(home, homeDirName, homeFileName)); err != nil {
			return Config{}, err
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("determine working directory: %w", err)
	}
	if err := loadFile(&cfg, filepath.Join(wd, localFileName)); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := applyFileConfig(cfg, data); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyFileConfig overlays the keys present in data onto cfg. Unknown keys
// are rejected so typos do not silently fall back to defaults.
func applyFileConfig(cfg *Config, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	next := *cfg
	if err := dec.Decode(&next); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	next.HTTPAddr = strings.TrimSpace(next.HTTPAddr)
	next.GRPCAddr = strings.TrimSpace(next.GRPCAddr)
	next.RecipeDir = strings.TrimSpace(next.RecipeDir)
	next.AuditLog = strings.TrimSpace(next.AuditLog)
	next.Tracing.File = strings.TrimSpace(next.Tracing.File)
	*cfg = next
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if val, ok := env.String("ENIGMA_HTTP_ADDR", "PORT"); ok {
		if !strings.Contains(val, ":") {
			val = ":" + val
		}
		cfg.HTTPAddr = val
	}
	if val, ok := env.String("ENIGMA_GRPC_ADDR", ""); ok {
		cfg.GRPCAddr = val
	}
	if val, ok := env.String("ENIGMA_RECIPE_DIR", ""); ok {
		cfg.RecipeDir = val
	}
	if val, ok := env.String("ENIGMA_AUDIT_LOG", ""); ok {
		cfg.AuditLog = val
	}
	cfg.AuditStdout = env.Bool("ENIGMA_AUDIT_STDOUT", "", cfg.AuditStdout)
	cfg.Tracing.SampleRatio = env.Float("ENIGMA_TRACE_SAMPLE_RATIO", "", cfg.Tracing.SampleRatio)
	if val, ok := env.String("ENIGMA_TRACE_FILE", ""); ok {
		cfg.Tracing.File = val
	}

	if val, ok := env.String("ENIGMA_DEFAULT_ROTORS", ""); ok {
		cfg.Defaults.Rotors = strings.FieldsFunc(val, func(r rune) bool {
			return r == ',' || r == ' '
		})
	}
	if val, ok := env.String("ENIGMA_DEFAULT_POSITIONS", ""); ok {
		cfg.Defaults.Positions = val
	}
	if val, ok := env.String("ENIGMA_DEFAULT_RINGS", ""); ok {
		cfg.Defaults.Rings = val
	}
	if val, ok := env.String("ENIGMA_DEFAULT_REFLECTOR", ""); ok {
		cfg.Defaults.Reflector = val
	}
	if val, ok := env.String("ENIGMA_DEFAULT_PLUGBOARD", ""); ok {
		cfg.Defaults.Plugboard = val
	}
}
