// Package config loads server settings from defaults, an optional HCL file and
// LIARSBAR_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/sequence"
)

// Config is the complete server configuration
type Config struct {
	Server   ServerSettings
	Game     GameSettings
	Sequence SequenceSettings
}

// ServerSettings contains listener and logging configuration
type ServerSettings struct {
	Address      string `env:"LIARSBAR_ADDRESS"`
	AdminAddress string `env:"LIARSBAR_ADMIN_ADDRESS"`
	LogLevel     string `env:"LIARSBAR_LOG_LEVEL"`
}

// GameSettings contains the table timings
type GameSettings struct {
	AdvanceDelay time.Duration `env:"LIARSBAR_ADVANCE_DELAY"`
	RevealDelay  time.Duration `env:"LIARSBAR_REVEAL_DELAY"`
}

// SequenceSettings are the parameters of the room's random sequence
type SequenceSettings struct {
	Seed       int64 `env:"LIARSBAR_SEQUENCE_SEED"`
	Multiplier int64 `env:"LIARSBAR_SEQUENCE_MULTIPLIER"`
	Additive   int64 `env:"LIARSBAR_SEQUENCE_ADDITIVE"`
	Modulus    int64 `env:"LIARSBAR_SEQUENCE_MODULUS"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerSettings{
			Address:      ":4000",
			AdminAddress: ":3000",
			LogLevel:     "info",
		},
		Game: GameSettings{
			AdvanceDelay: game.DefaultAdvanceDelay,
			RevealDelay:  game.DefaultRevealDelay,
		},
		Sequence: SequenceSettings{
			Seed:       sequence.DefaultParams.Seed,
			Multiplier: sequence.DefaultParams.Multiplier,
			Additive:   sequence.DefaultParams.Additive,
			Modulus:    sequence.DefaultParams.Modulus,
		},
	}
}

// fileConfig mirrors the HCL layout. Everything is optional; unset values keep
// their defaults.
type fileConfig struct {
	Server   *fileServer   `hcl:"server,block"`
	Game     *fileGame     `hcl:"game,block"`
	Sequence *fileSequence `hcl:"sequence,block"`
}

type fileServer struct {
	Address      *string `hcl:"address,optional"`
	AdminAddress *string `hcl:"admin_address,optional"`
	LogLevel     *string `hcl:"log_level,optional"`
}

type fileGame struct {
	AdvanceDelay *string `hcl:"advance_delay,optional"`
	RevealDelay  *string `hcl:"reveal_delay,optional"`
}

type fileSequence struct {
	Seed       *int64 `hcl:"seed,optional"`
	Multiplier *int64 `hcl:"multiplier,optional"`
	Additive   *int64 `hcl:"additive,optional"`
	Modulus    *int64 `hcl:"modulus,optional"`
}

// Load builds the configuration from defaults, the HCL file at filename (skipped
// when empty or missing) and the environment
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		if err := cfg.LoadFile(filename); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile overlays the values set in an HCL file. A missing file is not an error.
func (c *Config) LoadFile(filename string) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	return c.merge(fc)
}

func (c *Config) merge(fc fileConfig) error {
	if s := fc.Server; s != nil {
		setIf(&c.Server.Address, s.Address)
		setIf(&c.Server.AdminAddress, s.AdminAddress)
		setIf(&c.Server.LogLevel, s.LogLevel)
	}

	if g := fc.Game; g != nil {
		if err := setDuration(&c.Game.AdvanceDelay, g.AdvanceDelay, "advance_delay"); err != nil {
			return err
		}
		if err := setDuration(&c.Game.RevealDelay, g.RevealDelay, "reveal_delay"); err != nil {
			return err
		}
	}

	if s := fc.Sequence; s != nil {
		setIf(&c.Sequence.Seed, s.Seed)
		setIf(&c.Sequence.Multiplier, s.Multiplier)
		setIf(&c.Sequence.Additive, s.Additive)
		setIf(&c.Sequence.Modulus, s.Modulus)
	}

	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("game.%s: %w", name, err)
	}
	*dst = d
	return nil
}

// ApplyEnv overlays LIARSBAR_* environment variables
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validateAddress(c.Server.Address); err != nil {
		return fmt.Errorf("server.address: %w", err)
	}
	if err := validateAddress(c.Server.AdminAddress); err != nil {
		return fmt.Errorf("server.admin_address: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("server.log_level: %w", err)
	}

	if c.Game.AdvanceDelay <= 0 {
		return fmt.Errorf("game.advance_delay must be positive, got %s", c.Game.AdvanceDelay)
	}
	if c.Game.RevealDelay <= 0 {
		return fmt.Errorf("game.reveal_delay must be positive, got %s", c.Game.RevealDelay)
	}

	if err := c.SequenceParams().Validate(); err != nil {
		return err
	}

	return nil
}

func validateAddress(addr string) error {
	if addr == "" {
		return errors.New("must not be empty")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level
func (c *Config) Level() (log.Level, error) {
	return log.ParseLevel(c.Server.LogLevel)
}

// SequenceParams returns the sequence parameters
func (c *Config) SequenceParams() sequence.Params {
	return sequence.Params{
		Seed:       c.Sequence.Seed,
		Multiplier: c.Sequence.Multiplier,
		Additive:   c.Sequence.Additive,
		Modulus:    c.Sequence.Modulus,
	}
}

// RoomConfig returns the settings a room is created with
func (c *Config) RoomConfig() game.RoomConfig {
	return game.RoomConfig{
		Sequence:     c.SequenceParams(),
		AdvanceDelay: c.Game.AdvanceDelay,
		RevealDelay:  c.Game.RevealDelay,
	}
}
