package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdemtrainer/internal/bot"
)

// Config represents the complete trainer configuration
type Config struct {
	Server    *ServerSettings  `hcl:"server,block"`
	Table     *TableSettings   `hcl:"table,block"`
	Opponents []OpponentConfig `hcl:"opponent,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address        string `hcl:"address,optional"`
	Port           int    `hcl:"port,optional"`
	LogLevel       string `hcl:"log_level,optional"`
	ThinkTimeMS    int    `hcl:"think_time_ms,optional"`
	ActionTimeout  int    `hcl:"action_timeout_seconds,optional"`
	GameTTLSeconds int    `hcl:"game_ttl_seconds,optional"`
	SnapshotDB     string `hcl:"snapshot_db,optional"`
}

// TableSettings defines the table every new game is dealt at
type TableSettings struct {
	SmallBlind    int `hcl:"small_blind,optional"`
	BigBlind      int `hcl:"big_blind,optional"`
	StartingStack int `hcl:"starting_stack,optional"`
	Seats         int `hcl:"seats,optional"`
}

// OpponentConfig defines one computer opponent. Opponents fill the seats
// after the human in order; missing ones cycle through the personalities.
type OpponentConfig struct {
	Name        string `hcl:"name,label"`
	Personality string `hcl:"personality"`
}

// DefaultConfig returns default trainer configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults.
func LoadConfig(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(src, filename)
}

// ParseConfig decodes HCL source and applies defaults.
func ParseConfig(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.GameTTLSeconds == 0 {
		c.Server.GameTTLSeconds = 3600
	}

	if c.Table == nil {
		c.Table = &TableSettings{}
	}
	if c.Table.SmallBlind == 0 && c.Table.BigBlind == 0 {
		c.Table.SmallBlind, c.Table.BigBlind = 5, 10
	}
	if c.Table.StartingStack == 0 {
		c.Table.StartingStack = c.Table.BigBlind * 100 // 100 big blinds
	}
	if c.Table.Seats == 0 {
		c.Table.Seats = 6
	}

	personalities := bot.Personalities()
	for i := len(c.Opponents); i < c.Table.Seats-1; i++ {
		c.Opponents = append(c.Opponents, OpponentConfig{
			Name:        fmt.Sprintf("bot%d", i+1),
			Personality: personalities[i%len(personalities)],
		})
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ThinkTimeMS < 0 || c.Server.ActionTimeout < 0 || c.Server.GameTTLSeconds < 0 {
		return fmt.Errorf("durations must not be negative")
	}

	t := c.Table
	if t.SmallBlind < 0 {
		return fmt.Errorf("table: small blind must not be negative")
	}
	if t.BigBlind <= 0 || t.BigBlind < t.SmallBlind {
		return fmt.Errorf("table: big blind must be positive and at least the small blind")
	}
	if t.StartingStack <= 0 {
		return fmt.Errorf("table: starting stack must be positive")
	}
	if t.Seats < 2 || t.Seats > 10 {
		return fmt.Errorf("table: seats must be between 2 and 10")
	}
	if len(c.Opponents) != t.Seats-1 {
		return fmt.Errorf("table: %d seats need %d opponents, got %d", t.Seats, t.Seats-1, len(c.Opponents))
	}

	for _, o := range c.Opponents {
		if _, err := bot.Canonical(o.Personality); err != nil {
			return fmt.Errorf("opponent %s: %w", o.Name, err)
		}
	}
	return nil
}

// Address returns the listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// ThinkTime is the pause before each computer decision.
func (c *Config) ThinkTime() time.Duration {
	return time.Duration(c.Server.ThinkTimeMS) * time.Millisecond
}

// ActionTimeout is how long the human may take before being folded. Zero
// waits forever.
func (c *Config) ActionTimeout() time.Duration {
	return time.Duration(c.Server.ActionTimeout) * time.Second
}

// GameTTL is how long an untouched game stays in memory.
func (c *Config) GameTTL() time.Duration {
	return time.Duration(c.Server.GameTTLSeconds) * time.Second
}
