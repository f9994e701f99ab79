// Package viewer holds the viewer's YAML configuration.
package viewer

import (
	"fmt"
	"os"
	"time"

	"github.com/plumelab/plume/pkg/blob"
	"gopkg.in/yaml.v3"
)

type ScenesConfig struct {
	// Root directory holding scene categories (default "scenes").
	Root string

	// Category subdirectory; empty derives it from the app name.
	Category string
}

func (c *ScenesConfig) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Root     string `yaml:"root"`
		Category string `yaml:"category"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Root == "" {
		raw.Root = "scenes"
	}
	c.Root = raw.Root
	c.Category = raw.Category
	return nil
}

type AuthConfig struct {
	// Enabled switches bearer-token protection of mutating endpoints.
	Enabled bool

	// Secret signs tokens. Empty draws a random per-process key
	// (the startup log prints a token for it).
	Secret string

	// TTL of issued tokens (default 24h).
	TTL time.Duration
}

func (c *AuthConfig) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Enabled bool   `yaml:"enabled"`
		Secret  string `yaml:"secret"`
		TTL     string `yaml:"ttl"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	ttl := 24 * time.Hour
	if raw.TTL != "" {
		d, err := time.ParseDuration(raw.TTL)
		if err != nil {
			return fmt.Errorf("auth.ttl: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("auth.ttl must be positive, got %s", d)
		}
		ttl = d
	}

	c.Enabled = raw.Enabled
	c.Secret = raw.Secret
	c.TTL = ttl
	return nil
}

type RecordConfig struct {
	// Precision of checkpoint and frame snapshots.
	Precision blob.DType

	// FieldInterval records the named Fields every this many steps
	// (0 disables).
	FieldInterval int

	// Fields to record.
	Fields []string
}

func (c *RecordConfig) UnmarshalYAML(node *yaml.Node) error {
	raw := struct {
		Precision     string   `yaml:"precision"`
		FieldInterval int      `yaml:"field_interval"`
		Fields        []string `yaml:"fields"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	precision := blob.Float64
	if raw.Precision != "" {
		p, err := blob.ParseDType(raw.Precision)
		if err != nil {
			return fmt.Errorf("record.precision: %w", err)
		}
		precision = p
	}
	if raw.FieldInterval < 0 {
		return fmt.Errorf("record.field_interval must not be negative, got %d", raw.FieldInterval)
	}

	c.Precision = precision
	c.FieldInterval = raw.FieldInterval
	c.Fields = raw.Fields
	return nil
}

type Config struct {
	// Port the GUI server listens on (default 8050).
	Port int

	Scenes ScenesConfig
	Auth   AuthConfig
	Record RecordConfig

	// MaxResolution caps rendered grid axes (default 256; 0 = no cap).
	MaxResolution int

	// Database is the PostgreSQL DSN of the run registry; empty
	// disables the registry.
	Database string

	// CheckpointInterval saves parameters every this many steps
	// (0 disables automatic checkpoints).
	CheckpointInterval int

	// ValidationInterval runs validation every this many steps.
	ValidationInterval int
}

// Default is the configuration used when no file is given.
func Default() Config {
	return Config{
		Port:               8050,
		Scenes:             ScenesConfig{Root: "scenes"},
		Auth:               AuthConfig{TTL: 24 * time.Hour},
		Record:             RecordConfig{Precision: blob.Float64},
		MaxResolution:      256,
		ValidationInterval: 100,
	}
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	def := Default()
	raw := struct {
		Port               *int          `yaml:"port"`
		Scenes             *ScenesConfig `yaml:"scenes"`
		Auth               *AuthConfig   `yaml:"auth"`
		Record             *RecordConfig `yaml:"record"`
		MaxResolution      *int          `yaml:"max_resolution"`
		Database           string        `yaml:"database"`
		CheckpointInterval *int          `yaml:"checkpoint_interval"`
		ValidationInterval *int          `yaml:"validation_interval"`
	}{}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*c = def
	if raw.Port != nil {
		if *raw.Port < 1 || 65535 < *raw.Port {
			return fmt.Errorf("port %d is out of range", *raw.Port)
		}
		c.Port = *raw.Port
	}
	if raw.Scenes != nil {
		c.Scenes = *raw.Scenes
	}
	if raw.Auth != nil {
		c.Auth = *raw.Auth
	}
	if raw.Record != nil {
		c.Record = *raw.Record
	}
	if raw.MaxResolution != nil {
		if *raw.MaxResolution < 0 {
			return fmt.Errorf("max_resolution must not be negative, got %d", *raw.MaxResolution)
		}
		c.MaxResolution = *raw.MaxResolution
	}
	c.Database = raw.Database
	if raw.CheckpointInterval != nil {
		if *raw.CheckpointInterval < 0 {
			return fmt.Errorf("checkpoint_interval must not be negative")
		}
		c.CheckpointInterval = *raw.CheckpointInterval
	}
	if raw.ValidationInterval != nil {
		if *raw.ValidationInterval < 0 {
			return fmt.Errorf("validation_interval must not be negative")
		}
		c.ValidationInterval = *raw.ValidationInterval
	}
	return nil
}

// Load reads the config file. A missing file (or empty path) is not an
// error: the defaults apply.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}

	conf := Default()
	if err := yaml.Unmarshal(content, &conf); err != nil {
		return Config{}, err
	}
	return conf, nil
}
