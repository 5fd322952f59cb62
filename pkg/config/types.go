package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent skillgate configuration stored as
// config.toml in the .skillgate/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version  int            `toml:"version"`
	Vault    VaultConfig    `toml:"vault"`
	Registry RegistryConfig `toml:"registry"`
	API      APIConfig      `toml:"api"`
	Client   ClientConfig   `toml:"client"`
	Policy   PolicyConfig   `toml:"policy"`
	Events   EventsConfig   `toml:"events"`
	Pipeline PipelineConfig `toml:"pipeline"`
}

// VaultConfig selects and configures the artifact store skills are uploaded to.
type VaultConfig struct {
	Backend    string `toml:"backend,omitempty"`
	Dir        string `toml:"dir,omitempty"`
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	GCSBucket  string `toml:"gcs_bucket,omitempty"`
	GCSPrefix  string `toml:"gcs_prefix,omitempty"`
	DocsURL    string `toml:"docs_url,omitempty"`
}

// RegistryConfig selects and configures the skill metadata registry.
type RegistryConfig struct {
	Backend     string `toml:"backend,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
	BFFURL      string `toml:"bff_url,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`

	// CreatePerMinute is the per-user budget for POST /v1/skills.
	CreatePerMinute uint `toml:"create_per_minute,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running API
// server. Values are full URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// PolicyConfig points at an optional denylist policy file. Empty means the
// built-in policy.
type PolicyConfig struct {
	File string `toml:"file,omitempty"`
}

// EventsConfig configures the skill event stream. No brokers disables it.
type EventsConfig struct {
	KafkaBrokers string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string `toml:"kafka_topic,omitempty"`
}

// PipelineConfig holds provisioning pipeline settings.
type PipelineConfig struct {
	CallTimeout string `toml:"call_timeout,omitempty"`
}

// Timeout parses CallTimeout, falling back to the default when empty.
func (p PipelineConfig) Timeout() (time.Duration, error) {
	if p.CallTimeout == "" {
		return defaultCallTimeout, nil
	}
	d, err := time.ParseDuration(p.CallTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid pipeline.call_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid pipeline.call_timeout: must be positive, got %s", d)
	}
	return d, nil
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"vault.backend": {
		get: func(c *Config) string { return c.Vault.Backend },
		set: func(c *Config, v string) error { c.Vault.Backend = v; return nil },
	},
	"vault.dir": {
		get: func(c *Config) string { return c.Vault.Dir },
		set: func(c *Config, v string) error { c.Vault.Dir = v; return nil },
	},
	"vault.s3_bucket": {
		get: func(c *Config) string { return c.Vault.S3Bucket },
		set: func(c *Config, v string) error { c.Vault.S3Bucket = v; return nil },
	},
	"vault.s3_region": {
		get: func(c *Config) string { return c.Vault.S3Region },
		set: func(c *Config, v string) error { c.Vault.S3Region = v; return nil },
	},
	"vault.s3_endpoint": {
		get: func(c *Config) string { return c.Vault.S3Endpoint },
		set: func(c *Config, v string) error { c.Vault.S3Endpoint = v; return nil },
	},
	"vault.s3_prefix": {
		get: func(c *Config) string { return c.Vault.S3Prefix },
		set: func(c *Config, v string) error { c.Vault.S3Prefix = v; return nil },
	},
	"vault.gcs_bucket": {
		get: func(c *Config) string { return c.Vault.GCSBucket },
		set: func(c *Config, v string) error { c.Vault.GCSBucket = v; return nil },
	},
	"vault.gcs_prefix": {
		get: func(c *Config) string { return c.Vault.GCSPrefix },
		set: func(c *Config, v string) error { c.Vault.GCSPrefix = v; return nil },
	},
	"vault.docs_url": {
		get: func(c *Config) string { return c.Vault.DocsURL },
		set: func(c *Config, v string) error { c.Vault.DocsURL = v; return nil },
	},
	"registry.backend": {
		get: func(c *Config) string { return c.Registry.Backend },
		set: func(c *Config, v string) error { c.Registry.Backend = v; return nil },
	},
	"registry.sqlite_path": {
		get: func(c *Config) string { return c.Registry.SQLitePath },
		set: func(c *Config, v string) error { c.Registry.SQLitePath = v; return nil },
	},
	"registry.postgres_dsn": {
		get: func(c *Config) string { return c.Registry.PostgresDSN },
		set: func(c *Config, v string) error { c.Registry.PostgresDSN = v; return nil },
	},
	"registry.bff_url": {
		get: func(c *Config) string { return c.Registry.BFFURL },
		set: func(c *Config, v string) error { c.Registry.BFFURL = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"api.create_per_minute": {
		get: func(c *Config) string {
			if c.API.CreatePerMinute == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.API.CreatePerMinute), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for api.create_per_minute: %w", err)
			}
			c.API.CreatePerMinute = uint(n)
			return nil
		},
	},
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"policy.file": {
		get: func(c *Config) string { return c.Policy.File },
		set: func(c *Config, v string) error { c.Policy.File = v; return nil },
	},
	"events.kafka_brokers": {
		get: func(c *Config) string { return c.Events.KafkaBrokers },
		set: func(c *Config, v string) error { c.Events.KafkaBrokers = v; return nil },
	},
	"events.kafka_topic": {
		get: func(c *Config) string { return c.Events.KafkaTopic },
		set: func(c *Config, v string) error { c.Events.KafkaTopic = v; return nil },
	},
	"pipeline.call_timeout": {
		get: func(c *Config) string { return c.Pipeline.CallTimeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for pipeline.call_timeout: %w", err)
			}
			c.Pipeline.CallTimeout = v
			return nil
		},
	},
}
