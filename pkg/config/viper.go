package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/skillgate/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the SKILLGATE_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (SKILLGATE_API_LISTEN, SKILLGATE_VAULT_BACKEND, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: SKILLGATE_API_LISTEN, SKILLGATE_REGISTRY_SQLITE_PATH, etc.
	v.SetEnvPrefix("SKILLGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Vault
	v.SetDefault("vault.backend", d.Vault.Backend)
	v.SetDefault("vault.dir", d.Vault.Dir)
	v.SetDefault("vault.s3_bucket", d.Vault.S3Bucket)
	v.SetDefault("vault.s3_region", d.Vault.S3Region)
	v.SetDefault("vault.s3_endpoint", d.Vault.S3Endpoint)
	v.SetDefault("vault.s3_prefix", d.Vault.S3Prefix)
	v.SetDefault("vault.gcs_bucket", d.Vault.GCSBucket)
	v.SetDefault("vault.gcs_prefix", d.Vault.GCSPrefix)
	v.SetDefault("vault.docs_url", d.Vault.DocsURL)

	// Registry
	v.SetDefault("registry.backend", d.Registry.Backend)
	v.SetDefault("registry.sqlite_path", d.Registry.SQLitePath)
	v.SetDefault("registry.postgres_dsn", d.Registry.PostgresDSN)
	v.SetDefault("registry.bff_url", d.Registry.BFFURL)

	// API
	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("api.create_per_minute", d.API.CreatePerMinute)

	// Client
	v.SetDefault("client.api_target", d.Client.APITarget)

	// Policy
	v.SetDefault("policy.file", d.Policy.File)

	// Events
	v.SetDefault("events.kafka_brokers", d.Events.KafkaBrokers)
	v.SetDefault("events.kafka_topic", d.Events.KafkaTopic)

	// Pipeline
	v.SetDefault("pipeline.call_timeout", d.Pipeline.CallTimeout)
}

// FromViper materializes the resolved configuration (flags, env, file and
// defaults) into a Config.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Vault: VaultConfig{
			Backend:    v.GetString("vault.backend"),
			Dir:        v.GetString("vault.dir"),
			S3Bucket:   v.GetString("vault.s3_bucket"),
			S3Region:   v.GetString("vault.s3_region"),
			S3Endpoint: v.GetString("vault.s3_endpoint"),
			S3Prefix:   v.GetString("vault.s3_prefix"),
			GCSBucket:  v.GetString("vault.gcs_bucket"),
			GCSPrefix:  v.GetString("vault.gcs_prefix"),
			DocsURL:    v.GetString("vault.docs_url"),
		},
		Registry: RegistryConfig{
			Backend:     v.GetString("registry.backend"),
			SQLitePath:  v.GetString("registry.sqlite_path"),
			PostgresDSN: v.GetString("registry.postgres_dsn"),
			BFFURL:      v.GetString("registry.bff_url"),
		},
		API: APIConfig{
			Listen:          v.GetString("api.listen"),
			CreatePerMinute: v.GetUint("api.create_per_minute"),
		},
		Client: ClientConfig{
			APITarget: v.GetString("client.api_target"),
		},
		Policy: PolicyConfig{
			File: v.GetString("policy.file"),
		},
		Events: EventsConfig{
			KafkaBrokers: v.GetString("events.kafka_brokers"),
			KafkaTopic:   v.GetString("events.kafka_topic"),
		},
		Pipeline: PipelineConfig{
			CallTimeout: v.GetString("pipeline.call_timeout"),
		},
	}
}
