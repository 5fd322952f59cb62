package config

import (
	"os"
	"time"
)

const (
	defaultVaultBackend    = "filesystem"
	defaultRegistryBackend = "sqlite"

	defaultAPIListen       = ":8090"
	defaultClientAPITarget = "http://localhost:8090"
	defaultCreatePerMinute = 30

	defaultKafkaTopic = "skillgate.skills"

	defaultCallTimeout = 30 * time.Second

	// InternalAPIKeyEnv names the environment variable holding the key sent
	// to the platform's internal services. It is never written to config.toml.
	InternalAPIKeyEnv = "SKILLGATE_INTERNAL_API_KEY"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Vault: VaultConfig{
			Backend: defaultVaultBackend,
		},
		Registry: RegistryConfig{
			Backend: defaultRegistryBackend,
		},
		API: APIConfig{
			Listen:          defaultAPIListen,
			CreatePerMinute: defaultCreatePerMinute,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Events: EventsConfig{
			KafkaTopic: defaultKafkaTopic,
		},
		Pipeline: PipelineConfig{
			CallTimeout: defaultCallTimeout.String(),
		},
	}
}

// InternalAPIKey returns the internal API key from the environment.
func InternalAPIKey() string {
	return os.Getenv(InternalAPIKeyEnv)
}
