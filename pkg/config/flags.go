package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --vault-backend
// on both "skillgate serve" and "skillgate create").
type Flag struct {
	// Name is the long flag name (e.g. "vault-backend").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "vault.backend").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagAPITarget       = "api-target"
	FlagCreatePerMinute = "create-per-minute"
	FlagVaultBackend    = "vault-backend"
	FlagVaultDir        = "vault-dir"
	FlagS3Bucket        = "s3-bucket"
	FlagS3Region        = "s3-region"
	FlagS3Endpoint      = "s3-endpoint"
	FlagS3Prefix        = "s3-prefix"
	FlagGCSBucket       = "gcs-bucket"
	FlagGCSPrefix       = "gcs-prefix"
	FlagDocsURL         = "docs-url"
	FlagRegistryBackend = "registry-backend"
	FlagSQLite          = "sqlite"
	FlagPostgresDSN     = "postgres-dsn"
	FlagBFFURL          = "bff-url"
	FlagPolicyFile      = "policy"
	FlagKafkaBrokers    = "kafka-brokers"
	FlagKafkaTopic      = "kafka-topic"
	FlagCallTimeout     = "call-timeout"

	// The serve command uses "listen" as the flag name.
	FlagAPIListenStandalone = "api-listen-standalone"
)

// ServerFlags are the flags shared by every command that builds a
// provisioning pipeline (serve and create).
var ServerFlags = FlagSet{
	FlagVaultBackend:    {Name: "vault-backend", ViperKey: "vault.backend", Description: "Vault backend (inmemory, filesystem, s3, gcs, docsapi)"},
	FlagVaultDir:        {Name: "vault-dir", ViperKey: "vault.dir", Description: "Directory for the filesystem vault"},
	FlagS3Bucket:        {Name: "s3-bucket", ViperKey: "vault.s3_bucket", Description: "S3 bucket for the s3 vault"},
	FlagS3Region:        {Name: "s3-region", ViperKey: "vault.s3_region", Description: "AWS region for the s3 vault"},
	FlagS3Endpoint:      {Name: "s3-endpoint", ViperKey: "vault.s3_endpoint", Description: "Custom S3 endpoint (MinIO, LocalStack)"},
	FlagS3Prefix:        {Name: "s3-prefix", ViperKey: "vault.s3_prefix", Description: "Key prefix for the s3 vault"},
	FlagGCSBucket:       {Name: "gcs-bucket", ViperKey: "vault.gcs_bucket", Description: "GCS bucket for the gcs vault"},
	FlagGCSPrefix:       {Name: "gcs-prefix", ViperKey: "vault.gcs_prefix", Description: "Object prefix for the gcs vault"},
	FlagDocsURL:         {Name: "docs-url", ViperKey: "vault.docs_url", Description: "Documents API base URL for the docsapi vault"},
	FlagRegistryBackend: {Name: "registry-backend", ViperKey: "registry.backend", Description: "Registry backend (inmemory, sqlite, postgres, bff)"},
	FlagSQLite:          {Name: "sqlite", Shorthand: "s", ViperKey: "registry.sqlite_path", Description: "Path to SQLite registry database"},
	FlagPostgresDSN:     {Name: "postgres-dsn", ViperKey: "registry.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagBFFURL:          {Name: "bff-url", ViperKey: "registry.bff_url", Description: "BFF base URL for the bff registry"},
	FlagPolicyFile:      {Name: "policy", ViperKey: "policy.file", Description: "Path to a YAML denylist policy file"},
	FlagKafkaBrokers:    {Name: "kafka-brokers", ViperKey: "events.kafka_brokers", Description: "Comma-separated Kafka brokers for skill events"},
	FlagKafkaTopic:      {Name: "kafka-topic", ViperKey: "events.kafka_topic", Description: "Kafka topic for skill events"},
	FlagCallTimeout:     {Name: "call-timeout", ViperKey: "pipeline.call_timeout", Description: "Timeout for each vault or registry call"},
}

// APIFlags are the flags of the API server and its clients.
var APIFlags = FlagSet{
	FlagAPIListenStandalone: {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for API server to listen on"},
	FlagCreatePerMinute:     {Name: "create-per-minute", ViperKey: "api.create_per_minute", Description: "Per-user skill creations per minute (0 disables the limit)"},
	FlagAPITarget:           {Name: "api-target", ViperKey: "client.api_target", Description: "skillgate API server URL"},
}

// ServerFlagKeys lists the ServerFlags registry keys in display order.
var ServerFlagKeys = []string{
	FlagVaultBackend,
	FlagVaultDir,
	FlagS3Bucket,
	FlagS3Region,
	FlagS3Endpoint,
	FlagS3Prefix,
	FlagGCSBucket,
	FlagGCSPrefix,
	FlagDocsURL,
	FlagRegistryBackend,
	FlagSQLite,
	FlagPostgresDSN,
	FlagBFFURL,
	FlagPolicyFile,
	FlagKafkaBrokers,
	FlagKafkaTopic,
	FlagCallTimeout,
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
