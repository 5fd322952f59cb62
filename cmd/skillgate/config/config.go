// Package configcmder provides the config command for managing persistent
// skillgate configuration stored in the .skillgate/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent skillgate configuration.

Configuration is stored as config.toml in the .skillgate/ directory and
provides default values for command flags. CLI flags and SKILLGATE_*
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  vault.backend, vault.dir, vault.s3_bucket, vault.s3_region,
  vault.s3_endpoint, vault.s3_prefix, vault.gcs_bucket, vault.gcs_prefix,
  vault.docs_url,
  registry.backend, registry.sqlite_path, registry.postgres_dsn, registry.bff_url,
  api.listen, api.create_per_minute, client.api_target,
  policy.file, events.kafka_brokers, events.kafka_topic,
  pipeline.call_timeout

The internal API key is read from SKILLGATE_INTERNAL_API_KEY and is never
stored in config.toml.

Use subcommands to get, set, or list configuration values:
  skillgate config set <key> <value>    Set a configuration value
  skillgate config get <key>            Get a configuration value
  skillgate config list                 List all configuration values

Examples:
  skillgate config set vault.backend s3
  skillgate config set registry.postgres_dsn postgres://localhost/skillgate
  skillgate config get vault.backend
  skillgate config list`

const configShortDesc string = "Manage persistent skillgate configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
