// Package servecmder provides the serve command, which runs the skillgate API
// server with a provisioning pipeline built from config.
package servecmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillgate/api"
	"github.com/papercomputeco/skillgate/cmd/skillgate/stack"
	"github.com/papercomputeco/skillgate/pkg/config"
	"github.com/papercomputeco/skillgate/pkg/logger"
)

type ServeCommander struct {
	flags config.FlagSet

	listen          string
	createPerMinute uint
	logJSON         bool
	logFile         string
	debug           bool
	configDir       string

	vaultBackend    string
	vaultDir        string
	s3Bucket        string
	s3Region        string
	s3Endpoint      string
	s3Prefix        string
	gcsBucket       string
	gcsPrefix       string
	docsURL         string
	registryBackend string
	sqlitePath      string
	postgresDSN     string
	bffURL          string
	policyFile      string
	kafkaBrokers    string
	kafkaTopic      string
	callTimeout     string

	cfg    *config.Config
	logger *slog.Logger
	stderr io.Writer
}

const serveLongDesc string = `Run the skillgate API server.

The server exposes:
  POST /v1/validate        Validate a single script
  POST /v1/skills          Validate, upload and register a skill
  GET  /v1/skills          List the caller's skills
  GET  /v1/skills/{name}   Get one of the caller's skills
  /mcp                     MCP tools (validate_code, create_skill)

Callers identify themselves with the X-User-ID and X-Tenant-ID headers.

Examples:
  skillgate serve
  skillgate serve --listen :9000 --registry-backend postgres --postgres-dsn postgres://...
  skillgate serve --vault-backend s3 --s3-bucket skills --kafka-brokers kafka:9092
  skillgate serve --log-file /var/log/skillgate.jsonl`

const serveShortDesc string = "Run the API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{
		flags: config.ServerFlags,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flags, config.ServerFlagKeys)
			config.BindRegisteredFlags(v, cmd, config.APIFlags, []string{
				config.FlagAPIListenStandalone,
				config.FlagCreatePerMinute,
			})

			cmder.configDir = configDir
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.stderr = cmd.ErrOrStderr()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.APIFlags, config.FlagAPIListenStandalone, &cmder.listen)
	config.AddUintFlag(cmd, config.APIFlags, config.FlagCreatePerMinute, &cmder.createPerMinute)
	cmd.Flags().BoolVar(&cmder.logJSON, "log-json", false, "Write JSON logs")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")

	fs := cmder.flags
	config.AddStringFlag(cmd, fs, config.FlagVaultBackend, &cmder.vaultBackend)
	config.AddStringFlag(cmd, fs, config.FlagVaultDir, &cmder.vaultDir)
	config.AddStringFlag(cmd, fs, config.FlagS3Bucket, &cmder.s3Bucket)
	config.AddStringFlag(cmd, fs, config.FlagS3Region, &cmder.s3Region)
	config.AddStringFlag(cmd, fs, config.FlagS3Endpoint, &cmder.s3Endpoint)
	config.AddStringFlag(cmd, fs, config.FlagS3Prefix, &cmder.s3Prefix)
	config.AddStringFlag(cmd, fs, config.FlagGCSBucket, &cmder.gcsBucket)
	config.AddStringFlag(cmd, fs, config.FlagGCSPrefix, &cmder.gcsPrefix)
	config.AddStringFlag(cmd, fs, config.FlagDocsURL, &cmder.docsURL)
	config.AddStringFlag(cmd, fs, config.FlagRegistryBackend, &cmder.registryBackend)
	config.AddStringFlag(cmd, fs, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, fs, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringFlag(cmd, fs, config.FlagBFFURL, &cmder.bffURL)
	config.AddStringFlag(cmd, fs, config.FlagPolicyFile, &cmder.policyFile)
	config.AddStringFlag(cmd, fs, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, fs, config.FlagKafkaTopic, &cmder.kafkaTopic)
	config.AddStringFlag(cmd, fs, config.FlagCallTimeout, &cmder.callTimeout)

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	format := logger.FormatPretty
	if c.logJSON {
		format = logger.FormatJSON
	}
	if c.stderr == nil {
		c.stderr = os.Stderr
	}
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithFormat(format),
		logger.WithWriter(c.stderr),
	)

	if c.logFile != "" {
		logFile, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer logFile.Close()

		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithDebug(c.debug),
			logger.WithFormat(logger.FormatJSON),
			logger.WithSource(true),
			logger.WithWriter(logFile),
		))
	}

	s, err := stack.Build(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	reader := s.Reader()
	if reader == nil {
		c.logger.Warn("registry backend cannot list skills, read routes disabled",
			"registry", c.cfg.Registry.Backend,
		)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr:      c.cfg.API.Listen,
		CreatePerMinute: c.cfg.API.CreatePerMinute,
	}, s.Pipeline, reader, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("serving skills",
		"vault", c.cfg.Vault.Backend,
		"registry", c.cfg.Registry.Backend,
		"policy", policyName(c.cfg.Policy.File),
	)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal, cancellation or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
		c.logger.Info("context done, shutting down")
	}

	if err := server.Shutdown(); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

func policyName(file string) string {
	if file == "" {
		return "builtin"
	}
	return file
}
