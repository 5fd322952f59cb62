// Package createcmder provides the create command, which validates, uploads
// and registers a skill either locally or through a running API server.
package createcmder

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillgate/api"
	"github.com/papercomputeco/skillgate/cmd/skillgate/stack"
	"github.com/papercomputeco/skillgate/pkg/cliui"
	"github.com/papercomputeco/skillgate/pkg/config"
	"github.com/papercomputeco/skillgate/pkg/logger"
	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/provision"
)

type CreateCommander struct {
	flags config.FlagSet

	name         string
	manifestFile string
	displayName  string
	description  string
	userID       string
	tenantID     string
	root         string
	remote       bool
	jsonOutput   bool
	debug        bool
	configDir    string

	// Pipeline flags, bound to viper in PreRunE.
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
	apiTarget       string

	cfg *config.Config
	out io.Writer
}

const createLongDesc string = `Create a skill from a manifest and its scripts.

Every .py script is validated against the safety policy first; nothing is
stored if any script fails. The manifest and scripts are then uploaded to the
vault under skills/<name>/ and the skill is registered for --user.

Script paths are stored relative to --root (default: the current directory).

With --remote the request is sent to the API server at client.api_target
instead of running the pipeline locally.

Examples:
  skillgate create weather --user alice --manifest SKILL.md main.py lib/fetch.py
  skillgate create weather --user alice --manifest SKILL.md --vault-backend s3 --s3-bucket skills main.py
  skillgate create weather --user alice --manifest SKILL.md --remote main.py`

const createShortDesc string = "Validate, upload and register a skill"

func NewCreateCmd() *cobra.Command {
	cmder := &CreateCommander{
		flags: config.ServerFlags,
	}

	cmd := &cobra.Command{
		Use:   "create <name> <script>...",
		Short: createShortDesc,
		Long:  createLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flags, config.ServerFlagKeys)
			config.BindRegisteredFlags(v, cmd, config.APIFlags, []string{config.FlagAPITarget})

			cmder.configDir = configDir
			cmder.cfg = config.FromViper(v)
			cmder.apiTarget = v.GetString("client.api_target")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.out = cmd.OutOrStdout()
			cmder.name = args[0]
			return cmder.run(cmd, args[1:])
		},
	}

	cmd.Flags().StringVarP(&cmder.manifestFile, "manifest", "m", "", "Path to the skill manifest (SKILL.md)")
	cmd.Flags().StringVar(&cmder.displayName, "display-name", "", "Human-readable skill name (default: the skill name)")
	cmd.Flags().StringVar(&cmder.description, "description", "", "Short description of the skill")
	cmd.Flags().StringVarP(&cmder.userID, "user", "u", "", "User the skill is registered for")
	cmd.Flags().StringVar(&cmder.tenantID, "tenant", "", "Tenant of the user")
	cmd.Flags().StringVar(&cmder.root, "root", ".", "Directory script paths are relative to")
	cmd.Flags().BoolVar(&cmder.remote, "remote", false, "Send the skill to the API server instead of provisioning locally")
	cmd.Flags().BoolVar(&cmder.jsonOutput, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("manifest")
	_ = cmd.MarkFlagRequired("user")

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
	config.AddStringFlag(cmd, config.APIFlags, config.FlagAPITarget, &cmder.apiTarget)

	return cmd
}

func (c *CreateCommander) run(cmd *cobra.Command, scriptFiles []string) error {
	log := logger.New(logger.WithDebug(c.debug), logger.WithFormat(logger.FormatPretty), logger.WithWriter(cmd.ErrOrStderr()))

	req, err := c.request(scriptFiles)
	if err != nil {
		return err
	}

	var resp provision.Response
	if c.remote {
		log.Debug("sending skill to API server", "target", c.apiTarget, "skill", req.Name)
		resp, err = c.createRemote(cmd, req)
	} else {
		resp, err = c.createLocal(cmd, req, log)
	}
	if err != nil {
		return err
	}

	if err := c.print(resp); err != nil {
		return err
	}
	if resp.Status != "success" {
		return fmt.Errorf("skill %q was not created: %s", req.Name, resp.Status)
	}
	return nil
}

func (c *CreateCommander) createLocal(cmd *cobra.Command, req provision.SkillRequest, log *slog.Logger) (provision.Response, error) {
	s, err := stack.Build(cmd.Context(), c.cfg, c.configDir, log)
	if err != nil {
		return provision.Response{}, err
	}
	defer s.Close()

	outcome, err := s.Pipeline.CreateSkill(cmd.Context(), req)
	if err != nil {
		return provision.Response{}, err
	}
	return provision.NewResponse(outcome), nil
}

func (c *CreateCommander) createRemote(cmd *cobra.Command, req provision.SkillRequest) (provision.Response, error) {
	timeout, err := c.cfg.Pipeline.Timeout()
	if err != nil {
		return provision.Response{}, err
	}

	// The server makes one call per artifact plus registration.
	client, err := api.NewClient(c.apiTarget, timeout*time.Duration(len(req.Scripts)+2))
	if err != nil {
		return provision.Response{}, err
	}

	return client.CreateSkill(cmd.Context(), req.Principal, api.CreateSkillRequest{
		Name:         req.Name,
		DisplayName:  req.DisplayName,
		Description:  req.Description,
		ManifestText: req.Manifest,
		Scripts:      provision.ScriptList(req.Scripts),
	})
}

// request reads the manifest and scripts from disk.
func (c *CreateCommander) request(scriptFiles []string) (provision.SkillRequest, error) {
	manifest, err := os.ReadFile(c.manifestFile)
	if err != nil {
		return provision.SkillRequest{}, fmt.Errorf("reading manifest: %w", err)
	}

	root, err := filepath.Abs(c.root)
	if err != nil {
		return provision.SkillRequest{}, fmt.Errorf("resolving root: %w", err)
	}

	scripts := make([]provision.Script, 0, len(scriptFiles))
	for _, file := range scriptFiles {
		abs, err := filepath.Abs(file)
		if err != nil {
			return provision.SkillRequest{}, fmt.Errorf("resolving %s: %w", file, err)
		}

		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return provision.SkillRequest{}, fmt.Errorf("resolving %s: %w", file, err)
		}

		src, err := os.ReadFile(abs)
		if err != nil {
			return provision.SkillRequest{}, fmt.Errorf("reading %s: %w", file, err)
		}

		scripts = append(scripts, provision.Script{Path: filepath.ToSlash(rel), Source: string(src)})
	}

	return provision.SkillRequest{
		Principal:   principal.Principal{UserID: c.userID, TenantID: c.tenantID},
		Name:        c.name,
		DisplayName: c.displayName,
		Description: c.description,
		Manifest:    string(manifest),
		Scripts:     scripts,
	}, nil
}

func (c *CreateCommander) print(resp provision.Response) error {
	if c.jsonOutput {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encoding response: %w", err)
		}
		return nil
	}

	fmt.Fprintln(c.out)
	switch resp.Status {
	case "success":
		fmt.Fprintf(c.out, "  %s %s\n", cliui.SuccessMark, resp.Message)
		if resp.Skill != nil {
			fmt.Fprintf(c.out, "      %s %s\n", cliui.KeyStyle.Render("id:"), cliui.ValueStyle.Render(resp.Skill.ID))
			fmt.Fprintf(c.out, "      %s %s\n", cliui.KeyStyle.Render("path:"), cliui.ValueStyle.Render(resp.Skill.StoragePath))
		}
	case "rejected":
		cliui.Report(c.out, resp.File, resp.ValidationErrors)
	default:
		cliui.Report(c.out, c.name, []string{resp.Error})
		if resp.Path != "" {
			fmt.Fprintf(c.out, "      %s %s\n", cliui.KeyStyle.Render("path:"), cliui.DimStyle.Render(resp.Path))
		}
	}
	fmt.Fprintln(c.out)
	return nil
}
