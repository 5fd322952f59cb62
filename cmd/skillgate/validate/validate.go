// Package validatecmder provides the validate command, which checks skill
// scripts against the safety policy without storing anything.
package validatecmder

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillgate/cmd/skillgate/stack"
	"github.com/papercomputeco/skillgate/pkg/cliui"
	"github.com/papercomputeco/skillgate/pkg/config"
	"github.com/papercomputeco/skillgate/pkg/logger"
	"github.com/papercomputeco/skillgate/pkg/policy"
)

type ValidateCommander struct {
	configDir  string
	policyFile string
	jsonOutput bool
	debug      bool

	in  io.Reader
	out io.Writer
}

// fileResult is one entry of the --json report.
type fileResult struct {
	Filename string   `json:"filename"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
}

const validateLongDesc string = `Validate skill scripts against the safety policy.

Each file is parsed as Python 3 and checked for blocked imports, calls and
attribute accesses. Use "-" to read a script from stdin. The command exits
non-zero when any file fails validation.

Examples:
  skillgate validate main.py helpers/util.py
  skillgate validate --policy ./policy.yaml main.py
  cat main.py | skillgate validate --json -`

const validateShortDesc string = "Validate skill scripts"

func NewValidateCmd() *cobra.Command {
	cmder := &ValidateCommander{}

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: validateShortDesc,
		Long:  validateLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.ServerFlags, []string{config.FlagPolicyFile})

			cmder.configDir = configDir
			cmder.policyFile = v.GetString("policy.file")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd, args)
		},
	}

	config.AddStringFlag(cmd, config.ServerFlags, config.FlagPolicyFile, &cmder.policyFile)
	cmd.Flags().BoolVar(&cmder.jsonOutput, "json", false, "Print results as JSON")

	return cmd
}

func (c *ValidateCommander) run(cmd *cobra.Command, files []string) error {
	log := logger.New(logger.WithDebug(c.debug), logger.WithFormat(logger.FormatPretty), logger.WithWriter(cmd.ErrOrStderr()))

	cfg := config.NewDefaultConfig()
	cfg.Policy.File = c.policyFile
	gate, err := stack.NewGate(cfg)
	if err != nil {
		return err
	}

	results := make([]fileResult, 0, len(files))
	failed := 0
	for _, name := range files {
		src, err := c.read(name)
		if err != nil {
			return err
		}

		filename := name
		if name == "-" {
			filename = "<stdin>"
		}

		result := gate.Validate(cmd.Context(), policy.SourceUnit{Filename: filename, Text: string(src)})
		log.Debug("validated script", "file", filename, "valid", result.Valid, "diagnostics", len(result.Diagnostics))
		if !result.Valid {
			failed++
		}
		results = append(results, fileResult{Filename: filename, Valid: result.Valid, Errors: result.Errors()})
	}

	if c.jsonOutput {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
	} else {
		fmt.Fprintln(c.out)
		for _, r := range results {
			cliui.Report(c.out, r.Filename, r.Errors)
		}
		fmt.Fprintln(c.out)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(files))
	}
	return nil
}

func (c *ValidateCommander) read(name string) ([]byte, error) {
	if name == "-" {
		src, err := io.ReadAll(c.in)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return src, nil
	}

	src, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return src, nil
}
