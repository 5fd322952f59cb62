// Package initcmder provides the init command, which creates a local
// .skillgate/ directory with a preset config.toml.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillgate/pkg/cliui"
	"github.com/papercomputeco/skillgate/pkg/config"
)

const (
	dirName = ".skillgate"
)

const initLongDesc string = `Initialize a new .skillgate/ directory in the current working directory.

Creates a local .skillgate/ directory that takes precedence over the default
~/.skillgate/ directory, and writes a config.toml for the chosen preset:

  local     filesystem vault and SQLite registry under .skillgate/ (default)
  aws       S3 vault and PostgreSQL registry
  platform  documents API vault and BFF registry

An existing config.toml is left untouched.

Examples:
  skillgate init
  skillgate init --preset aws`

const initShortDesc string = "Initialize a local .skillgate/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Config preset ("+strings.Join(config.ValidPresetNames(), ", ")+")")

	return cmd
}

func runInit(w io.Writer, preset string) error {
	if preset == "" {
		preset = "local"
	}
	cfg, err := config.PresetConfig(preset)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .skillgate directory: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, err = os.Stat(cfger.GetTarget())
	switch {
	case err == nil:
		fmt.Fprintf(w, "  %s %s\n", cliui.DimStyle.Render("Already initialized:"), dir)
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("reading config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s Initialized %s %s\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(dir),
		cliui.DimStyle.Render("(preset: "+preset+")"),
	)
	return nil
}
