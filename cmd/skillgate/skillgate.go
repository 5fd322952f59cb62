// Package skillgatecmder
package skillgatecmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/skillgate/cmd/skillgate/config"
	createcmder "github.com/papercomputeco/skillgate/cmd/skillgate/create"
	initcmder "github.com/papercomputeco/skillgate/cmd/skillgate/init"
	servecmder "github.com/papercomputeco/skillgate/cmd/skillgate/serve"
	validatecmder "github.com/papercomputeco/skillgate/cmd/skillgate/validate"
	versioncmder "github.com/papercomputeco/skillgate/cmd/version"
)

const skillgateLongDesc string = `Skillgate validates and provisions agent skills.

Skill scripts are checked against a denylist of modules, calls and attributes
before anything is stored. Accepted skills are uploaded to a vault and
registered for the submitting user.

  skillgate validate main.py       Check scripts against the policy
  skillgate create weather ...     Validate, upload and register a skill
  skillgate serve                  Run the API server`

const skillgateShortDesc string = "Skillgate - Skill Safety Gate"

func NewSkillgateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "skillgate",
		Short:         skillgateShortDesc,
		Long:          skillgateLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .skillgate/ config directory")

	// Add subcommands
	cmd.AddCommand(validatecmder.NewValidateCmd())
	cmd.AddCommand(createcmder.NewCreateCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
