package main

import (
	"os"

	skillgatecmder "github.com/papercomputeco/skillgate/cmd/skillgate"
)

func main() {
	cmd := skillgatecmder.NewSkillgateCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
