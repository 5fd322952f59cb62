package main

import (
	"os"

	servecmder "github.com/papercomputeco/skillgate/cmd/skillgate/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "skillgateapi"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .skillgate/ config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
