package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/drover-dev/drover/internal/interfaces/cli/migrate"
	"github.com/drover-dev/drover/internal/interfaces/cli/server"
	"github.com/drover-dev/drover/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "drover",
		Short:   "Drover - fleet software update orchestration",
		Long:    `Drover is a fleet update orchestration server with a version registry, client registry, and update ledger, plus migration tools.`,
		Version: version.BuildInfo(),
	}
	rootCmd.SetVersionTemplate("drover {{.Version}}\n")

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
