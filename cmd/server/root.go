package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"employee-records/internal/config"
	"employee-records/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "employee-records",
	Short: "Employee records web application",
	Long: `Employee records web application. Usage:

	employee-records serve
	employee-records migrate up
	employee-records user create --username admin --password ... --role Admin --first-name Admin
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(config.Parse())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func setupLogging(cfg *config.Config) {
	slog.SetDefault(logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel))
}
