// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/drivevault/pkg/api"
	"github.com/yeisme/drivevault/pkg/app"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "drivevault",
		Short: "A multi-user file storage service with folder sharing and quotas",
	}

	serveCmd = &cobra.Command{
		Use:     "serve",
		Short:   "start the HTTP server",
		Aliases: []string{"server", "run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app.NewApp(configPath)
			defer func() { _ = a.Close() }()

			api.RegisterGroup(a.Engine)

			return a.Run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")

	rootCmd.AddCommand(serveCmd)
	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
