// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "attendance-admin",
	Short: "AttendanceAdmin tracks members, events and attendance of a community",
	Long: `AttendanceAdmin is a web service that tracks the members, departments, events
and attendance of a community. Access is decided by the acting role of a session
(admin, secretariat, responsable, user) and, for responsables, their department.`,
	Args: cobra.OnlyValidArgs,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "Directory holding main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
