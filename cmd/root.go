package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jirav",
	Short: "jirav - Jira avatar manager",
	Long:  `jirav manages Jira project and user avatars: list the built-in system avatars, upload a new image and confirm its crop.`,
}

func Execute() error {
	// Silence usage and errors to avoid cluttering output with Cobra defaults
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	return rootCmd.Execute()
}
