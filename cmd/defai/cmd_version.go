package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TeneoProtocolAI/defai-agent/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return printJSON(version.GetBuildInfo())
		}
		fmt.Println(version.GetFullVersionString())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
