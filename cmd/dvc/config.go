package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration in effect for this repository: the defaults
overlaid with whatever .dvc/config.json declares.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		root := mustRepoRoot()
		cfg := mustLoadConfig(root)

		output, err := FormatResponse(cfg, FormatJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(output)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
