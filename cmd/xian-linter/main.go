package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "xian-linter",
	Short: "Static analysis for Xian smart contracts",
	Long:  `xian-linter checks contract source against the syntax checker and the contracting rule set, as a local command or an HTTP service.`,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(rulesCmd)

	rootCmd.PersistentFlags().String("config", "", "path to TOML config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
