package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Endogen/xian-linter/engine"
	"github.com/Endogen/xian-linter/lint"
)

var lintWhitelist string

// errIssuesFound signals a completed run that found diagnostics. It unwinds
// through cobra normally; main translates any Execute error into exit code 1.
var errIssuesFound = errors.New("issues found")

var lintCmd = &cobra.Command{
	Use:   "lint <file>",
	Short: "Lint a contract file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		patterns := engine.DefaultPatterns().Union(engine.ParsePatterns(lintWhitelist))
		src := lint.SourceText{Content: string(content), Filename: filepath.Base(args[0])}

		result := engine.New().Lint(cmd.Context(), src, patterns)
		if result.Success {
			color.Green("%s: no issues found", src.Filename)
			return nil
		}

		red := color.New(color.FgRed)
		for _, d := range result.Errors {
			if d.Position != nil {
				// positions are zero-based on the wire; print 1-based for humans
				red.Printf("%s:%d:%d: ", src.Filename, d.Position.Line+1, d.Position.Column+1)
			} else {
				red.Printf("%s: ", src.Filename)
			}
			fmt.Println(d.Message)
		}
		fmt.Printf("%d issue(s)\n", len(result.Errors))

		// diagnostics already printed; suppress cobra's own reporting
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errIssuesFound
	},
}

func init() {
	lintCmd.Flags().StringVar(&lintWhitelist, "whitelist", "", "comma-separated extra whitelist patterns")
}
