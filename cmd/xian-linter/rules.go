package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Endogen/xian-linter/catalog"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the contract rule catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := catalog.Load()
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		for _, r := range rules {
			bold.Printf("%-4s", r.Code)
			fmt.Println(r.Title)
		}
		return nil
	},
}
