package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Endogen/xian-linter/config"
	"github.com/Endogen/xian-linter/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the lint HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		srv, err := server.New(cfg, log)
		if err != nil {
			return err
		}

		return srv.Run()
	},
}
