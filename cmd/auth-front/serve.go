package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgellow/auth-front/internal"
	"github.com/dgellow/auth-front/internal/config"
	"github.com/dgellow/auth-front/internal/log"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := log.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
				return fmt.Errorf("failed to configure logging: %w", err)
			}
			log.SetService(cfg.Server.Name)

			log.LogInfoWithFields("main", "Starting auth-front", map[string]any{
				"version":  cmd.Root().Version,
				"config":   configPath,
				"logLevel": log.GetLogLevel(),
			})

			app, err := internal.NewAuthFront(cfg)
			if err != nil {
				return fmt.Errorf("failed to build application: %w", err)
			}
			return app.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
