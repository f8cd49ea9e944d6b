package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/adhikar-ai/adhikar/config"
	"github.com/adhikar-ai/adhikar/internal/server"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	var addr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			if addr != "" {
				cfg.Server.Address = addr
			}
			return server.Run(context.Background(), cfg)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return serve
}
