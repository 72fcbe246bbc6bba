package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/httplog/v2"
	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/shortlink/internal/app"
	"github.com/vadimbarashkov/shortlink/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "url-shortener",
		Short:         "Shorten URLs and count their visits",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg, newLogger(cfg))
			if err != nil {
				return err
			}

			return a.Run(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to the YAML config file")

	rootCmd.AddCommand(newStatsCmd(&configPath))

	return rootCmd
}

func newLogger(cfg *config.Config) *httplog.Logger {
	return httplog.NewLogger("url-shortener", httplog.Options{
		JSON:             cfg.Env == config.EnvProd,
		LogLevel:         cfg.SlogLevel(),
		Concise:          true,
		RequestHeaders:   cfg.Env != config.EnvProd,
		MessageFieldName: "message",
		Tags: map[string]string{
			"env": cfg.Env,
		},
	})
}
