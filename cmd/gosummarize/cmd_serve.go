package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/gosummarize/internal/app"
	"github.com/hyperifyio/gosummarize/internal/ratelimit"
	"github.com/hyperifyio/gosummarize/internal/server"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer a.Close()
			if a.Store() == nil {
				log.Warn().Msg("no database configured; accounts and history are disabled")
			}

			lim := ratelimit.New(
				ratelimit.Limit{PerMinute: cfg.RateAnon, Burst: ratelimit.DefaultAnonymous.Burst},
				ratelimit.Limit{PerMinute: cfg.RateUser, Burst: ratelimit.DefaultUser.Burst},
			)
			log.Info().Str("version", app.Version()).Msg("starting server")
			return server.New(a, lim).ListenAndServe(ctx, cfg.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :8080)")
	return cmd
}
