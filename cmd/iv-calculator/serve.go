package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/contactkeval/iv-calculator/internal/batch"
	"github.com/contactkeval/iv-calculator/internal/logger"
	"github.com/contactkeval/iv-calculator/internal/metrics"
	"github.com/contactkeval/iv-calculator/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the pricing API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			m, err := metrics.New(reg)
			if err != nil {
				return err
			}

			proc := batch.NewProcessor(a.solverMethod(), a.cfg.Batch.Workers, m)
			srv := server.New(cfg, proc, m, reg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Infof("serve: solver=%s workers=%d", proc.Method(), a.cfg.Batch.Workers)
			if err := srv.Run(ctx); err != nil {
				return err
			}
			logger.Infof("serve: stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}
