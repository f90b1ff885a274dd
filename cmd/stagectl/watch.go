package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arloliu/go-stage/config"
	stageprom "github.com/arloliu/go-stage/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	cmdWatch = &cobra.Command{
		Use:   "watch <group>",
		Short: "Periodically log the status of a lockstep group",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}
)

var (
	watchInterval time.Duration
	watchMetrics  string
)

func init() {
	rootCmd.AddCommand(cmdWatch)
	cmdWatch.Flags().DurationVarP(&watchInterval, "interval", "i", time.Second, "Time between status checks")
	cmdWatch.Flags().StringVarP(&watchMetrics, "metrics-listen", "m", "", "Prom metrics address")
}

func runWatch(_ *cobra.Command, args []string) error {
	log := newLogger()

	conf, err := config.ReadConfig(confPath)
	if err != nil {
		return err
	}

	t, err := openLockstep(conf, args[0], log)
	if err != nil {
		return err
	}
	defer t.Close()

	if watchMetrics != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		if err := stageprom.New(reg, nil).AddASCIILink(t.schema.Port, t.link); err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		srv := &http.Server{Addr: watchMetrics, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		info, err := t.group.Info()
		if err != nil {
			return err
		}

		status, err := t.group.Status()
		if err != nil {
			return err
		}

		log.Info("lockstep status",
			"group", args[0],
			"enabled", info.Enabled,
			"axis1", info.Axis1,
			"axis2", info.Axis2,
			"offset", info.Offset,
			"status", status,
		)

		select {
		case <-ctx.Done():
			log.Info("exit signal received")
			return nil
		case <-ticker.C:
		}
	}
}
