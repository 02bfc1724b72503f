// Command nullkv starts the reactor-driven key-value server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akashmaji946/nullkv/internal/config"
	"github.com/akashmaji946/nullkv/internal/logging"
	"github.com/akashmaji946/nullkv/internal/metrics"
	"github.com/akashmaji946/nullkv/internal/reactor"
	"github.com/akashmaji946/nullkv/internal/store"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "nullkv",
	Short:   "nullkv - a RESP-compatible in-memory key-value server",
	Version: version,
	RunE:    runServer,
}

func init() {
	rootCmd.PersistentFlags().String("addr", "", "Address to listen on (overrides --config's port directive)")
	rootCmd.PersistentFlags().String("config", "", "Path to a redis.conf-style config file")
	rootCmd.PersistentFlags().Int("tick", 0, "Poll/expiry-sweep tick interval in milliseconds (overrides config)")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Address to serve Prometheus metrics on")

	viper.BindPFlag("addr", rootCmd.PersistentFlags().Lookup("addr"))
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("tick", rootCmd.PersistentFlags().Lookup("tick"))
	viper.BindPFlag("metrics_addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))

	viper.SetEnvPrefix("nullkv")
	viper.AutomaticEnv()
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.Load(viper.GetString("config"))

	if addr := viper.GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	if tick := viper.GetInt("tick"); tick > 0 {
		cfg.TickInterval = time.Duration(tick) * time.Millisecond
		cfg.SweepInterval = cfg.TickInterval
	}
	if ma := viper.GetString("metrics_addr"); ma != "" {
		cfg.MetricsAddr = ma
	}

	logger := logging.New(os.Stdout)
	logger.Info("starting nullkv v%s", version)
	logger.Info("listen address %s", cfg.Addr)

	reg := prometheus.NewRegistry()
	reporter := metrics.New(reg)

	go func() {
		logger.Info("metrics on %s/metrics", cfg.MetricsAddr)
		if err := metrics.Serve(cfg.MetricsAddr, reg); err != nil {
			logger.Warn("metrics server stopped: %v", err)
		}
	}()

	st := store.New()
	r := reactor.New(cfg.Addr, st, logger, reporter)
	r.SetTick(cfg.TickInterval)
	r.SetSweepInterval(cfg.SweepInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := r.Run(ctx)
	if err != nil && err != context.Canceled {
		return fmt.Errorf("reactor: %w", err)
	}
	logger.Println("shut down cleanly")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
