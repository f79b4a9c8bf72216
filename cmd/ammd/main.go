// Command ammd runs the AMM accounting core as a service shell: it loads the
// protocol configuration, installs the global state and exposes metrics and
// health endpoints. Token custody and authority derivation are provided by
// the embedding deployment; the stub wiring here uses process-local no-op
// collaborators so the binary is useful for configuration checks and
// observability smoke tests.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"

	"github.com/stackmint/amm/config"
	"github.com/stackmint/amm/x/amm/keeper"
	"github.com/stackmint/amm/x/amm/testutil"
)

const (
	defaultMetricsPort = 36700
	defaultHealthPort  = 36701
)

func main() {
	configPath := flag.String("config", "", "path to the TOML config file")
	metricsPort := flag.Int("metrics-port", defaultMetricsPort, "prometheus metrics port")
	healthPort := flag.Int("health-port", defaultHealthPort, "health endpoint port")
	flag.Parse()

	logger := log.NewLogger(os.Stderr)

	cfg, err := config.Load(resolveConfigPath(*configPath))
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}

	k := keeper.NewKeeper(
		testutil.NewMemLedger(),
		&testutil.StaticResolver{},
		systemClock{},
		&testutil.RecordingSink{},
		logger,
	)
	if cfg.Admin != "" {
		if err := k.InitGlobal(cfg.Admin, cfg); err != nil {
			logger.Error("global init failed", "err", err)
			os.Exit(1)
		}
	}

	StartPrometheusServer(*metricsPort)
	health := NewHealthCheck(k, *healthPort)
	health.Start()
	logger.Info("ammd started", "metrics_port", *metricsPort, "health_port", *healthPort)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	logger.Info("shutting down", "signal", fmt.Sprint(s))
	health.Stop()
}

// resolveConfigPath honors the flag first, then STACKMINT_AMM_CONFIG.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("STACKMINT_AMM_CONFIG")
}

type systemClock struct{}

func (systemClock) Now() int64 { return time.Now().Unix() }
