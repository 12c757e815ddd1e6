// partitiond runs one partition of the user directory: an HTTP store for its
// key range, advertised to the discovery tree so clients can find it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	apihttp "userdir/internal/http"
	"userdir/pkg/cluster"
	"userdir/pkg/types"
	"userdir/pkg/userstore"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *cfgPath); err != nil {
		slog.Error("partitiond failed", "error", err)
		os.Exit(1)
	}
}

// run owns every resource of the process so that its defers fire on any exit
// path; main only maps the returned error to the exit code.
func run(ctx context.Context, cfgPath string) error {
	cfg, err := initConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	initLogger(&cfg)

	store := userstore.New()
	server := apihttp.NewServer(store, fmt.Sprintf("%d", cfg.Server.Port))
	if err := server.Start(); err != nil {
		return fmt.Errorf("start partition server: %w", err)
	}
	defer func() {
		if err := server.Stop(); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	advertise := cfg.Partition.Advertise
	if advertise == "" {
		advertise = server.URL
	}

	// register in zookeeper when an ensemble is configured; the ephemeral
	// node disappears with the session, deregistering us on crash
	if len(cfg.Discovery.Servers) > 0 {
		registrar, err := cluster.NewZKRegistrar(
			cfg.Discovery.Servers,
			cfg.Discovery.Root,
			types.ServiceName(cfg.Partition.Service),
		)
		if err != nil {
			return fmt.Errorf("connect to zookeeper: %w", err)
		}
		defer registrar.Close()

		regCtx, regCancel := context.WithTimeout(ctx, 30*time.Second)
		err = registrar.Register(regCtx, cluster.PartitionDescriptor{
			LowBound: cfg.Partition.LowBound,
			Kind:     types.KindRange,
			Addr:     advertise,
		})
		regCancel()
		if err != nil {
			return fmt.Errorf("register partition: %w", err)
		}
		slog.Info("partition registered",
			"service", cfg.Partition.Service,
			"low_bound", cfg.Partition.LowBound,
			"addr", advertise,
		)
	}

	<-ctx.Done()
	slog.Info("partition stopping")
	return nil
}
