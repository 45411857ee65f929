// Package main provides the entry point for tracehm, a trace-driven
// timing simulator for a flat (non-hierarchical) hybrid memory.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sarchlab/tracehm/internal/xlog"
	"github.com/sarchlab/tracehm/memsim/controller"
	"github.com/sarchlab/tracehm/memsim/trace"
)

var (
	configPath  = flag.String("config", "", "Path to a base config file (.json or .yaml)")
	metricsAddr = flag.String("metrics-addr", "", "If set, serve Prometheus metrics on this address (e.g. :9090)")
	verbose     = flag.Bool("v", false, "Verbose diagnostic logging")
)

func main() {
	flag.Parse()
	if *verbose {
		xlog.SetLevel(zerolog.DebugLevel)
	}

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: tracehm [options] TRACEFILE [key=value ...]\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	tracePath := flag.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	for _, arg := range flag.Args()[1:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			xlog.Warnf("ignoring malformed override %q (expected key=value)", arg)
			continue
		}
		if err := cfg.ApplyArg(key, value); err != nil {
			fmt.Fprintf(os.Stderr, "Error applying %q: %v\n", arg, err)
			os.Exit(1)
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	var metrics *controller.Metrics
	if *metricsAddr != "" {
		metrics = controller.NewMetrics()
		serveMetrics(*metricsAddr, metrics)
	}

	f, err := os.Open(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening trace file: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()

	records, err := trace.ReadAll(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading trace: %v\n", err)
		os.Exit(1)
	}

	ctl := controller.New(cfg, metrics)
	for _, rec := range records {
		ctl.Access(rec.ToEvent())
	}

	fmt.Print(ctl.Snapshot().String())
}

func loadConfig(path string) (*controller.Config, error) {
	if path == "" {
		return controller.DefaultConfig(), nil
	}
	return controller.LoadConfig(path)
}

// serveMetrics starts a background Prometheus exporter. It only ever reads
// the already-published counters; it never touches controller state, so
// the core's single-threaded access contract is unaffected.
func serveMetrics(addr string, metrics *controller.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			xlog.Errorf("metrics server stopped: %v", err)
		}
	}()
}
