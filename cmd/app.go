package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/AvaProtocol/txdecode/core/config"
	"github.com/AvaProtocol/txdecode/core/pipeline"
	"github.com/AvaProtocol/txdecode/core/rpcclient"
	"github.com/AvaProtocol/txdecode/core/signature"
	"github.com/AvaProtocol/txdecode/core/transport"
	"github.com/AvaProtocol/txdecode/metrics"
	"github.com/AvaProtocol/txdecode/pkg/telemetry"
	"github.com/AvaProtocol/txdecode/version"
)

// app is the fully wired decoder shared by every subcommand.
type app struct {
	config     *config.Config
	cache      *signature.Cache
	registry   *prometheus.Registry
	dispatcher *pipeline.Dispatcher

	shutdownTracer telemetry.ShutdownFunc
}

func newApp(ctx context.Context, path string) (*app, error) {
	cfg, err := config.NewConfig(path)
	if err != nil {
		return nil, err
	}

	policy, err := pipeline.ParseCoalescePolicy(cfg.Coalesce)
	if err != nil {
		return nil, err
	}

	shutdownTracer, err := telemetry.InitTracer(ctx, "txdecode", version.Get(), cfg.OtlpEndpoint)
	if err != nil {
		cfg.Logger.Warn("tracing disabled", "endpoint", cfg.OtlpEndpoint, "error", err)
	}

	cache, err := signature.NewCache(ctx)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.NewSignatureCacheCollector(cache),
	)
	m := metrics.NewDecoderMetrics(reg)

	log := cfg.Logger
	t := transport.New(cfg.RequestTimeout, log.With("component", "transport"))
	resolver := signature.NewResolver(
		signature.NewRegistry(t, cfg.RegistryURL),
		cache,
		log.With("component", "signature"),
		m,
	)
	orchestrator := pipeline.NewOrchestrator(rpcclient.New(t, log.With("component", "rpc")), resolver, log.With("component", "pipeline"), m)
	dispatcher := pipeline.NewDispatcher(orchestrator, pipeline.NewBoard(), cfg.LookupNetwork, policy, cfg.Cooldown, log.With("component", "dispatcher"))

	log.Debug("decoder ready",
		"registry", cfg.RegistryURL,
		"timeout", cfg.RequestTimeout,
		"coalesce", policy,
		"networks", len(cfg.Networks))

	return &app{
		config:     cfg,
		cache:      cache,
		registry:   reg,
		dispatcher: dispatcher,

		shutdownTracer: shutdownTracer,
	}, nil
}

func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdownTracer(ctx); err != nil {
		a.config.Logger.Warn("cannot flush traces", "error", err)
	}

	if err := a.cache.Close(); err != nil {
		a.config.Logger.Warn("cannot close signature cache", "error", err)
	}
}

func mustNetwork(cfg *config.Config, name string) (config.Network, error) {
	n, ok := cfg.LookupNetwork(name)
	if !ok {
		return config.Network{}, fmt.Errorf("%w: %q (known: %v)", pipeline.ErrUnknownNetwork, name, cfg.NetworkNames())
	}
	return n, nil
}
