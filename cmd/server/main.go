package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lunarway/yente/internal/api"
	"github.com/lunarway/yente/internal/cfg"
	"github.com/lunarway/yente/internal/httpserver"
	"github.com/lunarway/yente/internal/index"
	"github.com/lunarway/yente/internal/log"
	"github.com/lunarway/yente/internal/metrics"
	"github.com/lunarway/yente/internal/opshttp"
	"github.com/lunarway/yente/internal/otelx"
	"github.com/lunarway/yente/internal/probe"
	"github.com/lunarway/yente/internal/prof"
	"github.com/lunarway/yente/internal/ratelimit"
	v "github.com/lunarway/yente/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is a dev convenience; absence is fine
	_ = godotenv.Load()

	vi := v.Get()

	var conf cfg.App
	var showVersion bool

	// Parse config from flags and env
	cfg.Register(flag.CommandLine, &conf)
	flag.BoolVar(&showVersion, "V", false, "Print version+build information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf(
			"%s %s (commit=%s, build_date=%s, go=%s, dirty=%v)\n",
			v.AppName, vi.Version, vi.Commit, vi.BuildDate, vi.GoVersion,
			vi.VCSDirty != nil && *vi.VCSDirty,
		)
		os.Exit(0)
	}

	// Fill in config from environment variables with prefix YENTE_ and validate
	cfg.FillFromEnv(flag.CommandLine, "YENTE_", func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	})

	if err := cfg.Validate(conf); err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	// Setup logging
	lvl, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %s: %v\n", conf.LogLevel, err)
		os.Exit(1)
	}
	stackLvl, err := log.ParseLevel(conf.StacktraceLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid stacktrace level %s: %v\n", conf.StacktraceLevel, err)
		os.Exit(1)
	}
	lg, err := log.New(log.Options{
		App:             v.AppName,
		Version:         vi.Version,
		Level:           lvl,
		StacktraceLevel: stackLvl,
		JsonFormat:      conf.LogJSON,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init error:", err)
		os.Exit(1)
	}
	defer lg.Sync()
	L := lg.With("component", "server")
	ctx = log.WithContext(ctx, L)

	L.Info(ctx, "initializing application",
		"version", vi.Version,
		"commit", vi.Commit,
		"build_date", vi.BuildDate,
		"go_version", vi.GoVersion,
		"vcs_dirty", vi.VCSDirty,
		"http_port", conf.HTTPPort,
		"admin_port", conf.AdminPort,
		"enable_pprof", conf.EnablePprof,
		"enable_pyroscope", conf.EnablePyroscope,
		"enable_tracing", conf.EnableTracing,
		"otlp_endpoint", conf.OTLPEndpoint,
		"pyro_server", conf.PyroServer,
		"pyro_tenant", conf.PyroTenantID,
		"trace_sample", conf.TraceSample,
		"index_url", conf.IndexURL,
		"index_timeout", conf.IndexTimeout,
		"rate_limit_per_sec", conf.RateLimitPerSec,
		"rate_limit_burst", conf.RateLimitBurst,
	)

	// Setup pyroscope profiling
	stopProf, err := prof.Start(ctx, prof.Options{
		Enabled:       conf.EnablePyroscope,
		AppName:       v.AppName,
		ServerAddress: conf.PyroServer,
		TenantID:      conf.PyroTenantID,
		Tags: map[string]string{
			"app":       v.AppName,
			"component": "server",
			"version":   vi.Version,
			"commit":    vi.Commit,
			"source":    "go-agent",
		},
	})
	if err != nil {
		L.Error(ctx, err, "pyroscope start failed", "pyro_server", conf.PyroServer)
	}
	defer func() { stopProf() }()

	// Setup otel for tracing
	// Insecure is true because we are only writing to a collector on localhost
	shutdownOTEL, err := otelx.Init(ctx, otelx.Options{
		Enabled:  conf.EnableTracing,
		Endpoint: conf.OTLPEndpoint,
		Insecure: true,
		Sample:   conf.TraceSample,
		Service:  v.AppName,
		Version:  vi.Version,
	})
	if err != nil {
		L.Error(ctx, err, "otel init failed")
	}
	defer func() { _ = shutdownOTEL(context.Background()) }()

	// Setup metrics / admin listener
	m := metrics.New()
	m.SetBuildInfo(v.AppName, vi)

	// Search index client
	idx := index.NewHTTPClient(conf.IndexURL, conf.IndexTimeout)

	// setup toggle for server shutdown
	var gate probe.ShutdownGate

	// readiness fails while draining or while the index is unreachable
	readiness := probe.Multi(
		gate.Probe(),
		probe.Func(idx.Ping),
	)
	healthy := probe.Static(true, "")

	a := api.New(idx, api.Meta{
		Title:   conf.Title,
		Version: vi.Version,
		Contact: api.Contact{
			Name:  conf.ContactName,
			URL:   conf.ContactURL,
			Email: conf.ContactEmail,
		},
	})
	a.Healthy = healthy
	a.Ready = readiness
	a.OnError = m.IncUpstreamError

	// Per-client rate limiter, disabled unless configured
	limiterOpts := []ratelimit.Option{
		ratelimit.WithOnDenied(func(ip string) {
			m.IncRateLimitDenied()
		}),
		ratelimit.WithOnFirstDenied(func(ip string) {
			L.Warn(ctx, "rate limit triggered", "ip", ip)
		}),
	}
	if conf.RateLimitPerSec > 0 {
		limiterOpts = append(limiterOpts, ratelimit.WithRate(conf.RateLimitPerSec, conf.RateLimitBurst))
	}
	limiter := ratelimit.New(ctx, limiterOpts...)

	opts := &httpserver.Options{
		Logger:    L,
		Port:      conf.HTTPPort,
		Routes:    a.RegisterRoutes,
		OnPanic:   m.IncHTTPPanic,
		MetricsMW: m.Middleware,
	}
	if conf.RateLimitPerSec > 0 {
		opts.RateLimitMW = limiter.Middleware
	}

	apiHTTPStop, err := httpserver.Start(ctx, opts)
	if err != nil {
		L.Error(ctx, err, "failed to start api http listener")
		os.Exit(1)
	}
	defer func() { _ = apiHTTPStop(context.Background()) }()

	// admin/ops listener for metrics, health checks and pprof
	opsHTTPStop, err := opshttp.Start(ctx, L, opshttp.Options{
		Port:        conf.AdminPort,
		Metrics:     m.Handler(),
		EnablePprof: conf.EnablePprof,
		Health:      healthy,
		Readiness:   readiness,
	})
	if err != nil {
		L.Error(ctx, err, "failed to start ops http listener")
		os.Exit(1)
	}
	defer func() { _ = opsHTTPStop(context.Background()) }()

	// block until signal so we dont exit
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	L.Info(context.Background(), "shutdown signal received")

	// fail readiness to drain connections before stopping listeners
	gate.Set("draining")
	L.Info(context.Background(), "shutdown gate closed")

	if err := apiHTTPStop(shutdownCtx); err != nil {
		L.Error(context.Background(), err, "api http server shutdown")
	}

	if err := opsHTTPStop(shutdownCtx); err != nil {
		L.Error(context.Background(), err, "ops http server shutdown")
	}

	if err := shutdownOTEL(shutdownCtx); err != nil {
		L.Error(context.Background(), err, "otel shutdown")
	}

	stopProf()

	L.Info(context.Background(), "shutdown complete")
}
