package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/df07/go-satellite-raytracer/internal/config"
	"github.com/df07/go-satellite-raytracer/internal/logging"
	"github.com/df07/go-satellite-raytracer/internal/observability"
	"github.com/df07/go-satellite-raytracer/pkg/recorder"
	"github.com/df07/go-satellite-raytracer/pkg/renderer"
	"github.com/df07/go-satellite-raytracer/pkg/scene"
	"github.com/df07/go-satellite-raytracer/pkg/session"
	"github.com/df07/go-satellite-raytracer/web/server"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to a JSON config file")
	port := flag.Int("port", 0, "Port to serve on (overrides config addr)")
	domain := flag.String("domain", "", "Serve HTTPS for this domain via Let's Encrypt")
	sceneID := flag.String("scene", "", "Scene preset (default, low-orbit, retrograde, eclipse, terminator)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Addr = fmt.Sprintf(":%d", *port)
	}
	if *domain != "" {
		cfg.Server.Domain = *domain
	}
	if *sceneID != "" {
		cfg.Scene = *sceneID
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.Config) error {
	logger := logging.New(cfg.Logging())

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), logger)
	if err != nil {
		return fmt.Errorf("initialising tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, logger)

	metrics, err := observability.NewRenderCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	opts, err := cfg.SceneOptions()
	if err != nil {
		return err
	}
	sc := scene.NewScene(opts)

	rt := renderer.NewRaytracer(sc, cfg.RendererConfig(),
		renderer.WithLogger(logger),
		renderer.WithObserver(metrics),
	)
	defer rt.Close()

	// The stream renders at its own, smaller size
	settings := cfg.RenderSettings()
	settings.Width = cfg.Server.StreamWidth
	settings.Height = cfg.Server.StreamHeight

	sess := session.New(rt, recorder.New(cfg.OutputDir), settings,
		session.WithLogger(logger),
		session.WithMetrics(metrics),
	)

	srv := server.NewServer(sess, sc, cfg.Server,
		server.WithLogger(logger),
		server.WithMetrics(metrics),
	)

	logger.Info(ctx, "satellite visualiser ready",
		logging.String("scene", cfg.Scene),
		logging.Uint64("seed", cfg.Seed),
		logging.Int("workers", rt.NumWorkers()),
	)
	return srv.Start(ctx)
}
