package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/developer-mesh/gitee-mcp/internal/api"
	"github.com/developer-mesh/gitee-mcp/internal/config"
	"github.com/developer-mesh/gitee-mcp/internal/gitee"
	"github.com/developer-mesh/gitee-mcp/internal/mcp"
	"github.com/developer-mesh/gitee-mcp/internal/metrics"
	"github.com/developer-mesh/gitee-mcp/internal/middleware"
	"github.com/developer-mesh/gitee-mcp/internal/observability"
	"github.com/developer-mesh/gitee-mcp/internal/tools"
	giteetools "github.com/developer-mesh/gitee-mcp/internal/tools/providers/gitee"
	"github.com/developer-mesh/gitee-mcp/internal/tracing"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "gitee-mcp: %v\n", err)
		stop()
		os.Exit(1)
	}
}

type options struct {
	configFile  string
	envFile     string
	port        int
	logLevel    string
	stdio       bool
	showVersion bool
	printConfig bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("gitee-mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configFile, "config", "", "Path to configuration file (default: gitee-mcp.yaml in ., ./configs, /etc/gitee-mcp)")
	fs.StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file loaded before the environment is read")
	fs.IntVar(&opts.port, "port", -1, "Port for the HTTP/WebSocket server (0 for stdio mode)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.stdio, "stdio", false, "Serve MCP on stdin/stdout even if a port is configured")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.printConfig, "print-config", false, "Print the effective configuration with secrets masked and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.showVersion {
		fmt.Fprintf(stdout, "gitee-mcp %s (commit: %s)\n", version, commit)
		return nil
	}
	gitee.Version = version

	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return err
	}

	loader := config.NewLoader(opts.configFile)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.port >= 0 {
		cfg.Server.Port = opts.port
	}
	if opts.stdio {
		cfg.Server.Port = 0
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if opts.printConfig {
		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = stdout.Write(out)
		return err
	}

	logger := observability.NewLoggerWithWriter("gitee-mcp", observability.ParseLogLevel(cfg.Log.Level), stderr)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting gitee-mcp", map[string]interface{}{
		"version":     version,
		"commit":      commit,
		"config_file": loader.ConfigFile(),
		"token":       config.MaskToken(cfg.Gitee.Token),
		"stdio":       cfg.Server.Port == 0,
	})
	if cfg.Gitee.Token == "" {
		logger.Warn("GITEE_PERSONAL_ACCESS_TOKEN is not set; only anonymous API calls will succeed", nil)
	}

	// Only the log level can change without a restart
	loader.OnChange(func(updated *config.Config) {
		level := observability.ParseLogLevel(updated.Log.Level)
		if level != logger.Level() {
			logger.SetLevel(level)
			logger.Info("Log level reloaded from config file", map[string]interface{}{
				"level": string(level),
			})
		}
	})
	loader.Watch()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsCollector := metrics.NewWithRegistry(promRegistry)

	tracerProvider, err := tracing.NewTracerProvider(&tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		OTLPInsecure:   cfg.Tracing.OTLPInsecure,
		ZipkinEndpoint: cfg.Tracing.ZipkinEndpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", map[string]interface{}{"error": err.Error()})
		}
	}()

	client := gitee.NewClient(cfg.Gitee,
		gitee.WithLogger(logger),
		gitee.WithMetrics(metricsCollector),
		gitee.WithTracer(tracerProvider),
	)

	toolRegistry := tools.NewRegistry()
	if err := toolRegistry.RegisterProvider(giteetools.NewProvider(client, logger)); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}
	logger.Info("Registered tools", map[string]interface{}{
		"count":    toolRegistry.Count(),
		"base_url": client.BaseURL(),
	})

	handler := mcp.NewHandler(toolRegistry, logger,
		mcp.WithServerInfo("gitee-mcp", version),
		mcp.WithMetrics(metricsCollector),
		mcp.WithTracer(tracerProvider),
		mcp.WithRateLimiter(middleware.NewRateLimiter(cfg.RateLimit, logger, metricsCollector)),
		mcp.WithLevelSetter(logger),
	)

	if cfg.Server.Port == 0 {
		stdio := mcp.NewStdioServer(handler, stdin, stdout, cfg.Server.MaxConcurrent, logger)
		if err := stdio.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio transport: %w", err)
		}
		logger.Info("gitee-mcp stopped", nil)
		return nil
	}

	gin.SetMode(gin.ReleaseMode)
	server := api.NewServer(cfg.Server, handler, toolRegistry, api.Options{
		Logger:   logger,
		Tracer:   tracerProvider,
		Gatherer: promRegistry,
		Version:  version,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("gitee-mcp stopped", nil)
	return nil
}
