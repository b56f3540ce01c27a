package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"

	"github.com/absmach/supermq/pkg/jaeger"
	"github.com/absmach/supermq/pkg/prometheus"
	"github.com/absmach/supermq/pkg/server"
	httpserver "github.com/absmach/supermq/pkg/server/http"
	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/craftml/mlbuilder/builder"
	"github.com/craftml/mlbuilder/builder/api"
	"github.com/craftml/mlbuilder/builder/middleware"
	"github.com/craftml/mlbuilder/pkg/storage"
	"github.com/craftml/mlbuilder/pkg/trainer"
)

const (
	svcName       = "builder"
	defHTTPPort   = "7070"
	envPrefixHTTP = "BUILDER_HTTP_"
	pathEnv       = ".env"
)

type envConfig struct {
	LogLevel   string `env:"BUILDER_LOG_LEVEL"   envDefault:"info"`
	InstanceID string `env:"BUILDER_INSTANCE_ID"`
	TrainerURL string `env:"BUILDER_TRAINER_URL" envDefault:"http://localhost:5000"`
	TrainerTLS bool   `env:"BUILDER_TRAINER_TLS_VERIFICATION" envDefault:"false"`
	Storage    storage.Config
	OTELURL    url.URL `env:"BUILDER_OTEL_URL"`
	TraceRatio float64 `env:"BUILDER_TRACE_RATIO" envDefault:"0"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	var tp trace.TracerProvider
	switch {
	case cfg.OTELURL == (url.URL{}):
		tp = noop.NewTracerProvider()
	default:
		sdktp, err := jaeger.NewProvider(ctx, svcName, cfg.OTELURL, "", cfg.TraceRatio)
		if err != nil {
			logger.Error("failed to initialize opentelemetry", slog.String("error", err.Error()))

			return
		}
		defer func() {
			if err := sdktp.Shutdown(ctx); err != nil {
				logger.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
		tp = sdktp
	}
	tracer := tp.Tracer(svcName)

	wizardsDB, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize storage", slog.String("error", err.Error()))

		return
	}

	trainerClient := trainer.NewClient(trainer.Config{
		BaseURL:         cfg.TrainerURL,
		TLSVerification: cfg.TrainerTLS,
	})

	svc := builder.NewService(wizardsDB, trainerClient, logger)
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics(svcName, "api")
	svc = middleware.Metrics(counter, latency, svc)

	httpServerConfig := server.Config{Port: defHTTPPort}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err.Error()))

		return
	}

	hs := httpserver.NewServer(ctx, cancel, svcName, httpServerConfig, api.MakeHandler(svc, logger, cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))
	}
}
