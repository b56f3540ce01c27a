package mlbuilderd

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/absmach/supermq/pkg/jaeger"
	"github.com/absmach/supermq/pkg/prometheus"
	"github.com/absmach/supermq/pkg/server"
	httpserver "github.com/absmach/supermq/pkg/server/http"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/craftml/mlbuilder/builder"
	"github.com/craftml/mlbuilder/builder/api"
	"github.com/craftml/mlbuilder/builder/middleware"
	"github.com/craftml/mlbuilder/pkg/storage"
	"github.com/craftml/mlbuilder/pkg/trainer"
)

const svcName = "builder"

type Config struct {
	LogLevel   string
	InstanceID string
	Trainer    trainer.Config
	Storage    storage.Config
	Server     server.Config
	OTELURL    url.URL
	TraceRatio float64
}

func StartBuilder(ctx context.Context, cancel context.CancelFunc, cfg Config) error {
	g, ctx := errgroup.WithContext(ctx)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to parse log level: %s", err.Error())
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
			return fmt.Errorf("failed to initialize opentelemetry: %s", err.Error())
		}
		defer func() {
			if err := sdktp.Shutdown(ctx); err != nil {
				slog.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
		tp = sdktp
	}
	tracer := tp.Tracer(svcName)

	wizardsDB, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %s", err.Error())
	}

	svc := builder.NewService(wizardsDB, trainer.NewClient(cfg.Trainer), logger)
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics(svcName, "api")
	svc = middleware.Metrics(counter, latency, svc)

	hs := httpserver.NewServer(ctx, cancel, svcName, cfg.Server, api.MakeHandler(svc, logger, cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))
	}

	return nil
}

var (
	logLevel    = "info"
	port        = "7070"
	trainerURL  = "http://localhost:5000"
	storageType = "memory"
	sqlitePath  = "./mlbuilder.db"
)

var builderCmd = []cobra.Command{
	{
		Use:   "start",
		Short: "Start builder",
		Long:  `Start builder.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := Config{
				LogLevel:   logLevel,
				InstanceID: uuid.NewString(),
				Trainer: trainer.Config{
					BaseURL: trainerURL,
				},
				Storage: storage.Config{
					Type:       storageType,
					SQLitePath: sqlitePath,
				},
				Server: server.Config{
					Port: port,
				},
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			if err := StartBuilder(ctx, cancel, cfg); err != nil {
				cmd.PrintErrf("failed to start builder: %s", err.Error())
			}
			cancel()
		},
	},
}

func NewBuilderCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "builder [start]",
		Short: "Builder management",
		Long:  `Start the wizard builder service.`,
	}

	for i := range builderCmd {
		cmd.AddCommand(&builderCmd[i])
	}

	cmd.PersistentFlags().StringVarP(
		&logLevel,
		"log-level",
		"l",
		logLevel,
		"Log level",
	)

	cmd.PersistentFlags().StringVarP(
		&port,
		"port",
		"p",
		port,
		"HTTP port",
	)

	cmd.PersistentFlags().StringVarP(
		&trainerURL,
		"trainer-url",
		"t",
		trainerURL,
		"Trainer service URL",
	)

	cmd.PersistentFlags().StringVarP(
		&storageType,
		"storage-type",
		"s",
		storageType,
		"Storage backend (memory or sqlite)",
	)

	cmd.PersistentFlags().StringVarP(
		&sqlitePath,
		"sqlite-path",
		"q",
		sqlitePath,
		"SQLite database path",
	)

	return &cmd
}
