package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/forPelevin/clipideas/internal/apierr"
	"github.com/forPelevin/clipideas/internal/config"
	"github.com/forPelevin/clipideas/internal/domain/videoid"
	"github.com/forPelevin/clipideas/internal/httpapi"
	"github.com/forPelevin/clipideas/internal/observability"
	"github.com/forPelevin/clipideas/internal/pipeline"
	"github.com/forPelevin/clipideas/internal/platform/logger"
	"github.com/forPelevin/clipideas/internal/types"
	"github.com/forPelevin/clipideas/internal/usecase"
)

type env struct {
	cfg      config.Config
	log      *logger.Logger
	pipe     *pipeline.Pipeline
	shutdown func(context.Context) error
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	pipe, err := pipeline.Build(cfg, log)
	if err != nil {
		return nil, err
	}
	shutdown, err := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		Exporter:    cfg.Otel.Exporter,
		ServiceName: "clipideas",
		Environment: cfg.LogMode,
	})
	if err != nil {
		return nil, fmt.Errorf("otel: %w", err)
	}
	return &env{cfg: cfg, log: log, pipe: pipe, shutdown: shutdown}, nil
}

func (e *env) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.shutdown(ctx); err != nil {
		e.log.Warn("otel shutdown failed", "error", err)
	}
	e.log.Sync()
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	addr := e.cfg.HTTP.Addr
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		addr = v
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Runner:               e.pipe.Usecase,
		Quota:                e.pipe.Limiter,
		Log:                  e.log.With("component", "http"),
		AllowedOrigins:       e.cfg.HTTP.AllowedOrigins,
		ExpectedClientHeader: e.cfg.HTTP.ExpectedClientHeader,
		RequestTimeout:       e.cfg.HTTP.RequestTimeout.Duration,
	})
	e.log.Info("serving clip ideas", "addr", addr, "model", e.pipe.Model, "daily_limit", e.pipe.Limiter.Limit())
	return httpapi.NewServer(addr, router, e.log, e.cfg.HTTP.ShutdownTimeout.Duration).Run(ctx)
}

func runIdeas(cmd *cobra.Command, input string) error {
	lang, _ := cmd.Flags().GetString("lang")
	copyOut, _ := cmd.Flags().GetBool("copy")
	outDir, _ := cmd.Flags().GetString("out")

	id, err := videoid.Extract(input)
	if err != nil {
		return fmt.Errorf("invalid video: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.HTTP.RequestTimeout.Duration)
	defer cancel()

	res, err := e.pipe.Usecase.Run(ctx, usecase.Input{
		Request:  types.Request{VideoID: id, LanguageHint: lang},
		ClientIP: "cli",
	})
	if err != nil {
		ae := apierr.From(err)
		return fmt.Errorf("%s: %s", ae.Code, ae.Message)
	}

	b, err := json.MarshalIndent(res.Response, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))

	if outDir != "" {
		dir, err := pipeline.WriteResult(outDir, res, time.Now())
		if err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "output run dir: %s\n", dir)
	}
	if copyOut {
		if err := clipboard.WriteAll(string(b)); err != nil {
			// headless boxes have no clipboard; the JSON is already on stdout
			fmt.Fprintf(cmd.ErrOrStderr(), "copy to clipboard: %v\n", err)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "copied to clipboard")
		}
	}
	return nil
}
