package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adilmn/social-support-ai/internal/bootstrap"
	"github.com/adilmn/social-support-ai/internal/config"
	"github.com/adilmn/social-support-ai/internal/observability/logging"
	"github.com/adilmn/social-support-ai/internal/observability/metrics"
)

const serviceName = "worker"

// Assessments block on OCR, two model calls and the scorer; give one case
// room to finish but never let it pin a worker slot forever.
const assessmentTimeout = 5 * time.Minute

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	pipelineMetrics := metrics.NewPipelineMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: pipelineMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeApplicationReceived(ctx, func(handlerCtx context.Context, applicationID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, assessmentTimeout)
		defer cancel()

		if row, err := app.Repo.GetByID(processCtx, applicationID); err == nil {
			pipelineMetrics.ObserveQueueLag(serviceName, time.Since(row.CreatedAt))
		}

		pipelineMetrics.StartAssessment()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, applicationID)
		pipelineMetrics.FinishAssessment(serviceName, time.Since(start), processErr)

		if processErr == nil {
			if assessed, err := app.Repo.GetByID(processCtx, applicationID); err == nil &&
				assessed.Outcome != nil && assessed.Outcome.Decision != nil {
				pipelineMetrics.RecordDecision(serviceName, string(assessed.Outcome.Decision.FinalDecision))
			}
		}
		return processErr
	})
	if err != nil {
		slog.Error("worker subscribe failed", "error", err)
		os.Exit(1)
	}
}
