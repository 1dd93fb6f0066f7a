package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oktayozdemir/blog-chatbot/internal/bootstrap"
	"github.com/oktayozdemir/blog-chatbot/internal/config"
	"github.com/oktayozdemir/blog-chatbot/internal/observability/logging"
	"github.com/oktayozdemir/blog-chatbot/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeArticleIngested(ctx, func(handlerCtx context.Context, articleID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.StartArticle()
		start := time.Now()
		processErr := app.ProcessUC.Process(processCtx, articleID)
		workerMetrics.FinishArticle("worker", time.Since(start), processErr)

		if processErr == nil {
			if article, err := app.Repo.GetByID(processCtx, articleID); err == nil {
				workerMetrics.ObserveIndexedChunks("worker", article.ChunkCount)
				workerMetrics.ObserveQueueLag("worker", start.Sub(article.CreatedAt))
			}
		}
		return processErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
