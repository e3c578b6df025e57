// cyclesched-scheduler is the scheduler process: it hosts the live
// proxy pool, projects its state summary, drains persistence deltas,
// and serves the HTTP API that observes and commands it.
//
// Process-pool callbacks (submit/poll/poll-message/kill results)
// arrive over RabbitMQ on the jobs.callbacks queue when a broker is
// configured; without one the scheduler still runs, simply unable to
// receive out-of-process job outcomes.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/cyclesched/internal/api"
	"github.com/shaiso/cyclesched/internal/domain"
	"github.com/shaiso/cyclesched/internal/events"
	"github.com/shaiso/cyclesched/internal/mq"
	"github.com/shaiso/cyclesched/internal/pool"
	"github.com/shaiso/cyclesched/internal/repo"
	"github.com/shaiso/cyclesched/internal/summary"
	"github.com/shaiso/cyclesched/internal/telemetry"
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting cyclesched-scheduler")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbPool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("database connected")

	deltas := &domain.DeltaBuffer{}
	writer := repo.NewWriter(dbPool, deltas, 5*time.Second, logger)
	go writer.Run(ctx)

	suiteName := os.Getenv("CYCLESCHED_SUITE_NAME")
	if suiteName == "" {
		suiteName = "cyclesched"
	}

	pl := pool.New(pool.Config{
		EventsCfg: events.Config{},
		SuiteName: suiteName,
		Logger:    logger,
	})

	projector := summary.New(pl, summary.Ancestry{FirstParent: map[string]string{}})
	go runSummaryLoop(ctx, pl, projector, 2*time.Second)

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)
	go runMetricsLoop(ctx, projector, metrics, 5*time.Second)

	var publisher *mq.Publisher
	var mqConn *mq.Connection
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err = mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, callbacks must arrive out of band", "error", err)
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		publisher = mq.NewPublisher(mqConn, logger)

		consumer := mq.NewConsumer(mqConn, logger, mq.ConsumerConfig{
			Queue:    string(mq.QueueJobsCallbacks),
			Handler:  callbackHandler(pl, logger),
			Prefetch: 10,
		})
		go func() {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error("callback consumer stopped", "error", err)
			}
		}()
	}

	handler := api.NewHandler(api.Config{
		Pool:      pl,
		Projector: projector,
		Publisher: publisher,
		Logger:    logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

// runSummaryLoop refreshes the state-summary projection on a fixed
// cadence, independent of the request path.
func runSummaryLoop(ctx context.Context, pl pool.Pool, projector *summary.Projector, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			projector.Refresh(time.Now(), pl.IsHeld(), false)
		}
	}
}

// runMetricsLoop keeps the per-status gauge in sync with the latest
// published summary snapshot.
func runMetricsLoop(ctx context.Context, projector *summary.Projector, metrics *telemetry.Metrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := projector.Current()
			if snap == nil {
				continue
			}
			for status, count := range snap.Global.StateTotals {
				metrics.TasksByStatus.WithLabelValues(string(status)).Set(float64(count))
			}
		}
	}
}

// callbackHandler decodes a jobs.callbacks delivery and routes it
// into the proxy it names. A malformed delivery or unknown identity is
// nacked without requeue, since redelivering a callback the pool
// cannot place would only loop forever.
func callbackHandler(pl *pool.InMemoryPool, logger *slog.Logger) mq.Handler {
	return func(ctx context.Context, d *mq.Delivery) error {
		payload, err := mq.ParsePayload[mq.ProxyCallbackPayload](&d.Message)
		if err != nil {
			logger.Warn("malformed callback delivery", "error", err)
			return d.Nack(false)
		}

		err = pl.Dispatch(pool.CallbackPayload{
			TaskName:   payload.TaskName,
			CyclePoint: payload.CyclePoint,
			Kind:       payload.Kind,
			RawLine:    payload.RawLine,
		})
		if err != nil {
			logger.Warn("callback dispatch failed", "error", err)
			return d.Nack(false)
		}

		return d.Ack()
	}
}
