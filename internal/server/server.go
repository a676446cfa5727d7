// Package server assembles and runs the HTTP application: config,
// MongoDB, Redis, storage, background workers, the websocket feed and
// the middleware stack.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rishivikram/vastra/app/jobs"
	"github.com/rishivikram/vastra/app/routes"
	"github.com/rishivikram/vastra/app/services"
	"github.com/rishivikram/vastra/config"
	"github.com/rishivikram/vastra/pkg/cache"
	"github.com/rishivikram/vastra/pkg/database"
	"github.com/rishivikram/vastra/pkg/event"
	"github.com/rishivikram/vastra/pkg/logger"
	"github.com/rishivikram/vastra/pkg/metrics"
	"github.com/rishivikram/vastra/pkg/middleware"
	"github.com/rishivikram/vastra/pkg/queue"
	"github.com/rishivikram/vastra/pkg/reqid"
	"github.com/rishivikram/vastra/pkg/router"
	"github.com/rishivikram/vastra/pkg/storage"
	"github.com/rishivikram/vastra/pkg/ws"
)

const shutdownGrace = 10 * time.Second

// Start boots every subsystem and serves HTTP until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	if err := database.Connect(); err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = database.Disconnect(ctx)
	}()

	// Ship logs to Mongo in production, after the connection exists.
	var logSink *logger.MongoHandler
	if config.AppEnv() == "production" {
		logSink = logger.NewMongoHandler(
			slog.NewJSONHandler(os.Stdout, nil),
			database.Collection("logs"),
		)
		logger.SetHandler(logSink)
		defer logSink.Close()
	}

	// Redis is optional: without it checkout dedup and the recommendation
	// cache degrade gracefully.
	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable", "error", err)
	}

	storage.Connect()

	jobs.RegisterAll()
	if rdb := cache.Client(); rdb != nil {
		queue.SetDriver(queue.NewRedisDriver(rdb, ""))
	}
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	queue.StartWorkers(workerCtx, 4)

	feed := ws.NewHub()
	go feed.Run()
	event.Listen("order.status_changed", func(payload interface{}) {
		if ev, ok := payload.(event.OrderEvent); ok {
			feed.SendToUser(ev.UserID, services.StatusPayload(ev))
		}
	})

	r := router.New()
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(300, time.Minute),
	)
	r.HandleFunc("/metrics", metrics.Handler())
	routes.RegisterAPI(r, feed)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("server: shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	event.Flush()
	return nil
}
