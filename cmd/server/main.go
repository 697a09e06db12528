package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/guileen/leakdetect/api"
	"github.com/guileen/leakdetect/bufpool"
	"github.com/guileen/leakdetect/journal"
	"github.com/guileen/leakdetect/leak"
	"github.com/guileen/leakdetect/logger"
	"github.com/guileen/leakdetect/metrics"
)

func main() {
	startTime := time.Now()
	logger.Info("Starting leakdetect server",
		"startup_time", startTime.Format(time.RFC3339),
		"level", leak.GetLevel().String())

	journalPath := "/tmp/leakdetect"
	if len(os.Args) > 1 {
		journalPath = os.Args[1]
	}

	addr := ":8080"
	if v := os.Getenv("LEAKDETECT_ADDR"); v != "" {
		addr = v
	}

	logger.Info("Opening report journal", "path", journalPath)
	j, err := journal.Open(journalPath)
	if err != nil {
		logger.Error("Failed to open report journal", "error", err.Error(), "path", journalPath)
		os.Exit(1)
	}
	defer j.Close()

	// Demo workload: a leak-tracked buffer pool that forgets some releases,
	// so the API and journal have something to show.
	if demoEnabled() {
		pool, err := bufpool.NewPoolWithInterval(1)
		if err != nil {
			logger.Error("Failed to create demo pool", "error", err.Error())
			os.Exit(1)
		}
		pool.Detector().SetReporter(journal.NewReporter(j, nil))
		go runDemoWorkload(pool)
		logger.Info("Demo workload started")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewCollector())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	api.NewRESTHandler(j).RegisterRoutes(r)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", "error", err.Error())
	}
	logger.Info("Server stopped", "uptime", time.Since(startTime).String())
}

func demoEnabled() bool {
	v := os.Getenv("LEAKDETECT_DEMO")
	if v == "" {
		return false
	}
	enabled, err := strconv.ParseBool(v)
	return err == nil && enabled
}

// runDemoWorkload allocates buffers continuously and leaks roughly one in
// sixteen of them.
func runDemoWorkload(pool *bufpool.Pool) {
	i := 0
	for range time.Tick(50 * time.Millisecond) {
		buf := pool.Get(64)
		buf.WriteString("demo payload")
		buf.Touch("demo workload")
		if i%16 != 0 {
			buf.Release()
		}
		i++
	}
}
