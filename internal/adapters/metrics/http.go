package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Logger is the logging port used by the metrics server
type Logger interface {
	Log(level, message string, metadata map[string]interface{})
}

// Serve exposes gatherer on addr at path until ctx is cancelled
func Serve(ctx context.Context, addr, path string, gatherer prometheus.Gatherer, logger Logger) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log("WARNING", "[Metrics] Server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	logger.Log("INFO", "[Metrics] Serving Prometheus metrics", map[string]interface{}{"address": addr, "path": path})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}
