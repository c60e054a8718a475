package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	klog "k8s.io/klog/v2"
)

// StartServer starts the HTTP server providing the metrics for scraping.
// The server is shut down when ctx is done.
func StartServer(ctx context.Context, port uint16) {
	logger := klog.FromContext(ctx)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	go func() {
		for {
			err := server.ListenAndServe()
			if err == http.ErrServerClosed {
				break
			}
			if err != nil {
				logger.Error(err, "metrics server terminated unexpectedly and will be restarted")
				time.Sleep(time.Second)
			}
		}
	}()
}

// Handler returns the HTTP handler serving the metrics of the
// registry under path "/metrics".
func Handler() http.Handler {
	serveMux := http.NewServeMux()
	serveMux.Handle("/metrics", promhttp.HandlerFor(Gatherer(), promhttp.HandlerOpts{}))
	return serveMux
}
