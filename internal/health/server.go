// Package health exposes the liveness endpoint and Prometheus metrics.
package health

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Serve starts the liveness responder on the given port. Uptime monitors
// poll the root path; Prometheus scrapes /metrics.
func Serve(port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "Discord bot is active now. Timestamp = %d", time.Now().UnixMilli())
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.Printf("Health server stopped: %v", err)
		}
	}()
}
