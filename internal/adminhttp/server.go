// Package adminhttp is the read-only HTTP surface operators poll: health
// and the metrics snapshot. It never touches the pond.Database directly --
// only the atomic counters in internal/metrics -- so it's the one place in
// this repo that runs its own goroutine outside the event loop.
package adminhttp

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/pondhq/pond/internal/metrics"
)

// Server serves /healthz and /stats.
type Server struct {
	counters *metrics.Counters
	srv      *http.Server
	lis      net.Listener
}

// New creates a Server reading from counters.
func New(counters *metrics.Counters) *Server {
	mux := http.NewServeMux()
	s := &Server{counters: counters, srv: &http.Server{Handler: cors(mux)}}
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	return s
}

// ListenAndServe binds addr and serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.lis != nil {
		return s.lis.Close()
	}
	return nil
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.counters.Snapshot())
}
