package app

import (
	"context"
	"net/http"
	"time"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/metrics"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/mirror"
)

type HTTPServer struct {
	srv *http.Server
}

// Healthz reports readiness: the panel is healthy when the local mirror
// answers, even while the remote drive is unreachable.
func Healthz(m *mirror.Mirror) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		t0 := time.Now()
		if err := m.Ping(ctx); err != nil {
			http.Error(w, "mirror not ok: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		metrics.ObserveMirrorPing(time.Since(t0))
		_, _ = w.Write([]byte("ok"))
	}
}

// StartHTTP serves handler until ctx is done, then shuts down gracefully.
func StartHTTP(ctx context.Context, addr string, handler http.Handler) *HTTPServer {
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		_ = srv.ListenAndServe() // closed via Shutdown below
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}
