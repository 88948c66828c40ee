package app

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/metrics"
)

// requestLogger logs one line per request and feeds the duration histogram.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			dur := time.Since(start)

			metrics.HTTPDuration.
				WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(ww.Status())).
				Observe(dur.Seconds())
			log.Debug("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("dur", dur),
				zap.String("reqid", chimw.GetReqID(r.Context())),
			)
		})
	}
}
