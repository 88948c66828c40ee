package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/apperrors"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/metrics"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/observability"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeErr maps the error taxonomy onto HTTP statuses. Remote write
// failures never reach here; they travel as tagged outcomes in a 200.
func writeErr(w http.ResponseWriter, err error) {
	metrics.HandlerErrors.Inc()

	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, verr)
	case errors.Is(err, apperrors.ErrNoCredential):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		observability.CaptureErr(err)
		var rerr *apperrors.RemoteError
		if errors.As(err, &rerr) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": rerr.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
