package middleware

import (
	"net/http"
	"time"

	"veterinaria-ica/internal/platform/logger"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// RequestLogger deja un logger con request_id en el contexto y registra
// una línea por request. No loguea headers (Authorization) ni bodies.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With(map[string]any{"request_id": GetRequestID(r.Context())})

			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r.WithContext(logger.WithContext(r.Context(), reqLog)))

			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      sw.status,
				"bytes":       sw.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if sw.status >= 500 {
				reqLog.Warn("request", fields)
				return
			}
			reqLog.Info("request", fields)
		})
	}
}
