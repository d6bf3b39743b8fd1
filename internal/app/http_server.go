package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"toggl-notion-sync/internal/usecase"
)

// HTTPServer returns a configured http.Server that exposes endpoints to trigger syncs.
// Call ListenAndServe on the returned server in a goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	srv := &http.Server{Addr: addr, Handler: loggingMiddleware(a.log, a.Handler())}
	a.log.Info("http trigger server configured", slog.String("addr", addr))
	return srv
}

// Handler serves /healthz and /sync.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// /sync?from=...&to=...
	// from/to accept RFC3339 or YYYY-MM-DD. If omitted, the run resumes at the
	// checkpoint and ends now.
	mux.HandleFunc("/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()
		fromTime, err := ParseStart(q.Get("from"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "error": err.Error()})
			return
		}
		toTime, err := ParseEnd(q.Get("to"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "error": err.Error()})
			return
		}

		// Optional timeout override: ?timeout=5m
		ctx := r.Context()
		if tStr := q.Get("timeout"); tStr != "" {
			if d, err := time.ParseDuration(tStr); err == nil && d > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}
		}

		report, err := a.RunOnce(ctx, fromTime, toTime)
		body := map[string]any{
			"created":    report.Created,
			"skipped":    report.Skipped,
			"duplicates": report.Duplicates,
			"failed":     report.Failed,
		}
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, ErrSyncRunning):
				status = http.StatusConflict
			case errors.Is(err, usecase.ErrInvalidWindow):
				status = http.StatusBadRequest
			}
			body["status"] = "error"
			body["error"] = err.Error()
			writeJSON(w, status, body)
			return
		}
		body["status"] = "ok"
		writeJSON(w, http.StatusOK, body)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
