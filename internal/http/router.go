package httpx

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pagesmith/pagesmith/internal/repository"
	"github.com/pagesmith/pagesmith/internal/service/intake"
	"github.com/pagesmith/pagesmith/internal/service/logs"
	"github.com/pagesmith/pagesmith/internal/ws"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	intake     intake.Service
	deliveries repository.DeliveryRepository
	logs       logs.Service
	upgrader   websocket.Upgrader
	limiter    RateLimiter
	dbHealth   func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	rateWindowDefault  = time.Minute
	rateLimitIntake    = 30
	rateLimitRead      = 120
	healthCheckTimeout = 2 * time.Second
)

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, intakeSvc intake.Service, deliveries repository.DeliveryRepository, logSvc logs.Service, limiter RateLimiter, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:        http.NewServeMux(),
		logger:     logger,
		intake:     intakeSvc,
		deliveries: deliveries,
		logs:       logSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limiter:  limiter,
		dbHealth: dbHealth,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	r.initMetrics()
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/", r.audit(r.handleRoot))
	r.mux.HandleFunc("/healthz", r.audit(r.handleHealthz))
	r.mux.Handle("/metrics", promhttp.Handler())
	r.mux.HandleFunc("/api-endpoint", r.audit(r.withRateLimit("/api-endpoint", rateLimitIntake, rateWindowDefault, rateLimitKeyIP, r.handleSubmit)))
	r.mux.HandleFunc("/deployments/", r.audit(r.withRateLimit("/deployments", rateLimitRead, rateWindowDefault, rateLimitKeyIP, r.handleDeployments)))
	r.mux.HandleFunc("/logs/", r.audit(r.withRateLimit("/logs", rateLimitRead, rateWindowDefault, rateLimitKeyIP, r.handleLogs)))
	r.mux.HandleFunc("/ws/deployments", r.audit(r.handleDeploymentsWS))
}

func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		r.notFound(w)
		return
	}
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "running",
		"service":  "pagesmith",
		"endpoint": "/api-endpoint",
		"health":   "/healthz",
	})
}

func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload intake.Submission
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ack, err := r.intake.Submit(req.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, intake.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, intake.ErrInvalid):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			r.logger.Error("submission failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

func (r *Router) handleDeployments(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	task := strings.TrimPrefix(req.URL.Path, "/deployments/")
	if task == "" || strings.Contains(task, "/") {
		r.notFound(w)
		return
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	deliveries, err := r.deliveries.ListDeliveriesByTask(req.Context(), task, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payload := make([]map[string]any, 0, len(deliveries))
	for _, d := range deliveries {
		payload = append(payload, map[string]any{
			"id":            d.ID,
			"task":          d.Task,
			"round":         d.Round,
			"nonce":         d.Nonce,
			"repo_url":      d.RepoURL,
			"commit_sha":    d.CommitSHA,
			"pages_url":     d.PagesURL,
			"notify_status": d.NotifyStatus,
			"notified_at":   d.NotifiedAt.Format(time.RFC3339Nano),
			"created_at":    d.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (r *Router) handleLogs(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	task := strings.TrimPrefix(req.URL.Path, "/logs/")
	if task == "" || strings.Contains(task, "/") {
		r.notFound(w)
		return
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 100
	}
	offset, _ := strconv.Atoi(req.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	entries, err := r.logs.List(req.Context(), task, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payload := make([]json.RawMessage, 0, len(entries))
	for _, entry := range entries {
		line, err := logs.MarshalEntry(entry)
		if err != nil {
			continue
		}
		payload = append(payload, line)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (r *Router) handleDeploymentsWS(w http.ResponseWriter, req *http.Request) {
	task := req.URL.Query().Get("task")
	if task == "" {
		writeError(w, http.StatusBadRequest, "task query parameter required")
		return
	}
	if r.logs.Hub() == nil {
		writeError(w, http.StatusServiceUnavailable, "streaming not available")
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	r.logs.Hub().Register(task, client)
	go func() {
		defer func() {
			r.logs.Hub().Unregister(task, client)
			client.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

func (r *Router) audit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		r.recordRequestMetrics(req.Method, req.URL.Path, status, duration)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
