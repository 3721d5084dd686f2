package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"shareit/internal/config"
	"shareit/internal/metrics"
	"shareit/internal/ratelimit"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const userHeader = "X-Sharer-User-Id"

// Gateway screens incoming requests and forwards the valid ones to the
// main server. It rejects malformed payloads early so the server only
// deals with business rules.
type Gateway struct {
	cfg      config.GatewayConfig
	client   *http.Client
	limiter  ratelimit.Limiter
	rps      *rpsLimiter
	logger   *zerolog.Logger
	server   *http.Server
	upstream string
}

func New(cfg config.GatewayConfig, limiter ratelimit.Limiter, logger *zerolog.Logger) *Gateway {
	g := &Gateway{
		cfg:      cfg,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  limiter,
		rps:      newRPSLimiter(cfg.RateLimit),
		logger:   logger,
		upstream: strings.TrimSuffix(cfg.ServerURL, "/"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/users", g.handle)
	mux.HandleFunc("/users/", g.handle)
	mux.HandleFunc("/items", g.handle)
	mux.HandleFunc("/items/", g.handle)
	mux.HandleFunc("/bookings", g.handle)
	mux.HandleFunc("/bookings/", g.handle)
	mux.HandleFunc("/requests", g.handle)
	mux.HandleFunc("/requests/", g.handle)

	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           g.loggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return g
}

func (g *Gateway) Start() error {
	if g.server == nil {
		return fmt.Errorf("gateway server is not initialized")
	}
	g.logger.Info().Str("addr", g.server.Addr).Str("upstream", g.upstream).Msg("gateway listening")
	if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

// Handler returns the configured root handler, for tests.
func (g *Gateway) Handler() http.Handler {
	return g.server.Handler
}

// handle validates the request and proxies it to the server.
func (g *Gateway) handle(w http.ResponseWriter, r *http.Request) {
	key := g.clientKey(r)
	if !g.allow(r.Context(), key) {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := g.validate(r, body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	g.forward(w, r, body)
}

func (g *Gateway) allow(ctx context.Context, key string) bool {
	if g.cfg.RateLimit.RPS > 0 && !g.rps.getLimiter(key).Allow() {
		return false
	}
	if g.cfg.RateLimit.Requests > 0 && g.limiter != nil {
		window := time.Duration(g.cfg.RateLimit.WindowS) * time.Second
		allowed, err := g.limiter.Allow(ctx, key, g.cfg.RateLimit.Requests, window)
		if err != nil {
			g.logger.Error().Err(err).Msg("rate limit check failed")
			return true
		}
		return allowed
	}
	return true
}

// clientKey идентифицирует клиента по заголовку пользователя, иначе по IP.
func (g *Gateway) clientKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(userHeader)); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (g *Gateway) forward(w http.ResponseWriter, r *http.Request, body []byte) {
	url := g.upstream + r.URL.Path
	if q := r.URL.Query(); len(q) > 0 {
		// Токен состояния уходит на сервер уже нормализованным.
		if state := q.Get("state"); state != "" {
			q.Set("state", strings.ToUpper(strings.TrimSpace(state)))
		}
		url += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, bytes.NewReader(body))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build upstream request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if id := r.Header.Get(userHeader); id != "" {
		req.Header.Set(userHeader, id)
	}
	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-Id", requestID)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Str("url", url).Msg("upstream request failed")
		writeError(w, http.StatusBadGateway, "server is unavailable")
		return
	}
	defer resp.Body.Close()

	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func (g *Gateway) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(endpointLabel(r.URL.Path), strconv.Itoa(recorder.status))

		g.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("gateway request")
	})
}

func endpointLabel(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return "/" + path
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// rpsLimiter держит отдельный token-bucket на каждого клиента.
type rpsLimiter struct {
	limiters sync.Map
	cfg      config.RateLimitConfig
}

func newRPSLimiter(cfg config.RateLimitConfig) *rpsLimiter {
	return &rpsLimiter{cfg: cfg}
}

func (l *rpsLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}
