package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/export"
	"shareit/internal/metrics"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const userHeader = "X-Sharer-User-Id"

// Server is the main HTTP API: users, items, bookings and item requests.
// It trusts the gateway to have screened malformed requests, but still
// enforces all business rules itself.
type Server struct {
	cfg      config.ServerConfig
	users    *service.UserService
	items    *service.ItemService
	bookings *service.BookingService
	requests *service.RequestService
	exporter *export.Exporter
	logger   *zerolog.Logger
	server   *http.Server
}

func NewServer(cfg config.ServerConfig, db *database.DB, exporter *export.Exporter, logger *zerolog.Logger) *Server {
	srv := &Server{
		cfg:      cfg,
		users:    service.NewUserService(db, logger),
		items:    service.NewItemService(db, logger),
		bookings: service.NewBookingService(db, logger),
		requests: service.NewRequestService(db, logger),
		exporter: exporter,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/users", srv.handleUsers)
	mux.HandleFunc("/users/", srv.handleUserByID)
	mux.HandleFunc("/items", srv.handleItems)
	mux.HandleFunc("/items/search", srv.handleItemSearch)
	mux.HandleFunc("/items/", srv.handleItemByID)
	mux.HandleFunc("/bookings", srv.handleBookings)
	mux.HandleFunc("/bookings/owner", srv.handleOwnerBookings)
	mux.HandleFunc("/bookings/owner/export", srv.handleOwnerExport)
	mux.HandleFunc("/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/requests", srv.handleRequests)
	mux.HandleFunc("/requests/all", srv.handleOtherRequests)
	mux.HandleFunc("/requests/", srv.handleRequestByID)

	handler := requestIDMiddleware(loggingMiddleware(logger, mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the configured root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(logger *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		endpoint := endpointLabel(r.URL.Path)
		metrics.IncHTTP(endpoint, strconv.Itoa(recorder.status))

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Str("request_id", w.Header().Get("X-Request-Id")).
			Msg("http request")
	})
}

// endpointLabel collapses paths with ids into their first segment so the
// metric cardinality stays bounded.
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

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeServiceError translates service sentinel errors into HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedState):
		writeError(w, http.StatusBadRequest, service.ErrUnsupportedState.Error())
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// callerID читает X-Sharer-User-Id; без него запрос не обслуживается.
func callerID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(userHeader))
	if raw == "" {
		return 0, fmt.Errorf("%s header is required", userHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s header must be an integer", userHeader)
	}
	return id, nil
}

func pathID(path, prefix string) (int64, string, error) {
	rest := strings.TrimPrefix(path, prefix)
	idPart := rest
	var tail string
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		idPart = rest[:i]
		tail = rest[i+1:]
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid id in path")
	}
	return id, tail, nil
}

// parsePage reads optional from/size query parameters. Both absent means
// an unpaged listing.
func parsePage(r *http.Request) (*models.Page, error) {
	fromRaw := strings.TrimSpace(r.URL.Query().Get("from"))
	sizeRaw := strings.TrimSpace(r.URL.Query().Get("size"))
	if fromRaw == "" && sizeRaw == "" {
		return nil, nil
	}

	page := &models.Page{Size: 10}
	if fromRaw != "" {
		from, err := strconv.Atoi(fromRaw)
		if err != nil {
			return nil, fmt.Errorf("'from' must be an integer")
		}
		page.From = from
	}
	if sizeRaw != "" {
		size, err := strconv.Atoi(sizeRaw)
		if err != nil {
			return nil, fmt.Errorf("'size' must be an integer")
		}
		page.Size = size
	}
	return page, nil
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}
