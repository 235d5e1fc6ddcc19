package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/RowanDark/enigma/internal/cipher"
	"github.com/RowanDark/enigma/internal/enigma"
	"github.com/RowanDark/enigma/internal/logging"
	"github.com/RowanDark/enigma/internal/observability/metrics"
	"github.com/RowanDark/enigma/internal/observability/tracing"
	"github.com/RowanDark/enigma/internal/service"
)

const requestIDHeader = "X-Request-ID"

// Config configures the HTTP server.
type Config struct {
	Addr string
	// Defaults pre-fill the form and stand in for an empty JSON key.
	Defaults enigma.SettingsInput
	Service  *service.Service
	Logger   *logging.AuditLogger
}

// Server serves the HTML form and the JSON API.
type Server struct {
	cfg        Config
	svc        *service.Service
	logger     *logging.AuditLogger
	router     *mux.Router
	httpServer *http.Server
}

// NewServer constructs an HTTP server using the provided configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("service is required")
	}
	if _, err := enigma.ParseSettings(cfg.Defaults); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{cfg: cfg, svc: cfg.Service, logger: logger}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, tracing.HTTPMiddleware)

	r.HandleFunc("/", s.handleFormGet).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleFormPost).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/enigma/process", s.handleProcess).Methods(http.MethodPost)
	v1.HandleFunc("/enigma/catalog", s.handleCatalog).Methods(http.MethodGet)

	v1.HandleFunc("/cipher/operations", s.handleCipherOperations).Methods(http.MethodGet)
	v1.HandleFunc("/cipher/execute", s.handleCipherExecute).Methods(http.MethodPost)
	v1.HandleFunc("/cipher/pipeline", s.handleCipherPipeline).Methods(http.MethodPost)

	v1.HandleFunc("/recipes", s.handleRecipeList).Methods(http.MethodGet)
	v1.HandleFunc("/recipes", s.handleRecipeSave).Methods(http.MethodPost)
	v1.HandleFunc("/recipes/{name}", s.handleRecipeGet).Methods(http.MethodGet)
	v1.HandleFunc("/recipes/{name}", s.handleRecipeDelete).Methods(http.MethodDelete)
	v1.HandleFunc("/recipes/{name}/run", s.handleRecipeRun).Methods(http.MethodPost)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	return r
}

// Handler returns the root handler. It accepts HTTP/1.1 and cleartext HTTP/2.
func (s *Server) Handler() http.Handler {
	return h2c.NewHandler(s.router, &http2.Server{})
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := strings.TrimSpace(s.cfg.Addr)
	if addr == "" {
		return errors.New("http address must be provided")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	s.logger.Record(logging.EventServerLifecycle, "", map[string]any{"state": "listening", "addr": ln.Addr().String()})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		s.logger.Record(logging.EventServerLifecycle, "", map[string]any{"state": "stopped"})
		return <-errCh
	case err := <-errCh:
		return err
	}
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = logging.NewRequestID()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// statusFor maps engine and recipe errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, enigma.ErrInvalidConfig), errors.Is(err, cipher.ErrInvalidRecipe):
		return http.StatusBadRequest
	case errors.Is(err, enigma.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, cipher.ErrRecipeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	if errors.Is(err, enigma.ErrInvalidConfig) {
		resp.Reason = enigma.ReasonOf(err)
	}
	s.writeJSON(w, statusFor(err), resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

const maxBodyBytes = 1 << 20
