package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/container"
	"github.com/zombor/billed/internal/routes"
	"github.com/zombor/billed/internal/views"
)

// Store is the bill store as seen by the HTTP layer
type Store interface {
	container.Store

	// Get returns a single bill, drafts included
	Get(ctx context.Context, id string) (*bill.Bill, error)

	// ReceiptFile returns a stored receipt and its content type
	ReceiptFile(ctx context.Context, name string) ([]byte, string, error)
}

// Server handles HTTP requests for bills
type Server struct {
	store     Store
	drafts    *Drafts
	basicAuth BasicAuth
	mux       *http.ServeMux
	handler   http.Handler
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with default mux
func NewServer(store Store, drafts *Drafts, basicAuth BasicAuth) *Server {
	return NewServerWithMux(store, drafts, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(store Store, drafts *Drafts, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{
		store:     store,
		drafts:    drafts,
		basicAuth: basicAuth,
		mux:       mux,
	}
	s.registerRoutes()
	s.handler = metricsMiddleware(s.corsMiddleware(s.mux))
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.basicAuth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.basicAuth.Password)) == 1
	return userOK && passOK
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Billed"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// corsMiddleware adds CORS headers to API responses and answers preflight requests
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// registerRoutes registers every route on the server's mux
func (s *Server) registerRoutes() {
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(views.Static())))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", s.requireAuth(promhttp.Handler().ServeHTTP))

	// Pages
	s.mux.HandleFunc("GET /{$}", s.requireAuth(s.handleLoginPage))
	s.mux.HandleFunc("POST /login", s.requireAuth(s.handleLogin))
	s.mux.HandleFunc("POST /logout", s.requireAuth(s.handleLogout))
	s.mux.HandleFunc("GET "+routes.Bills, s.requireAuth(s.withUser(s.handleBills)))
	s.mux.HandleFunc("GET "+routes.Bills+"/{id}/receipt", s.requireAuth(s.withUser(s.handleViewReceipt)))
	s.mux.HandleFunc("GET "+routes.NewBill, s.requireAuth(s.withUser(s.handleNewBillPage)))
	s.mux.HandleFunc("POST "+routes.NewBill, s.requireAuth(s.withUser(s.handleSubmitBill)))
	s.mux.HandleFunc("POST "+routes.NewBill+"/file", s.requireAuth(s.withAPIUser(s.handleUploadReceipt)))

	// Receipt files
	s.mux.HandleFunc("GET /receipts/{name}", s.requireAuth(s.withUser(s.handleReceiptFile)))

	// API
	s.mux.HandleFunc("GET /api/bills", s.requireAuth(s.withAPIUser(s.handleListBills)))
	s.mux.HandleFunc("POST /api/bills", s.requireAuth(s.withAPIUser(s.handleUploadReceipt)))
	s.mux.HandleFunc("PATCH /api/bills/{key}", s.requireAuth(s.withAPIUser(s.handleUpdateBill)))
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
