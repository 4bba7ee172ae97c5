package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/siterag"
)

// DefaultAddr is the default API listen address.
const DefaultAddr = "127.0.0.1:5000"

// ShutdownTimeout is the time given for outstanding requests to finish.
const ShutdownTimeout = 5 * time.Second

// Server is the JSON API around an Asker.
type Server struct {
	ln     net.Listener
	server *http.Server
	router *http.ServeMux

	// Addr is the bind address. Defaults to DefaultAddr.
	Addr string

	// Organization names the site in the root greeting.
	Organization string

	// Asker answers /ask requests. A nil Asker makes /ask fail with 500.
	Asker siterag.Asker

	Logger *slog.Logger
}

// NewServer returns a new Server with its routes registered.
func NewServer() *Server {
	s := &Server{
		Addr:   DefaultAddr,
		router: http.NewServeMux(),
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("POST /ask", s.handleAsk)
	return s
}

// Handler returns the server's handler with CORS and request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(allowCORS(s.router))
}

// Open binds the listener and serves in a background goroutine.
func (s *Server) Open() error {
	if err := s.Listen(); err != nil {
		return err
	}
	go func() {
		if err := s.Serve(); err != nil {
			s.logger().Error("serve", "err", err)
		}
	}()
	return nil
}

// Listen binds the listener without serving.
func (s *Server) Listen() (err error) {
	s.ln, err = net.Listen("tcp", s.Addr)
	return err
}

// Serve accepts connections on the bound listener until Close. It returns
// nil after Close and the accept error when the listener fails.
func (s *Server) Serve() error {
	if s.ln == nil {
		return errors.New("server is not listening")
	}
	if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts down the server and releases the listener.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if s.ln != nil {
		// Serve may not have taken ownership yet.
		_ = s.ln.Close()
	}
	return err
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": s.Organization + " RAG System is running!",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "API is working correctly",
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.Asker == nil {
		writeError(w, siterag.Errorf(siterag.EINTERNAL, "Model not initialized."))
		return
	}

	var req siterag.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, siterag.Errorf(siterag.EINVALID, "Invalid JSON body: %v", err))
		return
	}

	answer, err := s.Asker.Ask(r.Context(), &req)
	if err != nil {
		s.logger().Warn("ask failed", "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// errorStatus maps application error codes to HTTP status codes.
var errorStatus = map[string]int{
	siterag.EINVALID:  http.StatusBadRequest,
	siterag.ENOTFOUND: http.StatusNotFound,
}

func writeError(w http.ResponseWriter, err error) {
	status, ok := errorStatus[siterag.ErrorCode(err)]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"detail": siterag.ErrorMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// allowCORS permits every origin, method and header and answers preflight
// requests directly.
func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger().Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(begin),
		)
	})
}
