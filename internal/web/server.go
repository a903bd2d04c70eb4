// Package web exposes the studio over a local HTTP JSON API. Section
// generation and chat stream NDJSON so a browser front end can render
// deltas as they arrive.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/berkgokcam/gddstudio/internal/config"
	"github.com/berkgokcam/gddstudio/internal/orchestrate"
	"github.com/berkgokcam/gddstudio/internal/store"
)

// NewServer creates and configures the HTTP server for the studio API.
func NewServer(s *store.Store, orch *orchestrate.Orchestrator, cfg *config.Config, version, bind string, port int) *http.Server {
	h := &Handlers{
		store:   s,
		orch:    orch,
		cfg:     cfg,
		version: version,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /api/status", h.HandleStatus)
	mux.HandleFunc("GET /api/models", h.HandleModels)
	mux.HandleFunc("GET /api/registry", h.HandleRegistry)

	mux.HandleFunc("GET /api/project", h.HandleProject)
	mux.HandleFunc("POST /api/project", h.HandleCreateProject)
	mux.HandleFunc("PUT /api/settings", h.HandleSettings)

	mux.HandleFunc("GET /api/sections", h.HandleSections)
	mux.HandleFunc("GET /api/sections/{id}", h.HandleSection)
	mux.HandleFunc("PUT /api/sections/{id}", h.HandleSetSection)
	mux.HandleFunc("PUT /api/sections/{id}/instruction", h.HandleInstruction)
	mux.HandleFunc("POST /api/sections/{id}/generate", h.HandleGenerate)

	mux.HandleFunc("GET /api/chat", h.HandleChatLog)
	mux.HandleFunc("POST /api/chat", h.HandleChat)
	mux.HandleFunc("DELETE /api/chat", h.HandleClearChat)

	mux.HandleFunc("GET /api/diagrams", h.HandleDiagrams)
	mux.HandleFunc("POST /api/diagrams", h.HandleCreateDiagram)
	mux.HandleFunc("GET /api/diagrams/{id}/export", h.HandleExportDiagram)

	mux.HandleFunc("GET /api/export/{format}", h.HandleExport)
	mux.HandleFunc("POST /api/import", h.HandleImport)

	handler := securityHeaders(mux)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: handler,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("GDD Studio API running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Printf("WARNING: Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
