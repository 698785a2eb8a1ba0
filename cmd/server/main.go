package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inamate/diagrammer/backend-go/internal/auth"
	"github.com/inamate/diagrammer/backend-go/internal/config"
	"github.com/inamate/diagrammer/backend-go/internal/document"
	mw "github.com/inamate/diagrammer/backend-go/internal/middleware"
	"github.com/inamate/diagrammer/backend-go/internal/session"
	"github.com/inamate/diagrammer/backend-go/internal/store"
	"github.com/inamate/diagrammer/backend-go/internal/workspace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	defaults, err := config.LoadDiagramDefaults(cfg.DiagramDefaults)
	if err != nil {
		slog.Error("load diagram defaults", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	authService := auth.NewService(st, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	diagramService := workspace.NewService(st, defaults)
	diagramHandler := workspace.NewHandler(diagramService)

	// Document loader and saver for the session hub
	docLoader := func(ctx context.Context, diagramID string) (*document.Diagram, error) {
		return diagramService.LoadDocument(ctx, diagramID)
	}
	docSaver := func(ctx context.Context, diagramID string, doc *document.Diagram) error {
		_, err := diagramService.StoreDocument(ctx, diagramID, doc)
		return err
	}

	hub := session.NewHub(docLoader, docSaver, cfg.AutosaveInterval)
	go hub.Run()

	origins := cfg.Origins()
	wsHandler := session.NewHandler(hub, authService, diagramService, originPatterns(origins))

	r := mux.NewRouter()

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Shape catalog (public)
	r.HandleFunc("/shapes", workspace.Shapes).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/diagrams", diagramHandler.List).Methods("GET")
	api.HandleFunc("/diagrams", diagramHandler.Create).Methods("POST")
	api.HandleFunc("/diagrams/{diagramId}", diagramHandler.Get).Methods("GET")
	api.HandleFunc("/diagrams/{diagramId}", diagramHandler.Delete).Methods("DELETE")
	api.HandleFunc("/diagrams/{diagramId}/document", diagramHandler.GetDocument).Methods("GET")
	api.HandleFunc("/diagrams/{diagramId}/document", diagramHandler.PutDocument).Methods("PUT")

	// WebSocket endpoint, token in the query string
	r.Handle("/ws/diagrams/{diagramId}", wsHandler)

	// CORS wraps the router so preflight requests reach it even without a
	// matching OPTIONS route
	handler := mw.Recovery(mw.Logger(mw.CORS(origins)(r)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to save all dirty diagrams
		slog.Info("saving all diagrams...")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.DriverSQLite:
		lite, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		slog.Warn("using in-memory store, diagrams are lost on restart")
		return store.NewMemory(), nil
	}
}

// originPatterns turns allowed origins into the host patterns the websocket
// origin check expects.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		} else {
			patterns = append(patterns, o)
		}
	}
	return patterns
}
