package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/mobil-koeln/moko-board/internal/board"
	"github.com/mobil-koeln/moko-board/internal/config"
	"github.com/mobil-koeln/moko-board/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// BoardBuilder produces one aggregated board per call
type BoardBuilder interface {
	Build(ctx context.Context) (board.Report, error)
}

// StationSearcher proxies the upstream station autocomplete
type StationSearcher interface {
	SearchStationsRaw(ctx context.Context, query string) (json.RawMessage, error)
}

// Server serves the dashboard, its JSON feed and the station search proxy
type Server struct {
	cfg      config.ServerConfig
	board    BoardBuilder
	stations StationSearcher
	logger   *logging.Logger
	tmpl     *template.Template

	router chi.Router
	srv    *http.Server
}

// New wires routes and middleware. Nothing listens until Start.
func New(cfg config.ServerConfig, builder BoardBuilder, stations StationSearcher, logger *logging.Logger) (*Server, error) {
	if builder == nil {
		return nil, errors.New("server: board builder is required")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	tmpl, err := template.ParseFS(templateFS, "templates/board.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		board:    builder,
		stations: stations,
		logger:   logger,
		tmpl:     tmpl,
	}

	r := chi.NewRouter()
	r.Use(Logging(logger))
	r.Use(Security)
	s.registerRoutes(r)
	s.router = r

	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s, nil
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/", s.indexHandler)
	r.Get("/healthz", s.healthHandler)

	if s.cfg.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir)))
		r.Handle("/static/*", fs)
	}

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		r.Get("/api/departures", s.departuresHandler)
		if s.stations != nil {
			r.Get("/stations", s.stationsHandler)
		}
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	s.logger.Printf("starting server on %s", s.srv.Addr)
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		s.logger.Printf("server stopped")
		return nil
	}
	return err
}

// Shutdown drains open connections
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Print("shutting down server")
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Printf("error during server shutdown: %v", err)
		return err
	}
	return nil
}
