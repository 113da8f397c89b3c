package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"lead-capture/internal/config"
	"lead-capture/internal/store"
	"lead-capture/internal/submission"
)

// Config holds everything the server needs. Store is required; the rest
// fall back to the same defaults as the environment config.
type Config struct {
	Addr      string // e.g. ":8000"
	StaticDir string
	// HiddenPaths are files under StaticDir that must never be served,
	// typically the submissions file itself.
	HiddenPaths []string

	Store        store.Store
	Stamper      *submission.Stamper
	Branding     config.Branding
	MaxBodyBytes int64
	RateLimit    int // submit requests per IP per minute; 0 disables
	Webhook      config.Webhook

	Logger  zerolog.Logger
	Version string
}

type Server struct {
	httpServer *http.Server
	handler    http.Handler

	store    store.Store
	stamper  *submission.Stamper
	branding config.Branding
	maxBody  int64
	version  string
	started  time.Time

	log      zerolog.Logger
	metrics  *Metrics
	limiter  *rateLimiter
	notifier *Notifier
}

func New(cfg Config) *Server {
	if cfg.StaticDir == "" {
		cfg.StaticDir = config.DefaultStaticDir
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = config.DefaultMaxBodyBytes
	}
	if cfg.Stamper == nil {
		ids, _ := submission.NewIDGenerator(submission.SchemeUUID)
		cfg.Stamper = submission.NewStamper(ids, submission.OverwriteReserved)
	}
	if cfg.Branding.ConfirmationMessage == "" {
		cfg.Branding.ConfirmationMessage = config.DefaultConfirmationMessage
	}
	if cfg.Branding.ServiceName == "" {
		cfg.Branding.ServiceName = config.DefaultServiceName
	}

	s := &Server{
		store:    cfg.Store,
		stamper:  cfg.Stamper,
		branding: cfg.Branding,
		maxBody:  cfg.MaxBodyBytes,
		version:  cfg.Version,
		started:  time.Now(),
		log:      cfg.Logger,
		metrics:  NewMetrics(),
	}
	if cfg.RateLimit > 0 {
		s.limiter = newRateLimiter(cfg.RateLimit, time.Minute)
		s.limiter.onLimit = s.metrics.RecordRateLimited
	}
	if cfg.Webhook.URL != "" {
		s.notifier = NewNotifier(cfg.Webhook, cfg.Logger, s.metrics)
	}

	static := newStaticHandler(cfg.StaticDir, cfg.HiddenPaths)

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(securityHeadersMiddleware)
	r.Use(middleware.Compress(5))

	r.Get("/health", s.HandleHealth)
	r.Get("/metrics", s.HandleMetrics)

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.middleware)
		}
		r.Post("/api/submit", s.handleSubmit)
	})
	r.Post("/api/submissions", s.handleList)
	r.Post("/*", s.handleNotFound)

	// Everything the API does not claim belongs to the static server,
	// except POSTs, which always get the JSON 404.
	r.NotFound(static.ServeHTTP)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			s.handleNotFound(w, r)
			return
		}
		static.ServeHTTP(w, r)
	})

	s.handler = r
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// Metrics returns the server's counters.
func (s *Server) Metrics() *Metrics { return s.metrics }

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests, waits for in-flight ones, then waits
// for pending webhook deliveries, all bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.notifier != nil {
		if werr := s.notifier.Wait(ctx); err == nil {
			err = werr
		}
	}
	return err
}
