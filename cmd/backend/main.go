package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"lead-capture/internal/backup"
	"lead-capture/internal/config"
	"lead-capture/internal/logging"
	"lead-capture/internal/server"
	"lead-capture/internal/store"
	"lead-capture/internal/submission"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel).
		With().Str("service", "backend").Logger()

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	st, err := store.Open(store.Options{
		Driver:      cfg.StoreDriver,
		Path:        cfg.StorePath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	stamper, err := newStamper(cfg)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Addr:         cfg.Addr,
		StaticDir:    cfg.StaticDir,
		HiddenPaths:  hiddenPaths(cfg),
		Store:        st,
		Stamper:      stamper,
		Branding:     cfg.Branding,
		MaxBodyBytes: cfg.MaxBodyBytes,
		RateLimit:    cfg.RateLimit,
		Webhook:      cfg.Webhook,
		Logger:       log,
		Version:      cfg.Version,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Backup.Enabled {
		if err := startBackups(ctx, cfg, st, srv.Metrics(), log); err != nil {
			return err
		}
	}

	// Start the HTTP server in a background goroutine so we can listen for
	// OS signals while it runs.
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("version", cfg.Version).
			Str("store", cfg.StoreDriver).Str("id_scheme", cfg.IDScheme).Msg("starting")
		errCh <- srv.Start()
	}()
	fmt.Println(banner(cfg))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
		// Give in-flight requests and webhook deliveries 5 seconds.
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info().Msg("shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func newStamper(cfg *config.Config) (*submission.Stamper, error) {
	ids, err := submission.NewIDGenerator(cfg.IDScheme)
	if err != nil {
		return nil, err
	}
	policy, err := submission.ParseReservedPolicy(cfg.ReservedFields)
	if err != nil {
		return nil, err
	}
	return submission.NewStamper(ids, policy), nil
}

// hiddenPaths keeps the submissions file out of the static site when it
// lives under the static directory.
func hiddenPaths(cfg *config.Config) []string {
	if cfg.StoreDriver != store.DriverFile {
		return nil
	}
	return []string{cfg.StorePath}
}

func startBackups(ctx context.Context, cfg *config.Config, st store.Store, rec backup.Recorder, log zerolog.Logger) error {
	b := cfg.Backup
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	objects, err := backup.NewMinioStore(connectCtx, b.Endpoint, b.AccessKey, b.SecretKey, b.Bucket)
	if err != nil {
		return fmt.Errorf("connect backup storage: %w", err)
	}

	m := backup.NewManager(backup.Config{
		Interval:      b.Interval,
		RetentionDays: b.RetentionDays,
		Compression:   b.Compression,
		Prefix:        b.Prefix,
	}, st, objects, log.With().Str("component", "backup").Str("bucket", b.Bucket).Logger(), rec)
	go m.Run(ctx)
	return nil
}

// banner is printed once at startup. A configured banner replaces the
// default box entirely.
func banner(cfg *config.Config) string {
	if cfg.Branding.Banner != "" {
		return cfg.Branding.Banner
	}

	lines := []string{
		cfg.Branding.ServiceName,
		"",
		"Running on: " + listenURL(cfg.Addr),
		"Submissions saved to: " + storeLocation(cfg),
		"Press Ctrl+C to stop",
	}
	width := 0
	for _, l := range lines {
		if len(l) > width {
			width = len(l)
		}
	}

	var b strings.Builder
	border := "+" + strings.Repeat("-", width+4) + "+\n"
	b.WriteString(border)
	for _, l := range lines {
		if l == "" {
			b.WriteString("|" + strings.Repeat("-", width+4) + "|\n")
			continue
		}
		fmt.Fprintf(&b, "|  %-*s  |\n", width, l)
	}
	b.WriteString(strings.TrimSuffix(border, "\n"))
	return b.String()
}

func listenURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func storeLocation(cfg *config.Config) string {
	if cfg.StoreDriver == store.DriverPostgres {
		return "PostgreSQL (DATABASE_URL)"
	}
	if abs, err := filepath.Abs(cfg.StorePath); err == nil {
		return abs
	}
	return cfg.StorePath
}
