package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"foundit/internal/auth"
	"foundit/internal/db"
	"foundit/internal/store"
	"foundit/internal/web"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("foundit", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", "foundit.sqlite3", "")
	fs.StringVar(&dbPath, "d", "foundit.sqlite3", "")

	var addr string
	fs.StringVar(&addr, "addr", ":8080", "")
	fs.StringVar(&addr, "a", ":8080", "")

	var baseURL string
	fs.StringVar(&baseURL, "base-url", "http://localhost:8080", "")

	var issuer string
	fs.StringVar(&issuer, "oidc-issuer", "", "")

	var clientID string
	fs.StringVar(&clientID, "oidc-client", "", "")

	var emailDomain string
	fs.StringVar(&emailDomain, "domain", "student.example.edu", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: foundit [flags]

Flags:
  -d, -db <path>          SQLite database path (default: foundit.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -base-url <url>         public base URL used for OIDC redirects (default: http://localhost:8080)
  -oidc-issuer <url>      OIDC provider issuer URL (required)
  -oidc-client <id>       OIDC client ID (required)
  -domain <domain>        institution email domain allowed to sign in (default: student.example.edu)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

The OIDC client secret is read from the FOUNDIT_OIDC_CLIENT_SECRET
environment variable.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	if issuer == "" || clientID == "" {
		fmt.Fprintln(os.Stderr, "both -oidc-issuer and -oidc-client are required")
		fs.Usage()
		os.Exit(1)
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	// Open database and run idempotent migrations.
	database, err := db.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	slog.Info("database ready", "path", dbPath)

	// Load session secret from database (auto-generated on first run).
	sessionSecret, err := store.GetSessionSecret(context.Background(), database)
	if err != nil {
		slog.Error("failed to get session secret", "error", err)
		os.Exit(1)
	}

	// Discover the OIDC provider.
	oidcClient, err := auth.NewOIDCClient(context.Background(), auth.OIDCConfig{
		Issuer:       issuer,
		ClientID:     clientID,
		ClientSecret: os.Getenv("FOUNDIT_OIDC_CLIENT_SECRET"),
		RedirectURL:  strings.TrimSuffix(baseURL, "/") + "/auth/callback",
	})
	if err != nil {
		slog.Error("failed to set up OIDC client", "error", err, "issuer", issuer)
		os.Exit(1)
	}

	router, err := web.NewRouter(database, web.Config{
		SessionSecret: sessionSecret,
		OIDC:          oidcClient,
		EmailDomain:   emailDomain,
	})
	if err != nil {
		slog.Error("failed to set up router", "error", err)
		os.Exit(1)
	}

	handler := web.LoggingMiddleware(web.MetricsMiddleware(router))

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr, "domain", emailDomain)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}
