package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/opis/internal/api"
	"github.com/erazemk/opis/internal/bootstrap"
	"github.com/erazemk/opis/internal/config"
	"github.com/erazemk/opis/internal/db"
	"github.com/erazemk/opis/internal/labels"
	"github.com/erazemk/opis/internal/logging"
	"github.com/erazemk/opis/internal/store"
)

const shutdownTimeout = 5 * time.Second

func main() {
	fs := flag.NewFlagSet("opis", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	// Flag values only override the configuration when set explicitly.
	flagValues := map[string]*string{}
	for _, names := range [][2]string{{"db", "d"}, {"addr", "a"}, {"user", "u"}, {"log", "l"}} {
		v := new(string)
		fs.StringVar(v, names[0], "", "")
		fs.StringVar(v, names[1], "", "")
		flagValues[names[0]] = v
		flagValues[names[1]] = v
	}

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: opis [flags]

Flags:
  -c, -config <path>      YAML configuration file (default: none)
  -d, -db <path>          SQLite database path (default: opis.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        admin username on first run (default: Admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Environment:
  OPIS_DB, OPIS_ADDR, OPIS_LANG, OPIS_INACTIVE_DAYS, OPIS_MAX_IMPORT_MB
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

	cfg, err := config.Load(configPath, os.LookupEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fs.Visit(func(f *flag.Flag) {
		v, ok := flagValues[f.Name]
		if !ok {
			return
		}
		switch f.Name {
		case "db", "d":
			cfg.DB = *v
		case "addr", "a":
			cfg.Addr = *v
		case "user", "u":
			cfg.AdminUser = *v
		case "log", "l":
			cfg.Log = *v
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := logging.Setup(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx := context.Background()

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(cfg.DB); errors.Is(err, os.ErrNotExist) {
		password, err := bootstrap.InitDatabase(ctx, cfg.DB, cfg.AdminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		printInitResult(cfg.DB, cfg.AdminUser, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}

	slog.Info("database ready", "path", cfg.DB)

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	handler := api.NewRouter(database, jwtSecret, api.Options{
		Labels:                labels.ForLang(cfg.Lang),
		InactiveDays:          cfg.InactiveDays,
		MaxImportBytes:        cfg.MaxImportBytes(),
		TrafficLightThreshold: cfg.TrafficLightThreshold,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Addr, err)
	}

	slog.Info("server started", "addr", ln.Addr().String(), "lang", cfg.Lang)
	if err := serve(server, ln, quit); err != nil {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}

// serve runs server on ln until a signal arrives on quit. It returns only
// after in-flight requests have drained, so the caller may close what the
// handlers use.
func serve(server *http.Server, ln net.Listener, quit <-chan os.Signal) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		sig, ok := <-quit
		if !ok {
			return
		}
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-drained
	return nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}
