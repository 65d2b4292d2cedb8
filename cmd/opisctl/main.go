package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/erazemk/opis/internal/bootstrap"
	"github.com/erazemk/opis/internal/config"
	"github.com/erazemk/opis/internal/db"
	"github.com/erazemk/opis/internal/logging"
	"github.com/erazemk/opis/internal/store"
)

const usage = "Usage: opisctl <init|seed|touch> [-db <path>] [-config <path>]"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	if _, err := logging.Setup(""); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = cmdInit(os.Args[2:])
	case "seed":
		err = cmdSeed(os.Args[2:])
	case "touch":
		err = cmdTouch(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n%s\n", os.Args[1], usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig parses the common flags of a subcommand. An explicit -db
// overrides the configuration.
func loadConfig(name string, args []string, extra func(*flag.FlagSet)) (config.Config, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	dbPath := fs.String("db", "", "path to SQLite database file")
	configPath := fs.String("config", "", "YAML configuration file")
	if extra != nil {
		extra(fs)
	}
	fs.Parse(args)

	cfg, err := config.Load(*configPath, os.LookupEnv)
	if err != nil {
		return cfg, err
	}
	if *dbPath != "" {
		cfg.DB = *dbPath
	}
	return cfg, nil
}

func cmdInit(args []string) error {
	var admin string
	cfg, err := loadConfig("init", args, func(fs *flag.FlagSet) {
		fs.StringVar(&admin, "user", "", "admin username")
	})
	if err != nil {
		return err
	}
	if admin != "" {
		cfg.AdminUser = admin
	}

	if _, err := os.Stat(cfg.DB); err == nil {
		return fmt.Errorf("database file %s already exists", cfg.DB)
	}

	password, err := bootstrap.InitDatabase(context.Background(), cfg.DB, cfg.AdminUser)
	if err != nil {
		return err
	}

	fmt.Printf("Database created: %s\n", cfg.DB)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", cfg.AdminUser)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	return nil
}

func cmdSeed(args []string) error {
	cfg, err := loadConfig("seed", args, nil)
	if err != nil {
		return err
	}

	database, err := openExisting(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()

	res, err := bootstrap.Seed(context.Background(), database, time.Now(), nil)
	if err != nil {
		return err
	}

	fmt.Printf("Companies added: %d\n", res.Companies)
	fmt.Printf("Assets added:    %d (skipped %d)\n", res.Assets, res.Skipped)
	return nil
}

func cmdTouch(args []string) error {
	cfg, err := loadConfig("touch", args, nil)
	if err != nil {
		return err
	}

	database, err := openExisting(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := store.TouchAssets(context.Background(), database, time.Now())
	if err != nil {
		return err
	}

	slog.Info("last seen refreshed", "assets", n)
	fmt.Printf("Assets marked as seen: %d\n", n)
	return nil
}

// openExisting opens a database that must already exist and brings its
// schema up to date.
func openExisting(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("database file %s does not exist, run opisctl init first", path)
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return database, nil
}
