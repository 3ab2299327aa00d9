package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/server"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A missing .env file is fine; the environment and flags still apply
	_ = godotenv.Load()

	fs := ff.NewFlagSet("billed")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "billed.db", "Database file path")
		storagePath = fs.StringLong("storage", "./receipts", "Receipt storage directory path")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		seed        = fs.BoolLong("seed", "Load the sample bills into an empty database")
		draftTTL    = fs.DurationLong("draft-ttl", time.Hour, "How long an uploaded receipt waits for its bill")
		draftSize   = fs.IntLong("draft-size", 1024, "Maximum number of receipts waiting for their bill")
		logLevel    = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BILLED"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*port, *dbPath, *storagePath, *authUser, *authPass, *seed, *draftSize, *draftTTL); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func run(port int, dbPath, storagePath, authUser, authPass string, seed bool, draftSize int, draftTTL time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Initializing database...", "path", dbPath)
	db, err := bill.NewBoltDB(dbPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	slog.Info("Initializing storage...", "path", storagePath)
	store, err := bill.NewLocalStorage(storagePath)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	billService := bill.NewService(db, store)
	if seed {
		n, err := billService.Seed(ctx, bill.Fixtures())
		if err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		slog.Info("Seeded database", "bills", n)
	}

	basicAuth := server.BasicAuth{
		Username: authUser,
		Password: authPass,
	}
	srv := server.NewServer(billService, server.NewDrafts(draftSize, draftTTL, server.DiscardWith(billService)), basicAuth)
	if authUser != "" || authPass != "" {
		slog.Info("Basic auth enabled", "user", authUser)
	}

	addr := fmt.Sprintf(":%d", port)
	if err := srv.Start(ctx, addr); err != nil {
		return err
	}
	slog.Info("Server stopped")
	return nil
}
