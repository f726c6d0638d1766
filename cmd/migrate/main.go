// Command migrate manages the back office schema.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/config"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/logger"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	dir, err := resolveMigrationsPath(migrationsPath)
	if err != nil {
		log.Fatal("resolve migrations path", zap.Error(err))
	}

	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(dir, args[1], description)
		if err != nil {
			log.Fatal("create migration", zap.Error(err))
		}
		log.Info("migration created",
			zap.Uint("version", mf.Version),
			zap.String("up", mf.UpPath),
			zap.String("down", mf.DownPath),
		)
		return

	case "list":
		files, err := migration.ListMigrations(dir)
		if err != nil {
			log.Fatal("list migrations", zap.Error(err))
		}
		for _, f := range files {
			fmt.Println(f.Base())
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("ping database", zap.Error(err))
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		log.Fatal("create migrator", zap.Error(err))
	}
	defer m.Close()

	if err := run(m, dir, command, args[1:], log); err != nil {
		log.Fatal("migrate "+command, zap.Error(err))
	}
}

func run(m *migration.Migrator, dir, command string, args []string, log *zap.Logger) error {
	switch command {
	case "up":
		return m.Up()

	case "down":
		return m.Down()

	case "step":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Steps(n)

	case "goto":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("version must not be negative: %d", n)
		}
		return m.GoTo(uint(n))

	case "version", "status":
		st, err := m.Status(dir)
		if err != nil {
			return err
		}
		log.Info("schema status",
			zap.Uint("version", st.Version),
			zap.Bool("dirty", st.Dirty),
			zap.Int("pending", st.Pending),
		)
		return nil

	case "force":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(n)

	case "drop":
		if !slices.Contains(args, "-confirm") && !slices.Contains(args, "--confirm") {
			return fmt.Errorf("drop needs -confirm")
		}
		return m.Drop()
	}

	printUsage()
	return fmt.Errorf("unknown command %q", command)
}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing numeric argument")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return n, nil
}

// resolveMigrationsPath prefers the flag, then ./migrations, then the
// directory two levels above the binary.
func resolveMigrationsPath(flagValue string) (string, error) {
	path := flagValue
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if exe, exeErr := os.Executable(); exeErr == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	return filepath.Abs(path)
}

func printUsage() {
	fmt.Fprint(os.Stderr, `EBD back office schema migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    apply pending migrations
  down                  roll back every migration
  step <n>              apply n migrations, negative rolls back
  goto <version>        migrate to version
  status                show applied version and pending count
  force <version>       record version without running it (clears dirty)
  drop -confirm         drop every object in the database
  create <name> [desc]  scaffold the next numbered file pair
  list                  list migration files

Flags:
  -path string          migrations directory (default ./migrations)
  -log-level string     debug, info, warn, error (default info)

Connection settings come from config.toml or EBD_DATABASE_* variables.
`)
}
