package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/courierdesk-backend/pkg/config"
	"github.com/angelmondragon/courierdesk-backend/pkg/db"
	"github.com/angelmondragon/courierdesk-backend/pkg/logger"
	"github.com/angelmondragon/courierdesk-backend/pkg/migrate"
)

type migrateArgs struct {
	dir     string
	name    string
	version string
}

// offline commands only touch the migrations directory.
var offline = map[string]func(migrateArgs) (string, error){
	"create": func(a migrateArgs) (string, error) {
		if a.name == "" {
			return "", fmt.Errorf("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(a.dir, a.name)
		if err != nil {
			return "", err
		}
		return "created migration: " + path, nil
	},
	"validate": func(a migrateArgs) (string, error) {
		if err := migrate.ValidateDir(a.dir); err != nil {
			return "", err
		}
		return "migration validation passed", nil
	},
}

var online = map[string]func(context.Context, *sql.DB, migrateArgs) error{
	"up":     func(ctx context.Context, conn *sql.DB, a migrateArgs) error { return migrate.Run(ctx, conn, a.dir, "up") },
	"down":   func(ctx context.Context, conn *sql.DB, a migrateArgs) error { return migrate.Run(ctx, conn, a.dir, "down") },
	"status": func(ctx context.Context, conn *sql.DB, a migrateArgs) error { return migrate.Run(ctx, conn, a.dir, "status") },
	"version": func(ctx context.Context, conn *sql.DB, a migrateArgs) error {
		if a.version == "" {
			return fmt.Errorf("missing -version for version command")
		}
		return migrate.MigrateToVersion(ctx, conn, a.dir, a.version)
	},
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	args := migrateArgs{}
	flag.StringVar(&args.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&args.name, "name", "", "migration name (for create)")
	flag.StringVar(&args.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	if run, ok := offline[*cmd]; ok {
		msg, err := run(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s failed: %v\n", *cmd, err)
			os.Exit(1)
		}
		fmt.Println(msg)
		return
	}

	run, ok := online[*cmd]
	if !ok {
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": args.dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	// The SQLite dev database is built from the embedded schema, not goose.
	if cfg.FeatureFlags.UseSQLite {
		if *cmd != "up" {
			fmt.Fprintf(os.Stderr, "%s is not supported on sqlite\n", *cmd)
			os.Exit(1)
		}
		requireResource(ctx, logg, "sqlite schema", migrate.ApplySQLiteSchema(ctx, dbClient.DB()))
		logg.Info(ctx, "sqlite schema applied")
		return
	}

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	if err := run(ctx, sqlDB, args); err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migration complete")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
