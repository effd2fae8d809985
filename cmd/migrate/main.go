package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/config"
	"github.com/magungh1/exporo-sme-export-assistant/internal/shared/storage/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx := context.Background()

	var (
		conn    *sql.DB
		dialect db.Dialect
	)
	switch cfg.Store.Driver {
	case "postgres":
		conn, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
		dialect = db.DialectPostgres
	case "sqlite":
		conn, err = db.OpenSQLite(ctx, cfg.SQLite.Path)
		dialect = db.DialectSQLite
	default:
		log.Printf("store driver %q has no migrations", cfg.Store.Driver)
		return
	}
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn, dialect); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
	log.Printf("migrations applied (%s)", dialect)
}
