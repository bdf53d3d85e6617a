package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/pressly/goose/v3"

	_ "github.com/lib/pq"
)

// ConnectDB opens the Postgres connection described by the environment and
// brings the schema up to date before returning it.
func ConnectDB() (*sql.DB, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		dbName := os.Getenv("POSTGRES_DB")
		dbUser := os.Getenv("POSTGRES_USER")
		dbPassword := os.Getenv("POSTGRES_PASSWORD")
		dbHost := os.Getenv("POSTGRES_HOST")
		if dbHost == "" {
			dbHost = "localhost"
		}

		if dbName == "" || dbUser == "" || dbPassword == "" {
			return nil, fmt.Errorf("DATABASE_URL or POSTGRES_DB/POSTGRES_USER/POSTGRES_PASSWORD must be set")
		}

		connStr = fmt.Sprintf("postgres://%v:%v@%v:5432/%v?sslmode=disable",
			dbUser, dbPassword, dbHost, dbName)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to reach database: %v", err)
	}

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "sql/schema"
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	version, err := goose.EnsureDBVersion(db)
	if err != nil {
		return nil, fmt.Errorf("failed to get DB version: %v", err)
	}
	log.Printf("Migrations applied, schema version %d", version)

	return db, nil
}
