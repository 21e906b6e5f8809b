package test

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"tasklist/internal/adapter/database/sqlite"
)

// findProjectRoot finds the project root directory by looking for go.mod
func findProjectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// Fallback to current working directory
	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	log.Fatal("Could not find project root directory")
	return ""
}

// MigrationsPath returns the migrations directory of the given driver.
func MigrationsPath(driver string) string {
	return filepath.Join(findProjectRoot(), "db", "migrations", driver)
}

// InitTestDB opens a private in-memory SQLite database with foreign keys on
// and every migration applied.
func InitTestDB() *sqlite.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())

	db, err := sql.Open("sqlite3", dsn)

	if err != nil {
		log.Fatal(err)
	}

	// A single connection keeps the in-memory database alive and serializes
	// writes.
	db.SetMaxOpenConns(1)

	if err := sqlite.RunMigrations(db, MigrationsPath("sqlite")); err != nil {
		log.Fatal(err)
	}

	return sqlite.Wrap(db)
}

// CleanDB empties every application table, keeping the migration state.
func CleanDB(t *testing.T, db *sql.DB) {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT IN ('sqlite_sequence', 'schema_migrations')")
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}

	var tables []string

	for rows.Next() {
		var table string

		if err := rows.Scan(&table); err != nil {
			rows.Close()
			t.Fatalf("Failed to scan table name: %v", err)
		}

		tables = append(tables, strings.TrimSpace(table))
	}

	if err := rows.Err(); err != nil {
		t.Fatalf("Error iterating over rows: %v", err)
	}

	rows.Close()

	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("Failed to execute delete for table %s: %v", table, err)
		}
	}
}
