package sqlite

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/mattn/go-sqlite3"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/rs/zerolog"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
)

const (
	DefaultPath           = "database.db"
	DefaultMigrationsPath = "db/migrations/sqlite"
)

type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

type Options struct {
	Path           string
	MigrationsPath string
	LogQueries     bool
}

// NewDB opens the database file, applies pending migrations and returns a
// traced, logged connection pool with foreign key enforcement turned on.
func NewDB(opts Options) (*DB, error) {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}

	if opts.MigrationsPath == "" {
		opts.MigrationsPath = DefaultMigrationsPath
	}

	dsn := WithForeignKeys(opts.Path)

	migrationDB, err := sql.Open("sqlite3", dsn)

	if err != nil {
		return nil, fmt.Errorf("open sqlite for migrations: %w", err)
	}

	if err := RunMigrations(migrationDB, opts.MigrationsPath); err != nil {
		migrationDB.Close()
		return nil, err
	}

	migrationDB.Close()

	traced, err := tracedDriver(dsn)

	if err != nil {
		return nil, err
	}

	level := zerolog.InfoLevel
	minimum := sqldblogger.LevelInfo

	if opts.LogQueries {
		level = zerolog.DebugLevel
		minimum = sqldblogger.LevelDebug
	}

	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("component", "sqlite").Logger()

	db := sqldblogger.OpenDriver(dsn, traced, zerologadapter.New(logger),
		sqldblogger.WithMinimumLevel(minimum),
	)

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return Wrap(db), nil
}

// tracedDriver returns the sqlite3 driver wrapped by otelsql. otelsql only
// hands out the wrapper through a pool, which is closed again here.
func tracedDriver(dsn string) (driver.Driver, error) {
	pool, err := otelsql.Open("sqlite3", dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("tasklist"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	traced := pool.Driver()

	if err := pool.Close(); err != nil {
		return nil, fmt.Errorf("close sqlite driver pool: %w", err)
	}

	return traced, nil
}

// Wrap attaches the placeholder style used by SQLite to an open pool.
func Wrap(db *sql.DB) *DB {
	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:           db,
		QueryBuilder: &queryBuilder,
	}
}

// WithForeignKeys appends the driver flag that enables ON DELETE CASCADE.
func WithForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}

	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}

	return dsn + "?_foreign_keys=on"
}

func RunMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})

	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsPath,
		"sqlite3",
		driver,
	)

	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err comes from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error

	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}
