// database/connection.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gewnthar/datasetdoc/config"
	_ "github.com/go-sql-driver/mysql" // MariaDB/MySQL driver
)

// Store persists documentation runs and their report rows.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore wraps an already opened database handle.
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log}
}

// Open connects to MySQL and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*Store, error) {
	// DSN: username:password@protocol(address)/dbname?param=value
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// One sequential writer; a small pool is plenty.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("dbname", cfg.DBName).Msg("connected to the database")
	return NewStore(db, log), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.log.Info().Msg("database connection closed")
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS documentation_runs (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NULL,
	sitemap_list_path VARCHAR(1024) NOT NULL,
	download_list_path VARCHAR(1024) NOT NULL,
	homepage_lines INT NOT NULL,
	skipped_homepages INT NOT NULL,
	matched_downloads INT NOT NULL,
	leftover_downloads INT NOT NULL,
	rows_written INT NOT NULL,
	report_path VARCHAR(1024) NOT NULL,
	published_object_key VARCHAR(1024) NULL,
	interrupted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS dataset_documentation (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	run_id BIGINT NOT NULL,
	row_no INT NOT NULL,
	name VARCHAR(512) NOT NULL,
	socrata_id VARCHAR(16) NOT NULL,
	download_filename TEXT NOT NULL,
	downloaded_ts VARCHAR(32) NOT NULL,
	homepage TEXT NOT NULL,
	description MEDIUMTEXT NOT NULL,
	internet_archive_snapshots MEDIUMTEXT NOT NULL,
	socrata_metadata MEDIUMTEXT NOT NULL,
	UNIQUE KEY uq_run_row (run_id, row_no),
	KEY idx_name (name),
	FOREIGN KEY (run_id) REFERENCES documentation_runs(id)
);`

func splitStatements(sql string) []string {
	var out []string
	for _, stmt := range strings.Split(sql, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}
