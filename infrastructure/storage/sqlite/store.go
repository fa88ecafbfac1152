// ABOUTME: SQLite-backed download ledger, the persistent record of dispatch attempts
// ABOUTME: Append-only; records are never mutated, only inserted and queried

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"rss-downloader-api/core/domain"
	coreerrors "rss-downloader-api/core/errors"
	"rss-downloader-api/core/interfaces"
)

// Store implements the DownloadStore interface using SQLite
type Store struct {
	db     *sql.DB
	logger interfaces.Logger
}

// NewStore opens (or creates) the ledger database at filePath.
func NewStore(filePath string, logger interfaces.Logger) (*Store, error) {
	if filePath == "" {
		filePath = "downloads.db"
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the downloads table if it doesn't exist
func (s *Store) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS downloads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			download_url TEXT NOT NULL,
			feed_name TEXT NOT NULL,
			feed_url TEXT NOT NULL,
			published_time TIMESTAMP NOT NULL,
			download_time TIMESTAMP NOT NULL,
			downloader TEXT NOT NULL,
			status INTEGER NOT NULL,
			mode INTEGER DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_download_url ON downloads(download_url);
		CREATE INDEX IF NOT EXISTS idx_download_time ON downloads(download_time);
	`

	_, err := s.db.Exec(query)
	return err
}

// IsDownloaded reports whether the URL has a record with success status.
func (s *Store) IsDownloaded(ctx context.Context, downloadURL string) bool {
	var count int
	query := "SELECT COUNT(*) FROM downloads WHERE status = ? AND download_url = ?"
	err := s.db.QueryRowContext(ctx, query, domain.StatusSuccess, downloadURL).Scan(&count)
	if err != nil {
		s.logger.Error("Dedup lookup failed", map[string]interface{}{
			"url":   downloadURL,
			"error": err.Error(),
		})
		return false
	}
	return count > 0
}

// Insert appends one record and returns its assigned id. A storage failure
// is logged and reported as id 0; it never aborts the calling dispatch loop.
func (s *Store) Insert(ctx context.Context, record domain.DownloadRecord) int64 {
	query := `
		INSERT INTO downloads (
			title, url, download_url, feed_name, feed_url,
			published_time, download_time, downloader, status, mode
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		record.Title,
		record.URL,
		record.DownloadURL,
		record.FeedName,
		record.FeedURL,
		record.PublishedTime,
		record.DownloadTime,
		string(record.Downloader),
		record.Status,
		record.Mode,
	)
	if err != nil {
		s.logger.Error("Failed to insert download record", map[string]interface{}{
			"title": record.Title,
			"error": err.Error(),
		})
		return 0
	}

	id, err := result.LastInsertId()
	if err != nil {
		s.logger.Error("Failed to read inserted record id", map[string]interface{}{
			"title": record.Title,
			"error": err.Error(),
		})
		return 0
	}
	return id
}

// FindByID returns the record with the given id, or a NotFoundError.
func (s *Store) FindByID(ctx context.Context, id int64) (*domain.DownloadRecord, error) {
	query := selectColumns + " FROM downloads WHERE id = ?"
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &coreerrors.NotFoundError{
			Resource: "download record",
			ID:       strconv.FormatInt(id, 10),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record %d: %w", id, err)
	}
	return record, nil
}

// Search returns the matching records ordered by dispatch time descending,
// plus the total match count ignoring pagination.
func (s *Store) Search(ctx context.Context, filters interfaces.SearchFilters, page interfaces.Pagination) ([]domain.DownloadRecord, int, error) {
	where, params := buildWhere(filters)

	var total int
	countQuery := "SELECT COUNT(*) FROM downloads" + where
	if err := s.db.QueryRowContext(ctx, countQuery, params...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}

	limit := page.Limit
	if limit <= 0 {
		limit = 20
	}

	query := selectColumns + " FROM downloads" + where + " ORDER BY download_time DESC LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(params, limit, page.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search records: %w", err)
	}
	defer rows.Close()

	var records []domain.DownloadRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// Reset drops and recreates the downloads table. Administrative use only.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS downloads"); err != nil {
		return fmt.Errorf("failed to drop downloads table: %w", err)
	}
	return s.initSchema()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = "SELECT id, title, url, download_url, feed_name, feed_url, " +
	"published_time, download_time, downloader, status, mode"

// buildWhere turns the search filters into a parameterized WHERE clause.
func buildWhere(filters interfaces.SearchFilters) (string, []interface{}) {
	var clauses []string
	var params []interface{}

	if filters.Title != "" {
		clauses = append(clauses, "title LIKE ?")
		params = append(params, "%"+filters.Title+"%")
	}
	if filters.FeedName != "" {
		clauses = append(clauses, "feed_name LIKE ?")
		params = append(params, "%"+filters.FeedName+"%")
	}
	if filters.Downloader != "" {
		clauses = append(clauses, "downloader = ?")
		params = append(params, string(filters.Downloader))
	}
	if filters.Status != nil {
		clauses = append(clauses, "status = ?")
		params = append(params, *filters.Status)
	}
	if filters.Mode != nil {
		clauses = append(clauses, "mode = ?")
		params = append(params, *filters.Mode)
	}
	if !filters.PublishedAfter.IsZero() {
		clauses = append(clauses, "published_time >= ?")
		params = append(params, filters.PublishedAfter)
	}
	if !filters.PublishedBefore.IsZero() {
		clauses = append(clauses, "published_time <= ?")
		params = append(params, filters.PublishedBefore)
	}
	if !filters.DownloadAfter.IsZero() {
		clauses = append(clauses, "download_time >= ?")
		params = append(params, filters.DownloadAfter)
	}
	if !filters.DownloadBefore.IsZero() {
		clauses = append(clauses, "download_time <= ?")
		params = append(params, filters.DownloadBefore)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), params
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord reads one downloads row into a domain record.
func scanRecord(row rowScanner) (*domain.DownloadRecord, error) {
	var record domain.DownloadRecord
	var downloaderTag string

	err := row.Scan(
		&record.ID,
		&record.Title,
		&record.URL,
		&record.DownloadURL,
		&record.FeedName,
		&record.FeedURL,
		&record.PublishedTime,
		&record.DownloadTime,
		&downloaderTag,
		&record.Status,
		&record.Mode,
	)
	if err != nil {
		return nil, err
	}

	record.Downloader = domain.Downloader(downloaderTag)
	return &record, nil
}
