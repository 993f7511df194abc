// Package store implements the local SQLite metadata cache.
//
// Every record of an upload lives here; the remote service holds the bytes,
// the store remembers what was uploaded, where, and when. Operations never
// surface engine errors to callers: a failed write reports false, a failed
// read reports nothing found, and the error itself goes to the log. Callers
// branch on outcomes, not on error chains.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mutecomm/go-sqlcipher/v4"
	"github.com/pressly/goose/v3"

	"github.com/gofup/gofup/internal/logging"
	"github.com/gofup/gofup/internal/model"
	"github.com/gofup/gofup/internal/store/migrations"
)

const guestTokenKey = "guest_account"

// Store is the metadata cache backed by a single SQLite database file.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	log logging.Logger
}

// Open opens (creating if needed) the database at path and applies any
// pending schema migrations.
func Open(ctx context.Context, path string, log logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.NopLogger{}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=1", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// GetCategory returns the category with the given name, or nil when it is
// not cached.
func (s *Store) GetCategory(ctx context.Context, name string) *model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT name, folder_id, folder_code, created_at FROM categories WHERE name = ?`, name)

	var c model.Category
	var createdAt string
	if err := row.Scan(&c.Name, &c.FolderID, &c.FolderCode, &createdAt); err != nil {
		if err != sql.ErrNoRows {
			s.log.Error(ctx, "get category failed", "name", name, "error", err)
		}
		return nil
	}
	c.CreatedAt = parseTime(createdAt)
	return &c
}

// SaveCategory inserts or replaces the category row keyed by name. An empty
// name is rejected.
func (s *Store) SaveCategory(ctx context.Context, name, folderID, folderCode string, createdAt time.Time) bool {
	if name == "" {
		s.log.Warn(ctx, "rejecting category with empty name")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, folder_id, folder_code, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		     folder_id = excluded.folder_id,
		     folder_code = excluded.folder_code,
		     created_at = excluded.created_at`,
		name, folderID, folderCode, createdAt.Format(time.RFC3339))
	if err != nil {
		s.log.Error(ctx, "save category failed", "name", name, "error", err)
		return false
	}
	return true
}

// RemoveCategory deletes the category row, reporting whether a row was
// actually removed.
func (s *Store) RemoveCategory(ctx context.Context, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name)
	if err != nil {
		s.log.Error(ctx, "remove category failed", "name", name, "error", err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.log.Error(ctx, "remove category failed", "name", name, "error", err)
		return false
	}
	return n > 0
}

// ListCategoryNames returns all cached category names sorted alphabetically.
func (s *Store) ListCategoryNames(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY name`)
	if err != nil {
		s.log.Error(ctx, "list category names failed", "error", err)
		return nil
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			s.log.Error(ctx, "scan category name failed", "error", err)
			return nil
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		s.log.Error(ctx, "list category names failed", "error", err)
		return nil
	}
	return names
}

// ListCategories returns all cached categories sorted by name.
func (s *Store) ListCategories(ctx context.Context) []model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, folder_id, folder_code, created_at FROM categories ORDER BY name`)
	if err != nil {
		s.log.Error(ctx, "list categories failed", "error", err)
		return nil
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		var createdAt string
		if err := rows.Scan(&c.Name, &c.FolderID, &c.FolderCode, &createdAt); err != nil {
			s.log.Error(ctx, "scan category failed", "error", err)
			return nil
		}
		c.CreatedAt = parseTime(createdAt)
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		s.log.Error(ctx, "list categories failed", "error", err)
		return nil
	}
	return cats
}

// SaveFile inserts a new file record. Records are insert-only: a duplicate
// ID reports false, as does a record missing its ID, name, or download
// link.
func (s *Store) SaveFile(ctx context.Context, f *model.FileRecord) bool {
	if f == nil || f.ID == "" || f.Name == "" || f.DownloadLink == "" {
		s.log.Warn(ctx, "rejecting incomplete file record")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uploadTime := f.UploadTime
	if uploadTime.IsZero() {
		uploadTime = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files
		     (id, name, size, mime_type, upload_time, download_link,
		      folder_id, folder_code, category, account_id,
		      upload_speed, upload_duration)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.Size, f.MimeType, uploadTime.Format(time.RFC3339),
		f.DownloadLink, f.FolderID, f.FolderCode, f.Category, f.AccountID,
		f.UploadSpeed, f.UploadDuration)
	if err != nil {
		s.log.Error(ctx, "save file failed", "id", f.ID, "error", err)
		return false
	}
	return true
}

// GetFile returns the file record with the given ID, or nil.
func (s *Store) GetFile(ctx context.Context, id string) *model.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, selectFiles+` WHERE id = ?`, id)
	f, err := scanFile(row)
	if err != nil {
		if err != sql.ErrNoRows {
			s.log.Error(ctx, "get file failed", "id", id, "error", err)
		}
		return nil
	}
	return f
}

// ListFiles returns file records newest first. An empty category returns
// every record; otherwise only records in that category.
func (s *Store) ListFiles(ctx context.Context, category string) []model.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := selectFiles
	args := []any{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY upload_time DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.log.Error(ctx, "list files failed", "category", category, "error", err)
		return nil
	}
	defer rows.Close()

	var files []model.FileRecord
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			s.log.Error(ctx, "scan file failed", "error", err)
			return nil
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		s.log.Error(ctx, "list files failed", "category", category, "error", err)
		return nil
	}
	return files
}

// DeleteFile removes the record with the given ID, reporting whether a row
// was actually removed.
func (s *Store) DeleteFile(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		s.log.Error(ctx, "delete file failed", "id", id, "error", err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.log.Error(ctx, "delete file failed", "id", id, "error", err)
		return false
	}
	return n > 0
}

// DeleteFilesByCategory removes every record in the category and returns
// how many rows were deleted. A failure returns 0.
func (s *Store) DeleteFilesByCategory(ctx context.Context, name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE category = ?`, name)
	if err != nil {
		s.log.Error(ctx, "delete files by category failed", "category", name, "error", err)
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.log.Error(ctx, "delete files by category failed", "category", name, "error", err)
		return 0
	}
	return int(n)
}

// CountFiles returns the number of records, optionally limited to one
// category.
func (s *Store) CountFiles(ctx context.Context, category string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT COUNT(*) FROM files`
	args := []any{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		s.log.Error(ctx, "count files failed", "category", category, "error", err)
		return 0
	}
	return n
}

// CountCategories returns the number of cached categories.
func (s *Store) CountCategories(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		s.log.Error(ctx, "count categories failed", "error", err)
		return 0
	}
	return n
}

// OrphanedFiles returns records whose category is set but no longer
// present in the categories table.
func (s *Store) OrphanedFiles(ctx context.Context) []model.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, selectFiles+
		` WHERE category != '' AND category NOT IN (SELECT name FROM categories)
		  ORDER BY category, upload_time DESC`)
	if err != nil {
		s.log.Error(ctx, "list orphaned files failed", "error", err)
		return nil
	}
	defer rows.Close()

	var files []model.FileRecord
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			s.log.Error(ctx, "scan file failed", "error", err)
			return nil
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		s.log.Error(ctx, "list orphaned files failed", "error", err)
		return nil
	}
	return files
}

// GuestToken returns the stored guest account token, or "" when none has
// been captured yet.
func (s *Store) GuestToken(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, guestTokenKey).Scan(&v)
	if err != nil {
		if err != sql.ErrNoRows {
			s.log.Error(ctx, "get guest token failed", "error", err)
		}
		return ""
	}
	return v
}

// SaveGuestToken stores the guest account token, replacing any previous
// value. An empty token is rejected.
func (s *Store) SaveGuestToken(ctx context.Context, v string) bool {
	if v == "" {
		s.log.Warn(ctx, "rejecting empty guest token")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		guestTokenKey, v)
	if err != nil {
		s.log.Error(ctx, "save guest token failed", "error", err)
		return false
	}
	return true
}

// ClearGuestToken removes the stored guest account token, reporting whether
// one existed.
func (s *Store) ClearGuestToken(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM settings WHERE key = ?`, guestTokenKey)
	if err != nil {
		s.log.Error(ctx, "clear guest token failed", "error", err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.log.Error(ctx, "clear guest token failed", "error", err)
		return false
	}
	return n > 0
}

const selectFiles = `SELECT id, name, size, mime_type, upload_time, download_link,
    folder_id, folder_code, category, account_id, upload_speed, upload_duration
FROM files`

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (*model.FileRecord, error) {
	var f model.FileRecord
	var uploadTime string
	err := row.Scan(&f.ID, &f.Name, &f.Size, &f.MimeType, &uploadTime,
		&f.DownloadLink, &f.FolderID, &f.FolderCode, &f.Category, &f.AccountID,
		&f.UploadSpeed, &f.UploadDuration)
	if err != nil {
		return nil, err
	}
	f.UploadTime = parseTime(uploadTime)
	return &f, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
