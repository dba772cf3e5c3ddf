package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/scribe/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		author_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		category TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		image TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
	CREATE INDEX IF NOT EXISTS idx_posts_source ON posts(source);

	CREATE TABLE IF NOT EXISTS post_tags (
		post_id TEXT NOT NULL,
		tag TEXT NOT NULL,
		PRIMARY KEY (post_id, tag),
		FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag);
	`
	_, err := db.Exec(schema)
	return err
}

const postColumns = `id, author_id, title, author, category, tags, image, content, source, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*models.Post, error) {
	var p models.Post
	var tagsJSON string
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Author, &p.Category, &tagsJSON,
		&p.Image, &p.Content, &p.Source, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &p.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	return &p, nil
}

// CreatePost inserts a post. Timestamps are set when zero.
func (s *SQLiteStorage) CreatePost(ctx context.Context, post *models.Post) error {
	return s.write(ctx, post, `INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
}

// UpsertPost inserts post or replaces the stored post with the same ID.
func (s *SQLiteStorage) UpsertPost(ctx context.Context, post *models.Post) error {
	return s.write(ctx, post, `INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET author_id = excluded.author_id, title = excluded.title,
		author = excluded.author, category = excluded.category, tags = excluded.tags,
		image = excluded.image, content = excluded.content, source = excluded.source,
		updated_at = excluded.updated_at`)
}

func (s *SQLiteStorage) write(ctx context.Context, post *models.Post, query string) error {
	tagsJSON, err := json.Marshal(post.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query,
		post.ID, post.AuthorID, post.Title, post.Author, post.Category, string(tagsJSON),
		post.Image, post.Content, post.Source, post.CreatedAt, post.UpdatedAt,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = ?`, post.ID); err != nil {
		return err
	}
	for _, tag := range post.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO post_tags (post_id, tag) VALUES (?, ?)`,
			post.ID, strings.ToLower(tag),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetPost returns a post by ID.
func (s *SQLiteStorage) GetPost(ctx context.Context, id string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

// GetPostBySource returns the post imported from source.
func (s *SQLiteStorage) GetPostBySource(ctx context.Context, source string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE source = ? LIMIT 1`, source))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, source)
	}
	return p, err
}

// DeletePost removes a post by ID. Returns ErrNotFound when no such post exists.
func (s *SQLiteStorage) DeletePost(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tx.Commit()
}

// ListPosts returns posts newest first with offset and limit.
func (s *SQLiteStorage) ListPosts(ctx context.Context, offset, limit int) ([]*models.Post, error) {
	return s.query(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
}

// ListPostsByTag returns the posts carrying tag, newest first. Tags match case-insensitively.
func (s *SQLiteStorage) ListPostsByTag(ctx context.Context, tag string) ([]*models.Post, error) {
	return s.query(ctx,
		`SELECT `+prefixed("p.", postColumns)+` FROM posts p
		 JOIN post_tags t ON t.post_id = p.id
		 WHERE t.tag = ? ORDER BY p.created_at DESC`,
		strings.ToLower(tag),
	)
}

func prefixed(prefix, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, c := range parts {
		parts[i] = prefix + c
	}
	return strings.Join(parts, ", ")
}

func (s *SQLiteStorage) query(ctx context.Context, q string, args ...any) ([]*models.Post, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CountPosts returns the total number of posts.
func (s *SQLiteStorage) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
