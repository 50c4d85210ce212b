package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/masiqhakaze/website/internal/models"
)

var _ Backend = (*PostgresStore)(nil)

// PostgresStore keeps the collections as PostgreSQL tables. Every
// operation acquires its own pooled connection and releases it on return.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Migrate creates the tables if they don't exist. The auth table is
// pinned to a single row.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS auth (
			id              SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			hashed_password TEXT
		);
		CREATE TABLE IF NOT EXISTS posts (
			id    BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			body  TEXT NOT NULL,
			date  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS posts_title_idx ON posts (title);
		CREATE TABLE IF NOT EXISTS post_titles (
			title TEXT PRIMARY KEY
		)
	`)
	if err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCredential(ctx context.Context) (*models.Credential, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres acquire: %w", err)
	}
	defer conn.Release()

	var hashed *string
	err = conn.QueryRow(ctx, `SELECT hashed_password FROM auth WHERE id = 1`).Scan(&hashed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get credential: %w", err)
	}
	if hashed == nil || *hashed == "" {
		return nil, ErrNotFound
	}
	return &models.Credential{HashedPassword: *hashed}, nil
}

func (s *PostgresStore) PutCredential(ctx context.Context, hashedPassword string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("postgres acquire: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx,
		`INSERT INTO auth (id, hashed_password) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET hashed_password = EXCLUDED.hashed_password`,
		hashedPassword,
	)
	if err != nil {
		return fmt.Errorf("postgres put credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertPost(ctx context.Context, p *models.Post) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("postgres acquire: %w", err)
	}
	defer conn.Release()

	return insertPost(ctx, conn, p)
}

func (s *PostgresStore) InsertPostUnique(ctx context.Context, p *models.Post) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("postgres acquire: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO post_titles (title) VALUES ($1) ON CONFLICT DO NOTHING`, p.Title)
	if err != nil {
		return fmt.Errorf("postgres claim title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE title = $1)`, p.Title,
	).Scan(&exists); err != nil {
		return fmt.Errorf("postgres check title: %w", err)
	}
	if exists {
		return ErrDuplicate
	}

	if err := insertPost(ctx, tx, p); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres acquire: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT id, title, body, date FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

func (s *PostgresStore) FindPost(ctx context.Context, title string) (*models.Post, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres acquire: %w", err)
	}
	defer conn.Release()

	p, err := scanPost(conn.QueryRow(ctx,
		`SELECT id, title, body, date FROM posts WHERE title = $1 ORDER BY id LIMIT 1`, title))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post by title: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) DeletePosts(ctx context.Context, title string) (int, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres acquire: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM posts WHERE title = $1`, title)
	if err != nil {
		return 0, fmt.Errorf("delete posts: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM post_titles WHERE title = $1`, title); err != nil {
		return 0, fmt.Errorf("release title: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres commit: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// querier is satisfied by both *pgxpool.Conn and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertPost(ctx context.Context, q querier, p *models.Post) error {
	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO posts (title, body, date) VALUES ($1, $2, $3) RETURNING id`,
		p.Title, p.Body, p.Date,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	p.ID = strconv.FormatInt(id, 10)
	return nil
}

func scanPost(row pgx.Row) (models.Post, error) {
	var (
		p  models.Post
		id int64
	)
	if err := row.Scan(&id, &p.Title, &p.Body, &p.Date); err != nil {
		return models.Post{}, err
	}
	p.ID = strconv.FormatInt(id, 10)
	return p, nil
}
