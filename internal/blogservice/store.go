package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrAuthorNotFound = errors.New("author does not exist")
)

// PostgresBlogStore is the BlogStore adapter over the blog_posts table.
type PostgresBlogStore struct {
	db *sql.DB
}

func NewPostgresBlogStore(db *sql.DB) *PostgresBlogStore {
	return &PostgresBlogStore{db: db}
}

// foreignKeyViolation reports whether err is a Postgres foreign key constraint
// error on the named constraint.
func foreignKeyViolation(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func (s *PostgresBlogStore) Insert(ctx context.Context, blog *Blog) error {
	query := `
		INSERT INTO blog_posts (title, content, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query, blog.Title, blog.Content, blog.Author.ID).Scan(&blog.ID, &blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		switch {
		case foreignKeyViolation(err, "blog_posts_author_id_fkey"):
			return ErrAuthorNotFound
		default:
			return err
		}
	}

	return nil
}

func (s *PostgresBlogStore) GetByID(ctx context.Context, id int) (*Blog, error) {
	query := `
		SELECT b.id, b.title, b.content, b.created_at, b.updated_at, u.id, u.name, u.email
		FROM blog_posts b
		JOIN users u ON b.author_id = u.id
		WHERE b.id = $1`

	var blog Blog

	err := s.db.QueryRowContext(ctx, query, id).Scan(&blog.ID, &blog.Title, &blog.Content, &blog.CreatedAt, &blog.UpdatedAt, &blog.Author.ID, &blog.Author.Name, &blog.Author.Email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &blog, nil
}

// GetPage returns one page of blog posts ordered by id ascending, together with
// the total record count. Ordering by id keeps pages deterministic across
// requests.
func (s *PostgresBlogStore) GetPage(ctx context.Context, page, pageSize int) ([]Blog, int, error) {
	query := `
		SELECT count(*) OVER(), b.id, b.title, b.content, b.created_at, b.updated_at, u.id, u.name, u.email
		FROM blog_posts b
		JOIN users u ON b.author_id = u.id
		ORDER BY b.id ASC
		LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var total int
	blogs := []Blog{}

	for rows.Next() {
		var blog Blog
		err := rows.Scan(&total, &blog.ID, &blog.Title, &blog.Content, &blog.CreatedAt, &blog.UpdatedAt, &blog.Author.ID, &blog.Author.Name, &blog.Author.Email)
		if err != nil {
			return nil, 0, err
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return blogs, total, nil
}

// GetByAuthor lists all posts by one user, newest last. An author that exists
// but has not written anything yields an empty slice; an unknown author yields
// ErrAuthorNotFound.
func (s *PostgresBlogStore) GetByAuthor(ctx context.Context, authorID int) ([]Blog, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, authorID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrAuthorNotFound
	}

	query := `
		SELECT b.id, b.title, b.content, b.created_at, b.updated_at, u.id, u.name, u.email
		FROM blog_posts b
		JOIN users u ON b.author_id = u.id
		WHERE b.author_id = $1
		ORDER BY b.id ASC`

	rows, err := s.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		var blog Blog
		err := rows.Scan(&blog.ID, &blog.Title, &blog.Content, &blog.CreatedAt, &blog.UpdatedAt, &blog.Author.ID, &blog.Author.Name, &blog.Author.Email)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

// Update overwrites title and content and refreshes updated_at. The row is
// matched on both id and author so a post that disappeared or changed hands
// mid-flight resolves to ErrRecordNotFound. clock_timestamp() rather than
// now() so updated_at moves strictly forward even within one transaction.
func (s *PostgresBlogStore) Update(ctx context.Context, blog *Blog) error {
	query := `
		UPDATE blog_posts
		SET title = $1, content = $2, updated_at = clock_timestamp()
		WHERE id = $3 AND author_id = $4
		RETURNING created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query, blog.Title, blog.Content, blog.ID, blog.Author.ID).Scan(&blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (s *PostgresBlogStore) Delete(ctx context.Context, id, authorID int) error {
	query := `
		DELETE FROM blog_posts
		WHERE id = $1 AND author_id = $2`

	res, err := s.db.ExecContext(ctx, query, id, authorID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}
