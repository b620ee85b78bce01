package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quickblog-app/apiserver/types"
)

const blogColumns = `id, title, sub_title, description, category, image, is_published, created_at`

// BlogRepository handles persistence for blogs.
type BlogRepository struct {
	db *sql.DB
}

func NewBlogRepository(db *sql.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) Create(ctx context.Context, blog types.Blog) (types.Blog, error) {
	blog.ID = uuid.NewString()
	blog.CreatedAt = time.Now()

	const query = `
		INSERT INTO blogs (id, title, sub_title, description, category, image, is_published, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		blog.ID,
		blog.Title,
		blog.SubTitle,
		blog.Description,
		blog.Category,
		blog.Image,
		blog.IsPublished,
		blog.CreatedAt,
	); err != nil {
		return types.Blog{}, err
	}
	return blog, nil
}

func (r *BlogRepository) ListAll(ctx context.Context) ([]types.Blog, error) {
	const query = `
		SELECT ` + blogColumns + `
		FROM blogs
		ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *BlogRepository) ListPublished(ctx context.Context) ([]types.Blog, error) {
	const query = `
		SELECT ` + blogColumns + `
		FROM blogs
		WHERE is_published
		ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *BlogRepository) ListRecent(ctx context.Context, limit int) ([]types.Blog, error) {
	const query = `
		SELECT ` + blogColumns + `
		FROM blogs
		ORDER BY created_at DESC
		LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *BlogRepository) Get(ctx context.Context, id string) (types.Blog, error) {
	const query = `
		SELECT ` + blogColumns + `
		FROM blogs
		WHERE id = $1`
	blog, err := scanBlog(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Blog{}, ErrNotFound
		}
		return types.Blog{}, err
	}
	return blog, nil
}

// TogglePublish flips the publish flag and returns the updated blog.
func (r *BlogRepository) TogglePublish(ctx context.Context, id string) (types.Blog, error) {
	const query = `
		UPDATE blogs
		SET is_published = NOT is_published
		WHERE id = $1
		RETURNING ` + blogColumns
	blog, err := scanBlog(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Blog{}, ErrNotFound
		}
		return types.Blog{}, err
	}
	return blog, nil
}

// Delete removes the blog. Its comments go with it through the schema's
// ON DELETE CASCADE.
func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM blogs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Categories returns the distinct non-empty category values across all blogs.
func (r *BlogRepository) Categories(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT category FROM blogs WHERE category <> ''`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *BlogRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM blogs`
	var total int
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *BlogRepository) CountDrafts(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM blogs WHERE NOT is_published`
	var total int
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *BlogRepository) list(ctx context.Context, query string, args ...any) ([]types.Blog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := make([]types.Blog, 0)
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}
	return blogs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlog(row rowScanner) (types.Blog, error) {
	var blog types.Blog
	err := row.Scan(
		&blog.ID,
		&blog.Title,
		&blog.SubTitle,
		&blog.Description,
		&blog.Category,
		&blog.Image,
		&blog.IsPublished,
		&blog.CreatedAt,
	)
	return blog, err
}
