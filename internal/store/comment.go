package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quickblog-app/apiserver/types"
)

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	comment.ID = uuid.NewString()
	comment.IsApproved = false
	comment.CreatedAt = time.Now()

	const query = `
		INSERT INTO comments (id, blog_id, name, content, is_approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		comment.ID,
		comment.Blog,
		comment.Name,
		comment.Content,
		comment.IsApproved,
		comment.CreatedAt,
	); err != nil {
		return types.Comment{}, err
	}
	return comment, nil
}

// ListForBlog returns the comments on one blog, newest first. Unapproved
// comments are included only when includeUnapproved is set (admin view).
func (r *CommentRepository) ListForBlog(ctx context.Context, blogID string, includeUnapproved bool) ([]types.Comment, error) {
	query := `
		SELECT id, blog_id, name, content, is_approved, created_at
		FROM comments
		WHERE blog_id = $1`
	if !includeUnapproved {
		query += ` AND is_approved`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanComments(rows, false)
}

// ListAll returns every comment with its parent blog's title attached,
// newest first. Used by the moderation view.
func (r *CommentRepository) ListAll(ctx context.Context) ([]types.Comment, error) {
	const query = `
		SELECT c.id, c.blog_id, c.name, c.content, c.is_approved, c.created_at, b.title
		FROM comments c
		JOIN blogs b ON b.id = c.blog_id
		ORDER BY c.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanComments(rows, true)
}

// Approve marks the comment approved and returns it. Approving an already
// approved comment is a no-op success.
func (r *CommentRepository) Approve(ctx context.Context, id string) (types.Comment, error) {
	const query = `
		UPDATE comments
		SET is_approved = TRUE
		WHERE id = $1
		RETURNING id, blog_id, name, content, is_approved, created_at`
	var comment types.Comment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.Blog,
		&comment.Name,
		&comment.Content,
		&comment.IsApproved,
		&comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Comment{}, ErrNotFound
		}
		return types.Comment{}, err
	}
	return comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM comments WHERE id = $1`
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

func (r *CommentRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM comments`
	var total int
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func scanComments(rows *sql.Rows, withBlogTitle bool) ([]types.Comment, error) {
	comments := make([]types.Comment, 0)
	for rows.Next() {
		var comment types.Comment
		dest := []any{
			&comment.ID,
			&comment.Blog,
			&comment.Name,
			&comment.Content,
			&comment.IsApproved,
			&comment.CreatedAt,
		}
		if withBlogTitle {
			dest = append(dest, &comment.BlogTitle)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}
