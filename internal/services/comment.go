package services

import (
	"context"
	"log"
	"strings"

	"github.com/quickblog-app/apiserver/internal/events"
	"github.com/quickblog-app/apiserver/internal/store"
	"github.com/quickblog-app/apiserver/types"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
	ListForBlog(ctx context.Context, blogID string, includeUnapproved bool) ([]types.Comment, error)
	ListAll(ctx context.Context) ([]types.Comment, error)
	Approve(ctx context.Context, id string) (types.Comment, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// BlogGetter is the slice of the blog repository the comment workflow needs
// to validate parent existence.
type BlogGetter interface {
	Get(ctx context.Context, id string) (types.Blog, error)
}

// CommentService encapsulates the comment moderation workflow. Comments are
// created unapproved by anonymous readers and become publicly visible only
// once approved.
type CommentService struct {
	repo      CommentRepository
	blogs     BlogGetter
	publisher *events.Publisher
}

func NewCommentService(repo CommentRepository, blogs BlogGetter, publisher *events.Publisher) *CommentService {
	return &CommentService{repo: repo, blogs: blogs, publisher: publisher}
}

// Add creates an unapproved comment on an existing blog. The parent blog
// must exist; a comment can never be born orphaned.
func (s *CommentService) Add(ctx context.Context, blogID, name, content string) (types.Comment, error) {
	name = strings.TrimSpace(name)
	content = strings.TrimSpace(content)
	if name == "" || content == "" {
		return types.Comment{}, ErrMissingFields
	}

	if !validID(blogID) {
		return types.Comment{}, store.ErrNotFound
	}
	if _, err := s.blogs.Get(ctx, blogID); err != nil {
		return types.Comment{}, err
	}

	comment, err := s.repo.Create(ctx, types.Comment{
		Blog:    blogID,
		Name:    name,
		Content: content,
	})
	if err != nil {
		return types.Comment{}, err
	}

	// Best effort: moderation keeps working without a broker.
	if err := s.publisher.CommentSubmitted(ctx, events.CommentSubmitted{
		CommentID:   comment.ID,
		BlogID:      comment.Blog,
		Name:        comment.Name,
		SubmittedAt: comment.CreatedAt,
	}); err != nil {
		log.Printf("publish comment.submitted: %v", err)
	}

	return comment, nil
}

// ListForBlog returns a blog's comments, newest first. Admin callers see
// unapproved comments as well.
func (s *CommentService) ListForBlog(ctx context.Context, blogID string, isAdmin bool) ([]types.Comment, error) {
	if !validID(blogID) {
		return []types.Comment{}, nil
	}
	return s.repo.ListForBlog(ctx, blogID, isAdmin)
}

// ListAllForModeration returns every comment with its parent blog's title,
// newest first.
func (s *CommentService) ListAllForModeration(ctx context.Context) ([]types.Comment, error) {
	return s.repo.ListAll(ctx)
}

// Approve marks the comment approved. Approving an already approved
// comment is a no-op success.
func (s *CommentService) Approve(ctx context.Context, id string) (types.Comment, error) {
	if !validID(id) {
		return types.Comment{}, store.ErrNotFound
	}
	return s.repo.Approve(ctx, id)
}

func (s *CommentService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return store.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
