package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/quickblog-app/apiserver/internal/store"
	"github.com/quickblog-app/apiserver/types"
)

// BlogRepository defines persistence operations for blogs.
type BlogRepository interface {
	Create(ctx context.Context, blog types.Blog) (types.Blog, error)
	ListAll(ctx context.Context) ([]types.Blog, error)
	ListPublished(ctx context.Context) ([]types.Blog, error)
	ListRecent(ctx context.Context, limit int) ([]types.Blog, error)
	Get(ctx context.Context, id string) (types.Blog, error)
	TogglePublish(ctx context.Context, id string) (types.Blog, error)
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	CountDrafts(ctx context.Context) (int, error)
}

// ImageUploader stores cover images and derives their durable URLs.
// *storage.Storage satisfies it.
type ImageUploader interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(key string) string
}

// ImageFile is an uploaded cover image payload.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BlogService encapsulates the blog lifecycle: creation with image upload,
// publish-state toggling, deletion and the derived category index.
type BlogService struct {
	repo    BlogRepository
	storage ImageUploader
}

func NewBlogService(repo BlogRepository, storage ImageUploader) *BlogService {
	return &BlogService{repo: repo, storage: storage}
}

// Create validates the draft, uploads the cover image and persists the
// blog. Nothing is persisted when validation or the upload fails.
func (s *BlogService) Create(ctx context.Context, draft types.BlogDraft, image ImageFile) (types.Blog, error) {
	draft.Normalize()
	if !draft.Complete() || len(image.Data) == 0 {
		return types.Blog{}, ErrMissingFields
	}

	key := imageKey(image.Filename)
	reader := bytes.NewReader(image.Data)
	if err := s.storage.Put(ctx, key, reader, int64(len(image.Data)), image.ContentType); err != nil {
		return types.Blog{}, &UpstreamError{Err: err}
	}

	return s.repo.Create(ctx, types.Blog{
		Title:       draft.Title,
		SubTitle:    draft.SubTitle,
		Description: draft.Description,
		Category:    draft.Category,
		Image:       s.storage.URL(key),
		IsPublished: draft.IsPublished,
	})
}

// ListAll returns every blog regardless of publish state (admin view).
func (s *BlogService) ListAll(ctx context.Context) ([]types.Blog, error) {
	return s.repo.ListAll(ctx)
}

// ListPublished returns published blogs only, newest first.
func (s *BlogService) ListPublished(ctx context.Context) ([]types.Blog, error) {
	return s.repo.ListPublished(ctx)
}

func (s *BlogService) Get(ctx context.Context, id string) (types.Blog, error) {
	if !validID(id) {
		return types.Blog{}, store.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// TogglePublish flips the publish flag. A malformed id is reported as
// ErrInvalidID, distinct from a well-formed id with no matching blog.
func (s *BlogService) TogglePublish(ctx context.Context, id string) (types.Blog, error) {
	if !validID(id) {
		return types.Blog{}, ErrInvalidID
	}
	return s.repo.TogglePublish(ctx, id)
}

// Delete removes the blog and, through the schema cascade, every comment
// referencing it.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return store.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// Categories returns the distinct non-empty categories across all blogs.
// The index is derived at query time; there is nothing to invalidate.
func (s *BlogService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func validID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

func imageKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("blogs/%s%s", uuid.NewString(), ext)
}
