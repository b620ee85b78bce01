package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/quickblog-app/apiserver/internal/store"
	"github.com/quickblog-app/apiserver/types"
)

// memData is a shared in-memory document set mimicking the postgres store,
// including the comment cascade on blog deletion.
type memData struct {
	blogs    []types.Blog
	comments []types.Comment
	users    []types.User
	seq      int
}

func (d *memData) nextCreatedAt() time.Time {
	d.seq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(d.seq) * time.Second)
}

type memBlogRepo struct{ d *memData }

func (r *memBlogRepo) Create(_ context.Context, blog types.Blog) (types.Blog, error) {
	blog.ID = uuid.NewString()
	blog.CreatedAt = r.d.nextCreatedAt()
	r.d.blogs = append(r.d.blogs, blog)
	return blog, nil
}

func (r *memBlogRepo) ListAll(context.Context) ([]types.Blog, error) {
	return reverseBlogs(r.d.blogs), nil
}

func (r *memBlogRepo) ListPublished(context.Context) ([]types.Blog, error) {
	published := make([]types.Blog, 0)
	for _, blog := range reverseBlogs(r.d.blogs) {
		if blog.IsPublished {
			published = append(published, blog)
		}
	}
	return published, nil
}

func (r *memBlogRepo) ListRecent(_ context.Context, limit int) ([]types.Blog, error) {
	recent := reverseBlogs(r.d.blogs)
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

func (r *memBlogRepo) Get(_ context.Context, id string) (types.Blog, error) {
	for _, blog := range r.d.blogs {
		if blog.ID == id {
			return blog, nil
		}
	}
	return types.Blog{}, store.ErrNotFound
}

func (r *memBlogRepo) TogglePublish(_ context.Context, id string) (types.Blog, error) {
	for i, blog := range r.d.blogs {
		if blog.ID == id {
			r.d.blogs[i].IsPublished = !blog.IsPublished
			return r.d.blogs[i], nil
		}
	}
	return types.Blog{}, store.ErrNotFound
}

func (r *memBlogRepo) Delete(_ context.Context, id string) error {
	for i, blog := range r.d.blogs {
		if blog.ID == id {
			r.d.blogs = append(r.d.blogs[:i], r.d.blogs[i+1:]...)
			kept := r.d.comments[:0]
			for _, comment := range r.d.comments {
				if comment.Blog != id {
					kept = append(kept, comment)
				}
			}
			r.d.comments = kept
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *memBlogRepo) Categories(context.Context) ([]string, error) {
	seen := map[string]bool{}
	categories := make([]string, 0)
	for _, blog := range r.d.blogs {
		if blog.Category != "" && !seen[blog.Category] {
			seen[blog.Category] = true
			categories = append(categories, blog.Category)
		}
	}
	return categories, nil
}

func (r *memBlogRepo) Count(context.Context) (int, error) {
	return len(r.d.blogs), nil
}

func (r *memBlogRepo) CountDrafts(context.Context) (int, error) {
	drafts := 0
	for _, blog := range r.d.blogs {
		if !blog.IsPublished {
			drafts++
		}
	}
	return drafts, nil
}

type memCommentRepo struct{ d *memData }

func (r *memCommentRepo) Create(_ context.Context, comment types.Comment) (types.Comment, error) {
	comment.ID = uuid.NewString()
	comment.IsApproved = false
	comment.CreatedAt = r.d.nextCreatedAt()
	r.d.comments = append(r.d.comments, comment)
	return comment, nil
}

func (r *memCommentRepo) ListForBlog(_ context.Context, blogID string, includeUnapproved bool) ([]types.Comment, error) {
	matched := make([]types.Comment, 0)
	for i := len(r.d.comments) - 1; i >= 0; i-- {
		comment := r.d.comments[i]
		if comment.Blog != blogID {
			continue
		}
		if !includeUnapproved && !comment.IsApproved {
			continue
		}
		matched = append(matched, comment)
	}
	return matched, nil
}

func (r *memCommentRepo) ListAll(context.Context) ([]types.Comment, error) {
	titles := map[string]string{}
	for _, blog := range r.d.blogs {
		titles[blog.ID] = blog.Title
	}
	all := make([]types.Comment, 0, len(r.d.comments))
	for i := len(r.d.comments) - 1; i >= 0; i-- {
		comment := r.d.comments[i]
		comment.BlogTitle = titles[comment.Blog]
		all = append(all, comment)
	}
	return all, nil
}

func (r *memCommentRepo) Approve(_ context.Context, id string) (types.Comment, error) {
	for i, comment := range r.d.comments {
		if comment.ID == id {
			r.d.comments[i].IsApproved = true
			return r.d.comments[i], nil
		}
	}
	return types.Comment{}, store.ErrNotFound
}

func (r *memCommentRepo) Delete(_ context.Context, id string) error {
	for i, comment := range r.d.comments {
		if comment.ID == id {
			r.d.comments = append(r.d.comments[:i], r.d.comments[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *memCommentRepo) Count(context.Context) (int, error) {
	return len(r.d.comments), nil
}

type memUserRepo struct{ d *memData }

func (r *memUserRepo) GetByID(_ context.Context, id string) (types.User, error) {
	for _, user := range r.d.users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, user := range r.d.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.d.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	user.ID = uuid.NewString()
	now := r.d.nextCreatedAt()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.d.users = append(r.d.users, user)
	return user, nil
}

// memUploader records uploads and derives stable URLs.
type memUploader struct {
	keys []string
	fail bool
}

func (u *memUploader) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string) error {
	if u.fail {
		return errors.New("bucket unavailable")
	}
	u.keys = append(u.keys, key)
	return nil
}

func (u *memUploader) URL(key string) string {
	return "https://assets.test/" + key
}

func reverseBlogs(blogs []types.Blog) []types.Blog {
	reversed := make([]types.Blog, 0, len(blogs))
	for i := len(blogs) - 1; i >= 0; i-- {
		reversed = append(reversed, blogs[i])
	}
	return reversed
}
