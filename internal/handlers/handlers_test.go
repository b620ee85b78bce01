package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quickblog-app/apiserver/config"
	"github.com/quickblog-app/apiserver/internal/services"
	"github.com/quickblog-app/apiserver/internal/store"
	"github.com/quickblog-app/apiserver/types"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

// fakeData backs the in-memory repositories, including the comment cascade
// the schema enforces on blog deletion.
type fakeData struct {
	blogs    []types.Blog
	comments []types.Comment
	users    []types.User
	seq      int
}

func (d *fakeData) nextCreatedAt() time.Time {
	d.seq++
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(d.seq) * time.Second)
}

type fakeBlogRepo struct{ d *fakeData }

func (r *fakeBlogRepo) Create(_ context.Context, blog types.Blog) (types.Blog, error) {
	blog.ID = uuid.NewString()
	blog.CreatedAt = r.d.nextCreatedAt()
	r.d.blogs = append(r.d.blogs, blog)
	return blog, nil
}

func (r *fakeBlogRepo) ListAll(context.Context) ([]types.Blog, error) {
	all := make([]types.Blog, 0, len(r.d.blogs))
	for i := len(r.d.blogs) - 1; i >= 0; i-- {
		all = append(all, r.d.blogs[i])
	}
	return all, nil
}

func (r *fakeBlogRepo) ListPublished(ctx context.Context) ([]types.Blog, error) {
	all, _ := r.ListAll(ctx)
	published := make([]types.Blog, 0)
	for _, blog := range all {
		if blog.IsPublished {
			published = append(published, blog)
		}
	}
	return published, nil
}

func (r *fakeBlogRepo) ListRecent(ctx context.Context, limit int) ([]types.Blog, error) {
	all, _ := r.ListAll(ctx)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeBlogRepo) Get(_ context.Context, id string) (types.Blog, error) {
	for _, blog := range r.d.blogs {
		if blog.ID == id {
			return blog, nil
		}
	}
	return types.Blog{}, store.ErrNotFound
}

func (r *fakeBlogRepo) TogglePublish(_ context.Context, id string) (types.Blog, error) {
	for i, blog := range r.d.blogs {
		if blog.ID == id {
			r.d.blogs[i].IsPublished = !blog.IsPublished
			return r.d.blogs[i], nil
		}
	}
	return types.Blog{}, store.ErrNotFound
}

func (r *fakeBlogRepo) Delete(_ context.Context, id string) error {
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

func (r *fakeBlogRepo) Categories(context.Context) ([]string, error) {
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

func (r *fakeBlogRepo) Count(context.Context) (int, error) { return len(r.d.blogs), nil }

func (r *fakeBlogRepo) CountDrafts(context.Context) (int, error) {
	drafts := 0
	for _, blog := range r.d.blogs {
		if !blog.IsPublished {
			drafts++
		}
	}
	return drafts, nil
}

type fakeCommentRepo struct{ d *fakeData }

func (r *fakeCommentRepo) Create(_ context.Context, comment types.Comment) (types.Comment, error) {
	comment.ID = uuid.NewString()
	comment.IsApproved = false
	comment.CreatedAt = r.d.nextCreatedAt()
	r.d.comments = append(r.d.comments, comment)
	return comment, nil
}

func (r *fakeCommentRepo) ListForBlog(_ context.Context, blogID string, includeUnapproved bool) ([]types.Comment, error) {
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

func (r *fakeCommentRepo) ListAll(context.Context) ([]types.Comment, error) {
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

func (r *fakeCommentRepo) Approve(_ context.Context, id string) (types.Comment, error) {
	for i, comment := range r.d.comments {
		if comment.ID == id {
			r.d.comments[i].IsApproved = true
			return r.d.comments[i], nil
		}
	}
	return types.Comment{}, store.ErrNotFound
}

func (r *fakeCommentRepo) Delete(_ context.Context, id string) error {
	for i, comment := range r.d.comments {
		if comment.ID == id {
			r.d.comments = append(r.d.comments[:i], r.d.comments[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *fakeCommentRepo) Count(context.Context) (int, error) { return len(r.d.comments), nil }

type fakeUserRepo struct{ d *fakeData }

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (types.User, error) {
	for _, user := range r.d.users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, user := range r.d.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.d.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	user.ID = uuid.NewString()
	now := r.d.nextCreatedAt()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.d.users = append(r.d.users, user)
	return user, nil
}

type fakeUploader struct{}

func (fakeUploader) Put(context.Context, string, io.Reader, int64, string) error { return nil }

func (fakeUploader) URL(key string) string { return "https://assets.test/" + key }

type stubGenerator struct {
	content string
	err     error
	prompt  string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.content, nil
}

// testEnv wires real services over in-memory repositories behind the same
// route layout the server mounts.
type testEnv struct {
	router    chi.Router
	data      *fakeData
	admin     config.AdminConfig
	generator *stubGenerator
}

func newTestEnv(t *testing.T, policy Policy) *testEnv {
	t.Helper()

	data := &fakeData{}
	blogRepo := &fakeBlogRepo{d: data}
	commentRepo := &fakeCommentRepo{d: data}

	blogService := services.NewBlogService(blogRepo, fakeUploader{})
	commentService := services.NewCommentService(commentRepo, blogRepo, nil)
	userService := services.NewUserService(&fakeUserRepo{d: data})
	dashboard := services.NewDashboardService(blogRepo, commentRepo)

	admin := config.AdminConfig{Email: "admin@example.com", Password: "admin-pass"}
	generator := &stubGenerator{content: "<h1>Draft</h1><p>Generated body.</p>"}

	requireAuth := RequireAuth(testSecret)
	optionalAuth := OptionalAuth(testSecret)

	r := chi.NewRouter()
	r.Route("/api/admin", func(r chi.Router) {
		AdminRouter(r, admin, testSecret, blogService, commentService, dashboard, requireAuth, policy)
	})
	r.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, userService, testSecret)
	})
	r.Route("/api/blog", func(r chi.Router) {
		BlogRouter(r, blogService, commentService, generator, requireAuth, optionalAuth, policy)
	})

	return &testEnv{router: r, data: data, admin: admin, generator: generator}
}

func (e *testEnv) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// addBlog submits the multipart add form the admin frontend sends.
func (e *testEnv) addBlog(t *testing.T, token string, draft types.BlogDraft, withImage bool) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	payload, err := json.Marshal(draft)
	require.NoError(t, err)
	require.NoError(t, form.WriteField("blog", string(payload)))

	if withImage {
		part, err := form.CreateFormFile("image", "cover.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/blog/add", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := IssueAdminToken(e.admin.Email, []byte(testSecret))
	require.NoError(t, err)
	return token
}

func (e *testEnv) userToken(t *testing.T) string {
	t.Helper()
	token, err := IssueUserToken(types.User{ID: uuid.NewString(), Role: types.RoleUser}, []byte(testSecret))
	require.NoError(t, err)
	return token
}

func newRequest(t *testing.T, method, target string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, target, nil)
}

func serve(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

var errGeneratorDown = errors.New("generation service unavailable")

func testDraft() types.BlogDraft {
	return types.BlogDraft{
		Title:       "Getting Started with Go",
		SubTitle:    "A practical tour",
		Description: "<p>Channels and goroutines.</p>",
		Category:    "Tech",
	}
}
