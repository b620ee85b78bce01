package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/quickblog-app/apiserver/internal/search"
	"github.com/quickblog-app/apiserver/internal/services"
	"github.com/quickblog-app/apiserver/internal/store"
	"github.com/quickblog-app/apiserver/types"
)

const (
	maxMultipartMemory = 32 << 20
	maxImageBytes      = 16 << 20
	formFieldBlog      = "blog"
	formFieldImage     = "image"

	generatePromptSuffix = " Generate a Blog Content for me in the simple language and easy to understand"
)

// ContentGenerator drafts article markup from a prompt. *genai.Client
// satisfies it.
type ContentGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BlogHandler provides HTTP handlers for blogs and their comments.
type BlogHandler struct {
	blogService    *services.BlogService
	commentService *services.CommentService
	generator      ContentGenerator
}

// NewBlogHandler constructs a handler with the provided services.
func NewBlogHandler(blogService *services.BlogService, commentService *services.CommentService, generator ContentGenerator) *BlogHandler {
	return &BlogHandler{
		blogService:    blogService,
		commentService: commentService,
		generator:      generator,
	}
}

// BlogRouter registers blog routes on the given router.
func BlogRouter(
	r chi.Router,
	blogService *services.BlogService,
	commentService *services.CommentService,
	generator ContentGenerator,
	requireAuth func(http.Handler) http.Handler,
	optionalAuth func(http.Handler) http.Handler,
	policy Policy,
) {
	handler := NewBlogHandler(blogService, commentService, generator)
	authorized := func(r chi.Router) chi.Router {
		return r.With(requireAuth, RequirePolicy(policy))
	}

	authorized(r).Get("/all", handler.ListAll)
	r.Get("/published", handler.ListPublished)
	r.Get("/categories", handler.Categories)
	authorized(r).Post("/add", handler.Create)
	authorized(r).Post("/delete", handler.Delete)
	authorized(r).Post("/toggle-publish", handler.TogglePublish)
	authorized(r).Post("/generate", handler.Generate)

	r.Post("/add-comment", handler.AddComment)
	r.With(optionalAuth).Get("/comments/{blogID}", handler.ListComments)
	authorized(r).Patch("/comments/{commentID}/approve", handler.ApproveComment)
	authorized(r).Delete("/comments/{commentID}", handler.DeleteComment)
	authorized(r).Get("/admin/comments", handler.ListAllComments)

	r.Get("/{blogID}", handler.Get)
}

// ListAll returns every blog regardless of publish state (admin view).
func (h *BlogHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogService.ListAll(r.Context())
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Failed to fetch blogs")
		return
	}
	writeJSON(w, http.StatusOK, BlogListResponse{Success: true, Blogs: blogs})
}

// ListPublished returns published blogs, optionally narrowed by the
// category and q query parameters.
func (h *BlogHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogService.ListPublished(r.Context())
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Failed to fetch published blogs")
		return
	}

	category := r.URL.Query().Get("category")
	query := r.URL.Query().Get("q")
	blogs = search.Filter(blogs, category, query)

	writeJSON(w, http.StatusOK, BlogListResponse{Success: true, Blogs: blogs})
}

// Categories returns the distinct categories present across all blogs.
func (h *BlogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.blogService.Categories(r.Context())
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Success: true, Categories: categories})
}

// Get returns a single blog by id.
func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "blogID")
	blog, err := h.blogService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFail(w, http.StatusNotFound, "Blog not found")
			return
		}
		writeFail(w, http.StatusInternalServerError, "Failed to fetch blog")
		return
	}
	writeJSON(w, http.StatusOK, BlogResponse{Success: true, Blog: &blog})
}

// Create parses the multipart payload, uploads the cover image and
// persists the blog.
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	draft, image, err := parseBlogForm(r)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.blogService.Create(r.Context(), draft, image); err != nil {
		var upstream *services.UpstreamError
		switch {
		case errors.Is(err, services.ErrMissingFields):
			writeFail(w, http.StatusBadRequest, "All fields are required")
		case errors.As(err, &upstream):
			writeJSON(w, http.StatusBadGateway, ErrorResponse{Success: false, Error: upstream.Error()})
		default:
			writeFail(w, http.StatusInternalServerError, "Failed to create blog")
		}
		return
	}

	writeMessage(w, http.StatusCreated, true, "Blog added successfully")
}

// Delete removes a blog and cascades to its comments.
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req IDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		writeFail(w, http.StatusBadRequest, "Blog ID is required")
		return
	}

	if err := h.blogService.Delete(r.Context(), req.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFail(w, http.StatusNotFound, "Blog not found")
			return
		}
		writeFail(w, http.StatusInternalServerError, "Failed to delete blog")
		return
	}
	writeMessage(w, http.StatusOK, true, "Blog deleted successfully")
}

// TogglePublish flips a blog's publish state and reports the new value.
func (h *BlogHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	var req IDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		writeFail(w, http.StatusBadRequest, "Blog ID is required")
		return
	}

	blog, err := h.blogService.TogglePublish(r.Context(), req.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidID):
			writeFail(w, http.StatusBadRequest, "Invalid blog ID format")
		case errors.Is(err, store.ErrNotFound):
			writeFail(w, http.StatusNotFound, "Blog not found")
		default:
			writeFail(w, http.StatusInternalServerError, "Failed to update blog status")
		}
		return
	}

	state := "unpublished"
	if blog.IsPublished {
		state = "published"
	}
	writeJSON(w, http.StatusOK, TogglePublishResponse{
		Success:     true,
		Message:     fmt.Sprintf("Blog %s successfully", state),
		IsPublished: blog.IsPublished,
		Blog:        &blog,
	})
}

// Generate drafts article content from a prompt via the content-generation
// collaborator.
func (h *BlogHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeFail(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	if h.generator == nil {
		writeFail(w, http.StatusBadGateway, "Content generation is not configured")
		return
	}

	content, err := h.generator.Generate(r.Context(), req.Prompt+generatePromptSuffix)
	if err != nil {
		writeFail(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{Success: true, Content: content})
}

type IDRequest struct {
	ID string `json:"id"`
}

type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

type BlogListResponse struct {
	Success bool         `json:"success"`
	Blogs   []types.Blog `json:"blogs"`
}

type BlogResponse struct {
	Success bool        `json:"success"`
	Blog    *types.Blog `json:"blog"`
}

type CategoriesResponse struct {
	Success    bool     `json:"success"`
	Categories []string `json:"categories"`
}

type TogglePublishResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	IsPublished bool        `json:"isPublished"`
	Blog        *types.Blog `json:"blog"`
}

type GenerateResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
}

func parseBlogForm(r *http.Request) (types.BlogDraft, services.ImageFile, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return types.BlogDraft{}, services.ImageFile{}, errors.New("invalid multipart form")
	}

	var draft types.BlogDraft
	raw := strings.TrimSpace(r.FormValue(formFieldBlog))
	if raw == "" {
		return types.BlogDraft{}, services.ImageFile{}, errors.New("All fields are required")
	}
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return types.BlogDraft{}, services.ImageFile{}, errors.New("invalid blog payload")
	}

	image, err := parseImageFile(r.MultipartForm)
	if err != nil {
		return types.BlogDraft{}, services.ImageFile{}, err
	}

	return draft, image, nil
}

func parseImageFile(form *multipart.Form) (services.ImageFile, error) {
	if form == nil {
		return services.ImageFile{}, errors.New("missing form data")
	}

	files := form.File[formFieldImage]
	if len(files) == 0 {
		return services.ImageFile{}, errors.New("All fields are required")
	}
	if len(files) > 1 {
		return services.ImageFile{}, errors.New("only one image file is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return services.ImageFile{}, fmt.Errorf("failed to read image file: %w", err)
	}

	data, err := readFileLimited(file, maxImageBytes)
	_ = file.Close()
	if err != nil {
		return services.ImageFile{}, err
	}

	return services.ImageFile{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
