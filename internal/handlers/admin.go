package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/quickblog-app/apiserver/config"
	"github.com/quickblog-app/apiserver/internal/services"
	"github.com/quickblog-app/apiserver/internal/store"
	"github.com/quickblog-app/apiserver/types"
)

// AdminHandler provides the admin console endpoints: login for the
// configured admin identity, dashboard aggregates, and the blog/comment
// management views.
type AdminHandler struct {
	admin          config.AdminConfig
	secret         []byte
	blogService    *services.BlogService
	commentService *services.CommentService
	dashboard      *services.DashboardService
}

// NewAdminHandler constructs an AdminHandler with the provided dependencies.
func NewAdminHandler(
	admin config.AdminConfig,
	jwtSecret string,
	blogService *services.BlogService,
	commentService *services.CommentService,
	dashboard *services.DashboardService,
) *AdminHandler {
	return &AdminHandler{
		admin:          admin,
		secret:         []byte(jwtSecret),
		blogService:    blogService,
		commentService: commentService,
		dashboard:      dashboard,
	}
}

// AdminRouter registers admin routes on the given router.
func AdminRouter(
	r chi.Router,
	admin config.AdminConfig,
	jwtSecret string,
	blogService *services.BlogService,
	commentService *services.CommentService,
	dashboard *services.DashboardService,
	requireAuth func(http.Handler) http.Handler,
	policy Policy,
) {
	handler := NewAdminHandler(admin, jwtSecret, blogService, commentService, dashboard)

	r.Post("/login", handler.Login)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth, RequirePolicy(policy))
		r.Get("/dashboard", handler.Dashboard)
		r.Get("/blog", handler.ListBlogs)
		r.Get("/comment", handler.ListComments)
		r.Post("/approve-comment", handler.ApproveComment)
		r.Post("/delete-comment", handler.DeleteComment)
	})
}

// Login checks the submitted credentials against the configured admin
// identity. There is no stored record for this actor; an exact match yields
// a short-lived admin token.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if h.admin.Email == "" || h.admin.Password == "" || !credentialsMatch(req, h.admin) {
		writeFail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := IssueAdminToken(h.admin.Email, h.secret)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	writeJSON(w, http.StatusOK, AdminLoginResponse{
		Success: true,
		Token:   token,
		Message: "Login successful",
	})
}

// Dashboard returns the admin dashboard aggregates.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.Load(r.Context())
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, DashboardResponse{Success: true, DashboardData: data})
}

// ListBlogs returns every blog, newest first, for the management table.
func (h *AdminHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogService.ListAll(r.Context())
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Failed to fetch blogs")
		return
	}
	writeJSON(w, http.StatusOK, BlogListResponse{Success: true, Blogs: blogs})
}

// ListComments returns every comment with its parent blog's title.
func (h *AdminHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.ListAllForModeration(r.Context())
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Failed to fetch comments")
		return
	}
	writeJSON(w, http.StatusOK, CommentListResponse{Success: true, Comments: comments})
}

// ApproveComment approves a comment identified in the request body.
func (h *AdminHandler) ApproveComment(w http.ResponseWriter, r *http.Request) {
	id, ok := decodeID(w, r)
	if !ok {
		return
	}
	if _, err := h.commentService.Approve(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFail(w, http.StatusNotFound, "Comment not found")
			return
		}
		writeFail(w, http.StatusInternalServerError, "Failed to approve comment")
		return
	}
	writeMessage(w, http.StatusOK, true, "Comment approved successfully")
}

// DeleteComment removes a comment identified in the request body.
func (h *AdminHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := decodeID(w, r)
	if !ok {
		return
	}
	if err := h.commentService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFail(w, http.StatusNotFound, "Comment not found")
			return
		}
		writeFail(w, http.StatusInternalServerError, "Failed to delete comment")
		return
	}
	writeMessage(w, http.StatusOK, true, "Comment deleted successfully")
}

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

type DashboardResponse struct {
	Success       bool            `json:"success"`
	DashboardData types.Dashboard `json:"dashboardData"`
}

func credentialsMatch(req AdminLoginRequest, admin config.AdminConfig) bool {
	emailOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.Email)), []byte(admin.Email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(admin.Password)) == 1
	return emailOK && passwordOK
}

func decodeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req IDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		writeFail(w, http.StatusBadRequest, "Comment ID is required")
		return "", false
	}
	return req.ID, true
}
