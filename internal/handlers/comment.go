package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/quickblog-app/apiserver/internal/services"
	"github.com/quickblog-app/apiserver/internal/store"
	"github.com/quickblog-app/apiserver/types"
)

// AddComment creates an unapproved comment on a blog. No authentication is
// required; the comment only becomes public once approved.
func (h *BlogHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := h.commentService.Add(r.Context(), req.Blog, req.Name, req.Content); err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			writeFail(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, store.ErrNotFound):
			writeFail(w, http.StatusNotFound, "Blog not found")
		default:
			writeFail(w, http.StatusInternalServerError, "Failed to add comment")
		}
		return
	}

	writeMessage(w, http.StatusCreated, true, "Comment added for review")
}

// ListComments returns a blog's comments. Admin-kind callers also see
// comments still awaiting approval.
func (h *BlogHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	blogID := chi.URLParam(r, "blogID")

	isAdmin := false
	if claims, ok := claimsFromContext(r.Context()); ok {
		isAdmin = strings.EqualFold(claims.Role, types.RoleAdmin)
	}

	comments, err := h.commentService.ListForBlog(r.Context(), blogID, isAdmin)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Failed to fetch comments")
		return
	}
	writeJSON(w, http.StatusOK, CommentListResponse{Success: true, Comments: comments})
}

// ListAllComments returns every comment with its parent blog's title, for
// the moderation view.
func (h *BlogHandler) ListAllComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.ListAllForModeration(r.Context())
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "Failed to fetch comments")
		return
	}
	writeJSON(w, http.StatusOK, CommentListResponse{Success: true, Comments: comments})
}

// ApproveComment marks a comment approved. Approving twice is a no-op
// success.
func (h *BlogHandler) ApproveComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "commentID")
	comment, err := h.commentService.Approve(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFail(w, http.StatusNotFound, "Comment not found")
			return
		}
		writeFail(w, http.StatusInternalServerError, "Failed to approve comment")
		return
	}
	writeJSON(w, http.StatusOK, CommentResponse{
		Success: true,
		Message: "Comment approved successfully",
		Comment: &comment,
	})
}

// DeleteComment removes a comment.
func (h *BlogHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "commentID")
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

type AddCommentRequest struct {
	Blog    string `json:"blog"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

type CommentListResponse struct {
	Success  bool            `json:"success"`
	Comments []types.Comment `json:"comments"`
}

type CommentResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Comment *types.Comment `json:"comment"`
}
