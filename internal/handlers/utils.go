package handlers

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey string

const contextClaimsKey contextKey = "claims"

func claimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(contextClaimsKey).(Claims)
	return claims, ok
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeMessage emits the success envelope every route shares:
// {"success": <bool>, "message": <text>}.
func writeMessage(w http.ResponseWriter, status int, success bool, message string) {
	writeJSON(w, status, MessageResponse{Success: success, Message: message})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeMessage(w, status, false, message)
}

// MessageResponse is the minimal success-envelope payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse carries an upstream error string instead of a message.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
