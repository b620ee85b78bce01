package handlers

import (
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/quickblog-app/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t, AnyActor)

	t.Run("success returns a token and the user", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
			Username: "ana", Email: "ana@example.com", Password: "hunter22",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decodeBody[AuthResponse](t, rec)
		assert.True(t, body.Success)
		assert.Equal(t, "User registered successfully", body.Message)
		assert.NotEmpty(t, body.Token)
		require.NotNil(t, body.User)
		assert.Equal(t, types.RoleUser, body.User.Role)

		// The hash must never leak through the JSON envelope.
		assert.NotContains(t, rec.Body.String(), "hunter22")
		assert.NotContains(t, rec.Body.String(), "passwordHash")
	})

	t.Run("token carries the user id and role", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
			Username: "ben", Email: "ben@example.com", Password: "hunter22",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody[AuthResponse](t, rec)

		claims := Claims{}
		_, err := jwt.ParseWithClaims(body.Token, &claims, func(*jwt.Token) (any, error) {
			return []byte(testSecret), nil
		})
		require.NoError(t, err)
		assert.Equal(t, body.User.ID, claims.Subject)
		assert.Equal(t, types.RoleUser, claims.Role)
	})

	t.Run("duplicate username", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
			Username: "ana", Email: "other@example.com", Password: "hunter22",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "username already exists", decodeBody[MessageResponse](t, rec).Message)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
			Username: "carol", Email: "ana@example.com", Password: "hunter22",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "email already exists", decodeBody[MessageResponse](t, rec).Message)
	})

	t.Run("short password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
			Username: "dave", Email: "dave@example.com", Password: "12345",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Password must be at least 6 characters long", decodeBody[MessageResponse](t, rec).Message)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
			Username: "dave", Password: "hunter22",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "All fields are required", decodeBody[MessageResponse](t, rec).Message)
	})
}

func TestRequireAuth(t *testing.T) {
	env := newTestEnv(t, AnyActor)

	t.Run("missing header", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/blog/all", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Authorization header is missing", decodeBody[MessageResponse](t, rec).Message)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/api/blog/all")
		req.Header.Set("Authorization", "Token abc")
		rec := serve(env, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid token format. Use 'Bearer [token]'", decodeBody[MessageResponse](t, rec).Message)
	})

	t.Run("empty token", func(t *testing.T) {
		req := newRequest(t, http.MethodGet, "/api/blog/all")
		req.Header.Set("Authorization", "Bearer   ")
		rec := serve(env, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "No authentication token provided", decodeBody[MessageResponse](t, rec).Message)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/blog/all", "not.a.jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid token", decodeBody[MessageResponse](t, rec).Message)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		forged, err := IssueAdminToken("admin@example.com", []byte("other-secret"))
		require.NoError(t, err)
		rec := env.do(t, http.MethodGet, "/api/blog/all", forged, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/blog/all", env.adminToken(t), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestPolicy(t *testing.T) {
	t.Run("any actor admits user tokens", func(t *testing.T) {
		env := newTestEnv(t, AnyActor)
		rec := env.do(t, http.MethodGet, "/api/blog/all", env.userToken(t), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin only rejects user tokens", func(t *testing.T) {
		env := newTestEnv(t, AdminOnly)
		rec := env.do(t, http.MethodGet, "/api/blog/all", env.userToken(t), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Admin access required", decodeBody[MessageResponse](t, rec).Message)
	})

	t.Run("admin only admits admin tokens", func(t *testing.T) {
		env := newTestEnv(t, AdminOnly)
		rec := env.do(t, http.MethodGet, "/api/blog/all", env.adminToken(t), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
