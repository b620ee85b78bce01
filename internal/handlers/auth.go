package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/quickblog-app/apiserver/internal/services"
	"github.com/quickblog-app/apiserver/types"
)

// Token lifetimes: the configured admin identity gets a short session, a
// registered user a long one.
const (
	adminTokenTTL = time.Hour
	userTokenTTL  = 30 * 24 * time.Hour
)

// Claims is the JWT payload issued by both login paths. Admin-kind tokens
// carry the configured email and the admin role; user-kind tokens carry the
// user id as subject plus the stored role.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Policy describes what a route group demands of the calling actor. The
// zero value admits any authenticated actor, which matches the observed
// behavior of the reference deployment; see DESIGN.md before tightening.
type Policy struct {
	Role string
}

// AnyActor admits every valid token. AdminOnly additionally requires the
// admin role claim.
var (
	AnyActor  = Policy{}
	AdminOnly = Policy{Role: types.RoleAdmin}
)

// Allows reports whether the claims satisfy the policy.
func (p Policy) Allows(claims Claims) bool {
	return p.Role == "" || strings.EqualFold(claims.Role, p.Role)
}

// AuthHandler provides the registration endpoint.
type AuthHandler struct {
	userService *services.UserService
	secret      []byte
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		secret:      []byte(jwtSecret),
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, jwtSecret string) {
	handler := NewAuthHandler(userService, jwtSecret)

	r.Post("/register", handler.Register)
}

// Register creates a new user account and returns a JWT.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			writeFail(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, services.ErrPasswordTooShort):
			writeFail(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		case errors.Is(err, services.ErrUsernameTaken):
			writeFail(w, http.StatusBadRequest, "username already exists")
		case errors.Is(err, services.ErrEmailTaken):
			writeFail(w, http.StatusBadRequest, "email already exists")
		default:
			writeFail(w, http.StatusInternalServerError, "Server error during registration")
		}
		return
	}

	token, err := IssueUserToken(user, h.secret)
	if err != nil {
		writeFail(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "User registered successfully",
		Token:   token,
		User:    &user,
	})
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *types.User `json:"user,omitempty"`
}

// IssueUserToken signs a 30-day token for a registered user.
func IssueUserToken(user types.User, secret []byte) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(userTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// IssueAdminToken signs a one-hour token for the configured admin identity.
func IssueAdminToken(email string, secret []byte) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  types.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(adminTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// RequireAuth enforces a valid bearer token and injects its claims into the
// request context.
func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeFail(w, http.StatusUnauthorized, err.Error())
				return
			}

			claims, err := parseClaims(tokenString, secret)
			if err != nil {
				writeFail(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), contextClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth injects claims when a valid bearer token is present and
// passes the request through as anonymous otherwise. Public routes whose
// responses widen for admins (comment listings) use this.
func OptionalAuth(jwtSecret string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err == nil {
				if claims, err := parseClaims(tokenString, secret); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), contextClaimsKey, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePolicy enforces the route policy against the authenticated claims.
// It must run after RequireAuth.
func RequirePolicy(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := claimsFromContext(r.Context())
			if !ok {
				writeFail(w, http.StatusUnauthorized, "No authentication token provided")
				return
			}
			if !policy.Allows(claims) {
				writeFail(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseClaims(tokenString string, secret []byte) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	if !token.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, errors.New("missing subject")
	}
	return claims, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("Authorization header is missing")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("Invalid token format. Use 'Bearer [token]'")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("No authentication token provided")
	}
	return token, nil
}
