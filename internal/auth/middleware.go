package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shopcore/eshop/internal/httpx"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the authenticated caller handed to the handlers. The core
// trusts it; token validation happens only here.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// Gate validates bearer tokens on every route outside the allow-list.
// Unauthenticated access is permitted only for read-only catalog routes,
// registration, login and the operational endpoints. Tokens without the
// admin flag are treated as revoked on protected routes.
type Gate struct {
	secret  []byte
	prefix  string
	respond *httpx.Responder
}

func NewGate(secret, prefix string, respond *httpx.Responder) *Gate {
	return &Gate{secret: []byte(secret), prefix: prefix, respond: respond}
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := g.authenticate(r)
		if err != nil {
			g.respond.Fail(w, http.StatusUnauthorized, "Not authorized")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) exempt(r *http.Request) bool {
	path := r.URL.Path

	if path == "/healthz" || path == "/metrics" {
		return true
	}

	if r.Method == http.MethodGet || r.Method == http.MethodOptions {
		if strings.HasPrefix(path, g.prefix+"/products") || strings.HasPrefix(path, g.prefix+"/categories") {
			return true
		}
	}

	if r.Method == http.MethodPost {
		if path == g.prefix+"/users/register" || path == g.prefix+"/users/login" {
			return true
		}
	}

	return false
}

func (g *Gate) authenticate(r *http.Request) (Identity, error) {
	tokenString, err := extractBearerToken(r)
	if err != nil {
		return Identity{}, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid || claims.UserID == "" {
		return Identity{}, errors.New("invalid token")
	}

	if !claims.IsAdmin {
		return Identity{}, errors.New("token revoked")
	}

	return Identity{UserID: claims.UserID, IsAdmin: claims.IsAdmin}, nil
}

func extractBearerToken(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization format")
	}

	return parts[1], nil
}

// IdentityFromContext extracts the authenticated identity set by the gate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}
