// Package middleware provides HTTP middleware for the bridge daemon.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperr "github.com/R3E-Network/bridge_layer/internal/errors"
	"github.com/R3E-Network/bridge_layer/pkg/logger"
)

type contextKey string

const callerKey contextKey = "caller"

// Claims carries the caller identity attested by the token issuer. Account
// is the on-bridge account name used as the caller of every operation.
type Claims struct {
	Account string `json:"account"`
	jwt.RegisteredClaims
}

// Auth validates bearer tokens and attaches the caller account to the
// request context. Paths in skip bypass authentication.
type Auth struct {
	secret    []byte
	log       *logger.Logger
	skipPaths map[string]bool
}

// NewAuth creates the authentication middleware with an HMAC secret.
func NewAuth(secret string, log *logger.Logger, skipPaths []string) *Auth {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	if secret == "" {
		log.Warn("no JWT secret configured; trusting X-Caller header")
	}
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return &Auth{secret: []byte(secret), log: log, skipPaths: skip}
}

// Handler returns the middleware handler. With an empty secret the
// middleware runs in development mode and trusts the X-Caller header.
func (a *Auth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		if len(a.secret) == 0 {
			caller := r.Header.Get("X-Caller")
			if caller == "" {
				a.reject(w, r, "missing X-Caller header")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			a.reject(w, r, "missing Authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			a.reject(w, r, "malformed Authorization header")
			return
		}

		claims, err := a.validateToken(parts[1])
		if err != nil {
			a.log.WithError(err).WithField("path", r.URL.Path).Warn("token validation failed")
			a.reject(w, r, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, claims.Account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) validateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Account == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (a *Auth) reject(w http.ResponseWriter, _ *http.Request, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   string(apperr.CodeUnauthorized),
		"message": msg,
	})
}

// Caller extracts the authenticated account from the context.
func Caller(ctx context.Context) string {
	if v, ok := ctx.Value(callerKey).(string); ok {
		return v
	}
	return ""
}

// WithCaller returns a context carrying the caller account. Used by tests
// and internal dispatch.
func WithCaller(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, callerKey, account)
}

// IssueToken mints a token for an account, for local development and tests.
func IssueToken(secret, account string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Account: account})
	return token.SignedString([]byte(secret))
}
