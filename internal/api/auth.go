package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "trade-journal/internal/errors"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Issuer is the iss claim of tokens minted by this service.
const Issuer = "trade-journal"

// Authenticator signs and verifies HMAC bearer tokens. The token subject is the user ID.
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

// NewAuthenticator creates an authenticator for secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), now: time.Now}
}

// IssueToken mints a token for userID valid for ttl.
func (a *Authenticator) IssueToken(userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken validates a token and returns its user ID.
func (a *Authenticator) ParseToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", apperrors.ErrInvalidToken
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid "Bearer <token>" header and
// puts the user ID into the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			respondError(w, r, apperrors.ErrUnauthorized)
			return
		}

		userID, err := a.ParseToken(strings.TrimSpace(token))
		if err != nil {
			respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID stores the authenticated user in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user, or "" when there is none.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
