package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"attendance.service/internal/core"
	"attendance.service/pkg/logger"
	"attendance.service/pkg/telemetry"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type identityKey struct{}

// Identity is the authenticated caller taken from the bearer token.
type Identity struct {
	UserID string
	Email  string
}

// Claims are the token claims the service relies on: sub is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// AdminChecker decides whether a user may use the administrative routes.
type AdminChecker interface {
	RequireAdmin(ctx context.Context, userID string) error
}

type Auth struct {
	secret []byte
	admins AdminChecker
}

func NewAuth(secret string, admins AdminChecker) *Auth {
	return &Auth{secret: []byte(secret), admins: admins}
}

// WithIdentity stores the caller in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = telemetry.WithUserID(ctx, id.UserID)
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller stored by Authenticate.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

func (a *Auth) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Authenticate requires a valid HS256 bearer token and puts the caller into
// the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := a.parse(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Ctx(r.Context()).Debug().Err(err).Msg("Rejected token")
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("app.userId", claims.Subject))
		ctx := WithIdentity(r.Context(), Identity{UserID: claims.Subject, Email: claims.Email})
		next.ServeHTTP(w, r.WithContext(logger.EnrichContextWithLogger(ctx)))
	})
}

// RequireAdmin lets only administrators through. It must run after Authenticate.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		if err := a.admins.RequireAdmin(r.Context(), id.UserID); err != nil {
			if errors.Is(err, core.ErrNotAdmin) {
				writeError(w, http.StatusForbidden, err.Error())
				return
			}
			log.Ctx(r.Context()).Error().Err(err).Msg("Admin check failed")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"message": msg})
}
