// Package auth validates the bearer token the browser obtained from the
// identity provider and threads identity plus raw credential through the
// request context. Token renewal is the client's concern; an expired token
// simply yields 401 and the client signs in again.
package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/ctxutil"
)

type Claims struct {
	Email             string   `json:"email"`
	PreferredUsername string   `json:"preferred_username"`
	Name              string   `json:"name"`
	Roles             []string `json:"roles"`
	jwt.RegisteredClaims
}

func (c *Claims) email() string {
	if c.Email != "" {
		return c.Email
	}
	return c.PreferredUsername
}

// Middleware returns a chi middleware enforcing a valid bearer token signed
// with secret.
func Middleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !tok.Valid || claims.email() == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			id := ctxutil.Identity{
				Email: strings.ToLower(claims.email()),
				Name:  claims.Name,
				Roles: claims.Roles,
			}
			ctx := ctxutil.WithIdentity(r.Context(), id)
			ctx = ctxutil.WithToken(ctx, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
