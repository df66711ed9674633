package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated user of a request.
type Principal struct {
	UserID int64
	Login  string
}

func GenerateToken(userID int64, login, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": login,
		"uid": userID,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// AuthMiddleware requires a bearer token, or an access_token query
// parameter for clients such as browsers opening a WebSocket.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := r.URL.Query().Get("access_token")
			if header := r.Header.Get("Authorization"); header != "" {
				tokenStr = strings.TrimPrefix(header, "Bearer ")
				if tokenStr == header {
					writeError(w, http.StatusUnauthorized, "invalid authorization format")
					return
				}
			}
			if tokenStr == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			p, err := ParseToken(tokenStr, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func ParseToken(tokenStr, secret string) (Principal, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Principal{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, jwt.ErrTokenInvalidClaims
	}
	uid, ok := claims["uid"].(float64)
	if !ok {
		return Principal{}, jwt.ErrTokenInvalidClaims
	}
	login, _ := claims["sub"].(string)
	return Principal{UserID: int64(uid), Login: login}, nil
}
