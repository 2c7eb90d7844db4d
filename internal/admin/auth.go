package admin

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/handler"
)

var ErrInvalidToken = errors.New("admin: invalid or missing bearer token")

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}

// RequireToken rejects requests whose bearer token does not equal token.
// An empty token rejects everything.
func RequireToken(token string, errHandler handler.ErrorHandler[handler.Context]) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, err := bearerToken(r)
			if err == nil && (len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1) {
				err = ErrInvalidToken
			}
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				errHandler(handler.NewContext(w, r), errors.Join(handler.ErrUnauthorized, err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
