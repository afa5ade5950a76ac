package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
)

// New only lets requests with a known bearer token through to next. Each
// token maps to the name of the principal that holds it.
func New(tokenToPrincipal map[string]string, next http.Handler) *Auth {
	return &Auth{
		Next:             next,
		TokenToPrincipal: tokenToPrincipal,
	}
}

type Auth struct {
	Next             http.Handler
	TokenToPrincipal map[string]string
}

// NewToken returns a random capability token for a UI session.
func NewToken() string {
	return uuid.NewString()
}

// LoadFromFile reads a JSON map of tokens to principal names.
func LoadFromFile(name string) (tokenToPrincipal map[string]string, err error) {
	f, err := os.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m := make(map[string]string)
	if err = json.NewDecoder(f).Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

type principalContextKey int

const principalKey principalContextKey = 0

func GetPrincipal(r *http.Request) (principal string, ok bool) {
	principal, ok = r.Context().Value(principalKey).(string)
	return
}

func (a *Auth) lookup(token string) (principal string, ok bool) {
	if token == "" {
		return "", false
	}
	for t, p := range a.TokenToPrincipal {
		if subtle.ConstantTimeCompare([]byte(t), []byte(token)) == 1 {
			principal, ok = p, true
		}
	}
	return principal, ok
}

func (a *Auth) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.lookup(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	r = r.WithContext(context.WithValue(r.Context(), principalKey, principal))
	a.Next.ServeHTTP(w, r)
}
