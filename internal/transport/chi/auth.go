package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const (
	bearerPrefix  = "Bearer "
	apiKeyParam   = "api_key"
	tileRoutePath = "/api/v1/tiles/"
)

// exemptPaths bypass authentication and rate limiting.
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// keyring holds the accepted API keys.
type keyring [][]byte

func newKeyring(apiKeys []string) keyring {
	keys := make(keyring, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	return keys
}

func (k keyring) valid(token string) bool {
	t := []byte(token)
	for _, key := range k {
		if subtle.ConstantTimeCompare(key, t) == 1 {
			return true
		}
	}
	return false
}

// credential extracts the presented key. Tile requests may carry it as the
// api_key query parameter because map widgets fetch tiles by URL template.
func credential(r *http.Request) (token, problem string) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if !strings.HasPrefix(auth, bearerPrefix) {
			return "", "authorization header must use Bearer scheme"
		}
		return auth[len(bearerPrefix):], ""
	}
	if strings.HasPrefix(r.URL.Path, tileRoutePath) {
		if key := r.URL.Query().Get(apiKeyParam); key != "" {
			return key, ""
		}
	}
	return "", "missing authorization header"
}

// BearerAuthMiddleware validates API keys on every non-exempt request.
// If apiKeys is empty, authentication is disabled.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := newKeyring(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, problem := credential(r)
			if problem != "" {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, problem)
				return
			}
			if !keys.valid(token) {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
