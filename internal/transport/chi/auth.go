package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthPolicy selects which bearer tokens unlock which routes.
//
// Search keys open the read API. Admin keys open everything, including
// /admin. With no keys at all authentication is off.
type AuthPolicy struct {
	SearchKeys   []string
	AdminKeys    []string
	PublicSearch bool
}

type scope int

const (
	scopeNone scope = iota
	scopeSearch
	scopeAdmin
)

// openPaths never require a token.
var openPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type keyring struct {
	search [][]byte
	admin  [][]byte
}

func newKeyring(p AuthPolicy) keyring {
	var k keyring
	for _, s := range p.SearchKeys {
		if s != "" {
			k.search = append(k.search, []byte(s))
		}
	}
	for _, s := range p.AdminKeys {
		if s != "" {
			k.admin = append(k.admin, []byte(s))
		}
	}
	return k
}

func (k keyring) empty() bool { return len(k.search) == 0 && len(k.admin) == 0 }

// scopeOf compares against every key so timing does not leak which one matched.
func (k keyring) scopeOf(token string) scope {
	t := []byte(token)
	var admin, search int
	for _, key := range k.admin {
		admin |= subtle.ConstantTimeCompare(t, key)
	}
	for _, key := range k.search {
		search |= subtle.ConstantTimeCompare(t, key)
	}
	switch {
	case admin == 1:
		return scopeAdmin
	case search == 1:
		return scopeSearch
	}
	return scopeNone
}

// required reports the scope a request path needs. Without dedicated admin
// keys any valid key may run maintenance.
func (k keyring) required(path string, p AuthPolicy) scope {
	if _, ok := openPaths[path]; ok {
		return scopeNone
	}
	if path == "/admin" || strings.HasPrefix(path, "/admin/") {
		if len(k.admin) == 0 {
			return scopeSearch
		}
		return scopeAdmin
	}
	if p.PublicSearch {
		return scopeNone
	}
	return scopeSearch
}

// BearerAuthMiddleware validates Bearer tokens against the policy.
func BearerAuthMiddleware(policy AuthPolicy) func(http.Handler) http.Handler {
	keys := newKeyring(policy)

	return func(next http.Handler) http.Handler {
		if keys.empty() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			need := keys.required(r.URL.Path, policy)
			if need == scopeNone {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "missing authorization header")
				return
			}
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok {
				writeError(w, http.StatusUnauthorized,
					ErrorCodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			have := keys.scopeOf(token)
			switch {
			case have == scopeNone:
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
			case have < need:
				writeError(w, http.StatusForbidden, ErrorCodeForbidden, "api key may not run index maintenance")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
