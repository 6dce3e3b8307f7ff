package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveAuth(policy AuthPolicy, method, path, header string) *httptest.ResponseRecorder {
	handler := BearerAuthMiddleware(policy)(okHandler())
	req := httptest.NewRequest(method, path, http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	for _, policy := range []AuthPolicy{
		{},
		{SearchKeys: []string{"", ""}, AdminKeys: []string{""}},
	} {
		for _, path := range []string{"/search", "/admin/commit"} {
			if rr := serveAuth(policy, "POST", path, ""); rr.Code != http.StatusOK {
				t.Errorf("%+v %s: got %d, want %d", policy, path, rr.Code, http.StatusOK)
			}
		}
	}
}

func TestAuthMiddleware_Policy(t *testing.T) {
	split := AuthPolicy{SearchKeys: []string{"reader", "reader2"}, AdminKeys: []string{"root"}}
	shared := AuthPolicy{SearchKeys: []string{"secret"}}
	public := AuthPolicy{SearchKeys: []string{"reader"}, AdminKeys: []string{"root"}, PublicSearch: true}

	tests := []struct {
		name   string
		policy AuthPolicy
		method string
		path   string
		header string
		want   int
		code   ErrorCode
	}{
		{"missing header", shared, "GET", "/search", "", http.StatusUnauthorized, ErrorCodeUnauthorized},
		{"basic scheme", shared, "GET", "/search", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, ErrorCodeUnauthorized},
		{"invalid token", shared, "GET", "/search", "Bearer wrong-key", http.StatusUnauthorized, ErrorCodeUnauthorized},
		{"valid token", shared, "GET", "/search", "Bearer secret", http.StatusOK, ""},
		{"shared key runs admin", shared, "POST", "/admin/commit", "Bearer secret", http.StatusOK, ""},
		{"second search key", split, "GET", "/search", "Bearer reader2", http.StatusOK, ""},
		{"admin key searches", split, "GET", "/search", "Bearer root", http.StatusOK, ""},
		{"search key denied admin", split, "POST", "/admin/optimize", "Bearer reader", http.StatusForbidden, ErrorCodeForbidden},
		{"admin key runs admin", split, "DELETE", "/admin/cache", "Bearer root", http.StatusOK, ""},
		{"health open", split, "GET", "/health", "", http.StatusOK, ""},
		{"metrics open", split, "GET", "/metrics", "", http.StatusOK, ""},
		{"public search", public, "GET", "/search", "", http.StatusOK, ""},
		{"public search keeps admin closed", public, "POST", "/admin/commit", "", http.StatusUnauthorized, ErrorCodeUnauthorized},
		{"admin prefix only", split, "GET", "/administrator", "", http.StatusUnauthorized, ErrorCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveAuth(tt.policy, tt.method, tt.path, tt.header)
			if rr.Code != tt.want {
				t.Fatalf("got %d, want %d", rr.Code, tt.want)
			}
			if tt.code == "" {
				return
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != tt.code {
				t.Errorf("error code: got %s, want %s", errResp.Code, tt.code)
			}
		})
	}
}

func TestKeyring_ScopeOf(t *testing.T) {
	k := newKeyring(AuthPolicy{SearchKeys: []string{"a", "shared"}, AdminKeys: []string{"shared", "z"}})

	cases := map[string]scope{"a": scopeSearch, "z": scopeAdmin, "shared": scopeAdmin, "": scopeNone, "zz": scopeNone}
	for token, want := range cases {
		if got := k.scopeOf(token); got != want {
			t.Errorf("scopeOf(%q) = %d, want %d", token, got, want)
		}
	}
}
