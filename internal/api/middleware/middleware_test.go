package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/srt-studio/backend/internal/auth"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	h := rl.Handler(okHandler)

	hit := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := hit("10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("hit %d: got %d", i, rec.Code)
		}
	}
	now = now.Add(20 * time.Second)
	rec := hit("10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third hit: got %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "40" {
		t.Errorf("Retry-After = %q, want 40", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}

	// Other clients have their own window
	if rec := hit("10.0.0.2"); rec.Code != http.StatusOK {
		t.Fatalf("other client: got %d", rec.Code)
	}

	st := rl.Status()
	if len(st.Entries) != 2 || st.Entries[0].IP != "10.0.0.1" || !st.Entries[0].Blocked || st.Entries[1].Blocked {
		t.Fatalf("status = %+v", st)
	}

	now = now.Add(time.Minute)
	if rec := hit("10.0.0.1"); rec.Code != http.StatusOK {
		t.Fatalf("after window: got %d", rec.Code)
	}

	rl.Clear()
	if st := rl.Status(); len(st.Entries) != 0 {
		t.Fatalf("after clear: %+v", st)
	}
}

func TestMaxBodySize(t *testing.T) {
	h := MaxBodySize(8)(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/duplicate", strings.NewReader("0123456789"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("got %d, want 413", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/duplicate", strings.NewReader("{}"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("small body: got %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	token, err := jwtService.GenerateToken(1, "editor", "editor")
	if err != nil {
		t.Fatal(err)
	}

	var seen *auth.Claims
	h := AuthMiddleware(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClaims(r)
	}))

	tests := []struct {
		name   string
		method string
		target string
		header string
		want   int
	}{
		{"bearer", http.MethodPost, "/api/translate", "Bearer " + token, http.StatusOK},
		{"query token on GET", http.MethodGet, "/api/jobs/x/download?token=" + token, "", http.StatusOK},
		{"query token on POST", http.MethodPost, "/api/translate?token=" + token, "", http.StatusUnauthorized},
		{"missing", http.MethodGet, "/api/jobs", "", http.StatusUnauthorized},
		{"wrong scheme", http.MethodGet, "/api/jobs", "Basic " + token, http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/jobs", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("got %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && (seen == nil || seen.Username != "editor") {
				t.Fatalf("claims = %+v", seen)
			}
			if tt.want != http.StatusOK {
				var body map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] == "" {
					t.Fatalf("error body: %v %v", body, err)
				}
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	h := AuthMiddleware(jwtService)(RequireRole("admin")(okHandler))

	for role, want := range map[string]int{"admin": http.StatusOK, "editor": http.StatusForbidden} {
		token, err := jwtService.GenerateToken(1, "u", role)
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("%s: got %d, want %d", role, rec.Code, want)
		}
	}
}
