package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"race-weekend-api/internal/identity"
	"race-weekend-api/internal/models"
	"race-weekend-api/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func okLoader(users map[int64]*models.User) UserLoader {
	return func(_ context.Context, id int64) (*models.User, error) {
		return users[id], nil
	}
}

func authRouter(loader UserLoader) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", Auth(testSecret, loader), func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": string(p.Role)})
	})
	return r
}

func doGet(t *testing.T, r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_MissingOrMalformedHeader(t *testing.T) {
	r := authRouter(okLoader(nil))
	for _, header := range []string{"", "Basic abc", "Bearer"} {
		w := doGet(t, r, "/whoami", header)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"error":"unauthorized"`) {
			t.Fatalf("header %q: body = %s", header, w.Body.String())
		}
	}
}

func TestAuth_InvalidAndExpiredTokens(t *testing.T) {
	r := authRouter(okLoader(nil))

	w := doGet(t, r, "/whoami", "Bearer garbage")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", w.Code)
	}

	expired, err := identity.SignToken(testSecret, 1, identity.RoleUser, -time.Minute)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	w = doGet(t, r, "/whoami", "Bearer "+expired)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: status = %d, want 401", w.Code)
	}
}

func TestAuth_UnknownUser(t *testing.T) {
	r := authRouter(okLoader(map[int64]*models.User{}))
	token, err := identity.SignToken(testSecret, 5, identity.RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	w := doGet(t, r, "/whoami", "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuth_UnknownRoleInUserRow(t *testing.T) {
	users := map[int64]*models.User{5: {ID: 5, Email: "x@example.com", Role: "superuser"}}
	r := authRouter(okLoader(users))
	token, err := identity.SignToken(testSecret, 5, identity.RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	w := doGet(t, r, "/whoami", "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuth_ResolvesPrincipal(t *testing.T) {
	users := map[int64]*models.User{5: {ID: 5, Email: "x@example.com", Role: "admin"}}
	r := authRouter(okLoader(users))
	token, err := identity.SignToken(testSecret, 5, identity.RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	w := doGet(t, r, "/whoami", "bearer "+token) // scheme is case-insensitive
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body struct {
		ID   int64  `json:"id"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	// Role comes from the user row, not the token claim.
	if body.ID != 5 || body.Role != "admin" {
		t.Fatalf("principal = %+v", body)
	}
}

// memStore mirrors the Redis counter semantics for middleware tests.
type memStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (s *memStore) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	return s.counts[key], nil
}

func (s *memStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.counts))
	for k := range s.counts {
		out = append(out, k)
	}
	return out
}

func rateRouter(store *memStore, limit int64, principal *identity.Principal) *gin.Engine {
	r := gin.New()
	grp := r.Group("")
	if principal != nil {
		grp.Use(func(c *gin.Context) {
			c.Set(principalKey, *principal)
			c.Next()
		})
	}
	grp.Use(RateLimit(ratelimit.New(store, limit)))
	grp.GET("/t", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRateLimit_HeadersAndDenial(t *testing.T) {
	p := identity.Principal{ID: 5, Role: identity.RoleUser}
	r := rateRouter(&memStore{}, 2, &p)

	for i := 1; i <= 2; i++ {
		w := doGet(t, r, "/t", "")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
		if w.Header().Get("X-RateLimit-Limit") != "2" {
			t.Fatalf("request %d: missing limit header", i)
		}
		if w.Header().Get("X-RateLimit-Remaining") == "" || w.Header().Get("X-RateLimit-Reset") == "" {
			t.Fatalf("request %d: missing quota headers", i)
		}
		if w.Header().Get("Retry-After") != "" {
			t.Fatalf("request %d: Retry-After must only be set on denial", i)
		}
	}

	w := doGet(t, r, "/t", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("request 3: status = %d, want 429", w.Code)
	}
	if w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("request 3: remaining = %q, want 0", w.Header().Get("X-RateLimit-Remaining"))
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("request 3: Retry-After must be set")
	}
	if !strings.Contains(w.Body.String(), `"error":"rate_limited"`) {
		t.Fatalf("request 3: body = %s", w.Body.String())
	}
}

func TestRateLimit_KeyedByPrincipalOrAddress(t *testing.T) {
	store := &memStore{}
	p := identity.Principal{ID: 5, Role: identity.RoleUser}
	doGet(t, rateRouter(store, 10, &p), "/t", "")

	anon := &memStore{}
	doGet(t, rateRouter(anon, 10, nil), "/t", "")

	if keys := store.keys(); len(keys) != 1 || !strings.Contains(keys[0], ":user:5:") {
		t.Fatalf("authenticated key = %v, want user:5 component", keys)
	}
	if keys := anon.keys(); len(keys) != 1 || !strings.Contains(keys[0], ":ip:") {
		t.Fatalf("anonymous key = %v, want ip component", keys)
	}
}

func TestRequestID_HeaderAndContext(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/t", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	w := doGet(t, r, "/t", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header must be set")
	}
}
