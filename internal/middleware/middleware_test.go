package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	"aesthetica/config"
	"aesthetica/internal/auth"
	"aesthetica/internal/models"
	"aesthetica/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthAndAdminRequired(t *testing.T) {
	cfg := &config.JWTConfig{AccessSecret: "s", AccessExpiry: time.Minute, Issuer: "aesthetica"}
	r := gin.New()
	r.GET("/admin", AuthRequired(cfg), AdminRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})

	admin, _ := auth.GenerateAccessToken(cfg, 1, "a@clinic.test", "ADMIN")
	staff, _ := auth.GenerateAccessToken(cfg, 2, "s@clinic.test", "STAFF")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"not admin", "Bearer " + staff, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	l := NewInMemoryRateLimiter(2, time.Minute)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("ip") || !l.Allow("ip") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("ip") {
		t.Fatal("third request should be limited")
	}
	if !l.Allow("other") {
		t.Fatal("keys are independent")
	}
	now = now.Add(61 * time.Second)
	if !l.Allow("ip") {
		t.Fatal("window should have slid")
	}
	now = now.Add(2 * time.Minute)
	l.sweep()
	if len(l.requests) != 0 {
		t.Fatalf("sweep left %d keys", len(l.requests))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(NewInMemoryRateLimiter(1, time.Minute)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != want {
			t.Fatalf("request %d: status = %d, want %d", i, w.Code, want)
		}
	}
}

func TestRequestLoggerAndMetrics(t *testing.T) {
	m := metrics.NewCollector("test")
	r := gin.New()
	r.Use(RequestLogger(), Metrics(m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items/7", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "req-1" {
		t.Fatalf("request id = %q", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/items/:id", "200")); got != 1 {
		t.Fatalf("requests_total = %v", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Fatalf("unmatched = %v", got)
	}
}

type memAudit struct {
	entries []*models.AuditLog
}

func (m *memAudit) Create(_ context.Context, l *models.AuditLog) error {
	m.entries = append(m.entries, l)
	return nil
}

func TestAuditRecordsSuccessfulWrites(t *testing.T) {
	store := &memAudit{}
	r := gin.New()
	g := r.Group("/api/v1/admin", func(c *gin.Context) { c.Set("user_id", uint(9)); c.Next() }, Audit(store))
	g.GET("/referrals", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.POST("/referrals/:id/mark-used", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.DELETE("/promotions/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/admin/referrals", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/admin/referrals/4/mark-used", nil),
		httptest.NewRequest(http.MethodDelete, "/api/v1/admin/promotions/1", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	if len(store.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(store.entries))
	}
	e := store.entries[0]
	if e.Action != "POST /api/v1/admin/referrals/:id/mark-used" || e.Resource != "referrals" || e.ResourceID != "4" {
		t.Fatalf("entry = %+v", e)
	}
	if e.UserID == nil || *e.UserID != 9 {
		t.Fatalf("user id = %v", e.UserID)
	}
}

func TestTruncateKeepsRunes(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"Mozilla", 10, "Mozilla"},
		{"Mozilla", 3, "Moz"},
		{"aé", 2, "a"},
		{"日本語", 4, "日"},
		{"é", 1, ""},
	}
	for _, tc := range cases {
		got := truncate(tc.in, tc.n)
		if got != tc.want || !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
