package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aesthetica/config"
	"aesthetica/internal/clock"
	"aesthetica/internal/database"
	"aesthetica/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:router_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Server.Env = "test"
	cfg.Admin = config.AdminConfig{Email: "admin@clinic.test", Password: "admin-pass", Name: "Admin"}
	cfg.RateLimit.Requests = 1000
	cfg.RateLimit.Sensitive = 1000
	if err := database.SeedAdmin(db, cfg.Admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	engine := Setup(cfg, db, Externals{
		Clock:   clock.NewManual(now),
		Metrics: metrics.NewCollector("test"),
	})
	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(method, path string, body interface{}) (int, map[string]interface{}) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	out := map[string]interface{}{}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w.Code, out
}

func (s *testServer) login() {
	s.t.Helper()
	code, body := s.do(http.MethodPost, "/api/v1/admin/login", map[string]string{
		"email":    "admin@clinic.test",
		"password": "admin-pass",
	})
	if code != http.StatusOK {
		s.t.Fatalf("login = %d %v", code, body)
	}
	s.token = body["access_token"].(string)
}

func TestReferralFlow(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(http.MethodPost, "/api/v1/referrals", map[string]string{
		"referrer_name":  "Ana",
		"referrer_phone": "+55 11 90000-0001",
	})
	if code != http.StatusCreated {
		t.Fatalf("create = %d %v", code, body)
	}
	refCode := body["referral_code"].(string)
	if len(refCode) != 8 {
		t.Fatalf("code = %q", refCode)
	}

	redeem := map[string]string{
		"code":           strings.ToLower(refCode),
		"referred_name":  "Bia",
		"referred_phone": "5511900000002",
	}
	if code, body = s.do(http.MethodPost, "/api/v1/referrals/redeem", redeem); code != http.StatusCreated {
		t.Fatalf("redeem = %d %v", code, body)
	}
	code, body = s.do(http.MethodPost, "/api/v1/referrals/redeem", redeem)
	if code != http.StatusUnprocessableEntity || body["error"] != "invalid or expired code" {
		t.Fatalf("second redeem = %d %v", code, body)
	}
	redeem["code"] = "ZZZZZZZZ"
	if code, body = s.do(http.MethodPost, "/api/v1/referrals/redeem", redeem); body["error"] != "invalid or expired code" {
		t.Fatalf("unknown code = %d %v", code, body)
	}

	if code, _ = s.do(http.MethodGet, "/api/v1/admin/referrals/validate?code="+refCode, nil); code != http.StatusUnauthorized {
		t.Fatalf("validate without token = %d", code)
	}
	s.login()
	code, body = s.do(http.MethodGet, "/api/v1/admin/referrals/validate?code="+refCode, nil)
	if code != http.StatusOK || body["status"] != "used" {
		t.Fatalf("validate = %d %v", code, body)
	}
	code, body = s.do(http.MethodGet, "/api/v1/admin/referrals/validate?code=NOPE1234", nil)
	if code != http.StatusOK || body["status"] != "not_found" {
		t.Fatalf("validate unknown = %d %v", code, body)
	}
	code, body = s.do(http.MethodGet, "/api/v1/admin/referrals?status=used", nil)
	if code != http.StatusOK || body["total"].(float64) != 1 {
		t.Fatalf("list = %d %v", code, body)
	}
}

func TestCatalogAndBooking(t *testing.T) {
	s := newTestServer(t)
	s.login()

	code, body := s.do(http.MethodPost, "/api/v1/admin/services", map[string]interface{}{
		"name":      "Botox",
		"price":     "950.00",
		"is_active": true,
	})
	if code != http.StatusCreated {
		t.Fatalf("create service = %d %v", code, body)
	}
	id := int(body["id"].(float64))

	if code, body = s.do(http.MethodPost, "/api/v1/admin/services", map[string]interface{}{"price": 1}); code != http.StatusBadRequest {
		t.Fatalf("create without name = %d %v", code, body)
	}

	code, body = s.do(http.MethodPatch, fmt.Sprintf("/api/v1/admin/services/%d", id), map[string]interface{}{"description": "Forehead lines"})
	if code != http.StatusOK || body["name"] != "Botox" || body["description"] != "Forehead lines" {
		t.Fatalf("patch = %d %v", code, body)
	}

	s.token = ""
	code, body = s.do(http.MethodGet, "/api/v1/services", nil)
	if code != http.StatusOK || len(body["data"].([]interface{})) != 1 {
		t.Fatalf("public services = %d %v", code, body)
	}

	code, body = s.do(http.MethodPost, "/api/v1/appointments", map[string]interface{}{
		"name":           "Bia",
		"phone":          "5511900000002",
		"service_id":     id,
		"preferred_date": "2026-03-05",
		"preferred_time": "10:00",
	})
	if code != http.StatusCreated || !strings.Contains(body["handoff_message"].(string), "Botox") {
		t.Fatalf("book = %d %v", code, body)
	}
	appt := body["appointment"].(map[string]interface{})
	apptID := int(appt["id"].(float64))

	s.login()
	path := fmt.Sprintf("/api/v1/admin/appointments/%d", apptID)
	if code, body = s.do(http.MethodPost, path+"/complete", nil); code != http.StatusConflict {
		t.Fatalf("complete pending = %d %v", code, body)
	}
	if code, body = s.do(http.MethodPost, path+"/confirm", nil); code != http.StatusOK || body["sent"] != false {
		t.Fatalf("confirm = %d %v", code, body)
	}
	if code, _ = s.do(http.MethodGet, "/api/v1/admin/appointments/999", nil); code != http.StatusNotFound {
		t.Fatalf("missing appointment = %d", code)
	}
	if code, _ = s.do(http.MethodGet, "/api/v1/admin/appointments/abc", nil); code != http.StatusBadRequest {
		t.Fatalf("bad id = %d", code)
	}
}

func TestOpsEndpoints(t *testing.T) {
	s := newTestServer(t)
	if code, body := s.do(http.MethodGet, "/healthz", nil); code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz = %d %v", code, body)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "test_http_requests_total") {
		t.Fatalf("metrics = %d", w.Code)
	}
	if code, _ := s.do(http.MethodPost, "/api/v1/admin/gallery", nil); code != http.StatusUnauthorized {
		t.Fatalf("gallery without auth = %d", code)
	}
	s.login()
	code, body := s.do(http.MethodGet, "/api/v1/admin/dashboard", nil)
	if code != http.StatusOK {
		t.Fatalf("dashboard = %d %v", code, body)
	}
	if code, body = s.do(http.MethodGet, "/api/v1/admin/analytics?days=7", nil); code != http.StatusOK || body["days"].(float64) != 7 {
		t.Fatalf("analytics = %d %v", code, body)
	}
}

func TestInboxAndAuditTrail(t *testing.T) {
	s := newTestServer(t)
	if code, body := s.do(http.MethodPost, "/api/v1/referrals", map[string]string{
		"referrer_name":  "Ana",
		"referrer_phone": "+55 11 90000-0001",
	}); code != http.StatusCreated {
		t.Fatalf("create = %d %v", code, body)
	}

	s.login()
	code, body := s.do(http.MethodGet, "/api/v1/admin/notifications?unread=true", nil)
	if code != http.StatusOK || body["unread"].(float64) != 1 {
		t.Fatalf("inbox = %d %v", code, body)
	}
	item := body["data"].([]interface{})[0].(map[string]interface{})
	if item["type"] != "referral.issued" || item["title"] != "Referral code issued" {
		t.Fatalf("notification = %v", item)
	}
	if code, body = s.do(http.MethodPost, "/api/v1/admin/notifications/read-all", nil); code != http.StatusOK || body["updated"].(float64) != 1 {
		t.Fatalf("read-all = %d %v", code, body)
	}
	if code, _ = s.do(http.MethodPost, "/api/v1/admin/notifications/999/read", nil); code != http.StatusNotFound {
		t.Fatalf("read missing = %d", code)
	}

	code, body = s.do(http.MethodGet, "/api/v1/admin/audit-logs?resource=notifications", nil)
	if code != http.StatusOK || body["total"].(float64) != 1 {
		t.Fatalf("audit = %d %v", code, body)
	}
	entry := body["data"].([]interface{})[0].(map[string]interface{})
	if entry["action"] != "POST /api/v1/admin/notifications/read-all" {
		t.Fatalf("audit entry = %v", entry)
	}
}
