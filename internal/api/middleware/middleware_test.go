package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"climb-planner/backend/config"
	"climb-planner/backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "middleware-test-secret-2026",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
}

// echoIdentity 返回中间件注入的 user_id
func echoIdentity(c *gin.Context) {
	c.String(http.StatusOK, c.GetString(ContextUserID))
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── JWTAuth ──

func TestJWTAuth(t *testing.T) {
	mgr := newTestJWT()
	access, _ := mgr.GenerateAccessToken("u-1", "climber@example.com")
	refresh, _ := mgr.GenerateRefreshToken("u-1", "climber@example.com")

	r := gin.New()
	r.GET("/me", JWTAuth(mgr, nil), echoIdentity)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"缺少认证头", "", http.StatusUnauthorized},
		{"格式错误", "Token " + access, http.StatusUnauthorized},
		{"伪造 Token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"Refresh Token 不能访问接口", "Bearer " + refresh, http.StatusUnauthorized},
		{"合法 Access Token", "Bearer " + access, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			if w.Code != tt.wantStatus {
				t.Errorf("期望 %d，实际 %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusOK && w.Body.String() != "u-1" {
				t.Errorf("期望注入 user_id=u-1，实际 %q", w.Body.String())
			}
		})
	}
}

// ── OptionalAuth ──

func TestOptionalAuth(t *testing.T) {
	mgr := newTestJWT()
	access, _ := mgr.GenerateAccessToken("u-1", "climber@example.com")

	r := gin.New()
	r.GET("/resources/:id", OptionalAuth(mgr, nil), echoIdentity)

	req := httptest.NewRequest("GET", "/resources/r1", nil)
	if w := serve(r, req); w.Code != http.StatusOK || w.Body.String() != "" {
		t.Errorf("匿名请求应放行且无身份，实际 %d %q", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/resources/r1", nil)
	req.Header.Set("Authorization", "Bearer broken")
	if w := serve(r, req); w.Code != http.StatusOK || w.Body.String() != "" {
		t.Errorf("无效 Token 应按匿名处理，实际 %d %q", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/resources/r1", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	if w := serve(r, req); w.Body.String() != "u-1" {
		t.Errorf("合法 Token 应注入身份，实际 %q", w.Body.String())
	}
}

// ── RateLimit ──

func TestRateLimit_NilClientAllows(t *testing.T) {
	r := gin.New()
	r.POST("/auth/login", RateLimit(nil, 1, time.Minute, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 3; i++ {
		w := serve(r, httptest.NewRequest("POST", "/auth/login", nil))
		if w.Code != http.StatusNoContent {
			t.Fatalf("第 %d 次请求：Redis 未启用时应放行，实际 %d", i+1, w.Code)
		}
	}
}

// ── RequestID ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/ping", RequestID(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := serve(r, req)
	if w.Header().Get(requestIDHeader) != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("应沿用传入的 Request-ID，实际 header=%q body=%q", w.Header().Get(requestIDHeader), w.Body.String())
	}

	req = httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", requestIDMaxLen+1))
	w = serve(r, req)
	if got := w.Header().Get(requestIDHeader); len(got) != 36 {
		t.Errorf("过长的 Request-ID 应被替换为 UUID，实际 %q", got)
	}
}

// ── BodyLimit ──

func TestBodyLimit_ContentLength(t *testing.T) {
	r := gin.New()
	r.POST("/blocks", BodyLimit(16), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := serve(r, httptest.NewRequest("POST", "/blocks", strings.NewReader(strings.Repeat("x", 32))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际 %d", w.Code)
	}

	w = serve(r, httptest.NewRequest("POST", "/blocks", strings.NewReader("{}")))
	if w.Code != http.StatusNoContent {
		t.Errorf("期望 204，实际 %d", w.Code)
	}
}

// ── SecurityHeaders / CORS ──

func TestSecurityHeadersAndCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}), SecurityHeaders())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := serve(r, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("允许的来源应被回写，实际 %q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("缺少 X-Content-Type-Options，实际 %q", got)
	}

	req = httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("未允许的来源不应回写，实际 %q", got)
	}
}
