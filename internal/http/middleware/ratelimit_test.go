package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tap_duel/internal/service"

	"github.com/gin-gonic/gin"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"device": c.GetString(DeviceIDKey)})
	})
	r.GET("/x", handlers...)
	return r
}

func do(r http.Handler, req *http.Request) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestSimpleRateLimit(t *testing.T) {
	r := newRouter(SimpleRateLimit(2, time.Minute))
	for i, want := range []int{200, 200, 429, 429} {
		if got := do(r, httptest.NewRequest(http.MethodGet, "/x", nil)); got != want {
			t.Fatalf("request %d: status %d; want %d", i, got, want)
		}
	}
}

func TestRateLimitFallsBackWithoutRedis(t *testing.T) {
	InitRedisRateLimiter(nil)
	r := newRouter(RateLimit(1, time.Minute))
	if got := do(r, httptest.NewRequest(http.MethodGet, "/x", nil)); got != 200 {
		t.Fatalf("first request %d", got)
	}
	if got := do(r, httptest.NewRequest(http.MethodGet, "/x", nil)); got != 429 {
		t.Fatalf("second request %d; want 429", got)
	}
}

func TestDeviceAuth(t *testing.T) {
	if err := service.InitJWT("test-secret"); err != nil {
		t.Fatal(err)
	}
	token, err := service.GenerateDeviceToken("dev-1")
	if err != nil {
		t.Fatal(err)
	}
	r := newRouter(DeviceAuth())

	if got := do(r, httptest.NewRequest(http.MethodGet, "/x", nil)); got != 401 {
		t.Fatalf("no token: %d", got)
	}
	if got := do(r, httptest.NewRequest(http.MethodGet, "/x?token=bad", nil)); got != 401 {
		t.Fatalf("bad token: %d", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if got := do(r, req); got != 200 {
		t.Fatalf("header token: %d", got)
	}
	if got := do(r, httptest.NewRequest(http.MethodGet, "/x?token="+token, nil)); got != 200 {
		t.Fatalf("query token: %d", got)
	}
}

func TestSessionRateLimitFailOpen(t *testing.T) {
	InitRedisRateLimiter(nil)
	r := newRouter(SessionRateLimit(1, time.Minute))
	for i := 0; i < 3; i++ {
		if got := do(r, httptest.NewRequest(http.MethodGet, "/x", nil)); got != 200 {
			t.Fatalf("request %d: %d", i, got)
		}
	}
}

func TestOptionalDeviceAuth(t *testing.T) {
	if err := service.InitJWT("test-secret"); err != nil {
		t.Fatal(err)
	}
	token, err := service.GenerateDeviceToken("dev-2")
	if err != nil {
		t.Fatal(err)
	}
	r := newRouter(OptionalDeviceAuth())

	tests := []struct {
		url    string
		device string
	}{
		{"/x", ""},
		{"/x?token=bad", ""},
		{"/x?token=" + token, "dev-2"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))
		if w.Code != 200 {
			t.Fatalf("%s: status %d", tt.url, w.Code)
		}
		if want := `{"device":"` + tt.device + `"}`; w.Body.String() != want {
			t.Errorf("%s: body %s; want %s", tt.url, w.Body.String(), want)
		}
	}
}
