package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSimpleRateLimitWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/limited", SimpleRateLimit(3, 50*time.Millisecond), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	get := func() int {
		res, err := http.Get(srv.URL + "/limited")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		res.Body.Close()
		return res.StatusCode
	}

	for i := 0; i < 3; i++ {
		if code := get(); code != 200 {
			t.Fatalf("request %d blocked: %d", i+1, code)
		}
	}
	if code := get(); code != http.StatusTooManyRequests {
		t.Fatalf("over-limit request passed: %d", code)
	}

	// A fresh window clears the bucket.
	time.Sleep(60 * time.Millisecond)
	if code := get(); code != 200 {
		t.Fatalf("request after window blocked: %d", code)
	}
}

func TestSimpleRateLimitPerRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) }
	r.GET("/tight", SimpleRateLimit(1, time.Minute), handler)
	r.GET("/loose", SimpleRateLimit(100, time.Minute), handler)
	srv := httptest.NewServer(r)
	defer srv.Close()

	for _, path := range []string{"/tight", "/loose"} {
		res, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		res.Body.Close()
		if res.StatusCode != 200 {
			t.Fatalf("%s blocked: %d", path, res.StatusCode)
		}
	}

	// Exhausting /tight must not touch /loose's bucket.
	res, _ := http.Get(srv.URL + "/tight")
	res.Body.Close()
	if res.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("/tight not limited: %d", res.StatusCode)
	}
	res, _ = http.Get(srv.URL + "/loose")
	res.Body.Close()
	if res.StatusCode != 200 {
		t.Fatalf("/loose starved by /tight: %d", res.StatusCode)
	}
}
