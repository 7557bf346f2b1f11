package httpcache

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func TestCacheMiddlewareServesSecondRequestFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	rc := NewResponseCache(rdb)

	var handled atomic.Int32
	e := echo.New()
	e.GET("/api/events", func(c echo.Context) error {
		handled.Add(1)
		return c.JSON(http.StatusOK, map[string]any{"success": true})
	}, rc.Middleware(30*time.Second))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
		if rec.Body.String() != "{\"success\":true}\n" {
			t.Fatalf("request %d body = %q", i, rec.Body.String())
		}
	}
	if got := handled.Load(); got != 1 {
		t.Errorf("handler ran %d times, want 1", got)
	}

	// A fresh TTL window means the handler runs again.
	mr.FastForward(31 * time.Second)
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/events", nil))
	if got := handled.Load(); got != 2 {
		t.Errorf("handler ran %d times after expiry, want 2", got)
	}
}

// A cached 2xx other than 200 must replay with its original status.
func TestCacheMiddlewareReplaysOriginalStatus(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	rc := NewResponseCache(rdb)

	var handled atomic.Int32
	e := echo.New()
	e.GET("/api/export", func(c echo.Context) error {
		handled.Add(1)
		return c.JSON(http.StatusAccepted, map[string]any{"success": true, "message": "export queued"})
	}, rc.Middleware(30*time.Second))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export", nil))
		if rec.Code != http.StatusAccepted {
			t.Fatalf("request %d status = %d, want %d", i, rec.Code, http.StatusAccepted)
		}
	}
	if got := handled.Load(); got != 1 {
		t.Errorf("handler ran %d times, want 1", got)
	}
}

func TestCacheMiddlewareSkipsErrorsAndWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	rc := NewResponseCache(rdb)

	var handled atomic.Int32
	e := echo.New()
	e.GET("/api/events/9", func(c echo.Context) error {
		handled.Add(1)
		return c.JSON(http.StatusNotFound, map[string]any{"success": false})
	}, rc.Middleware(30*time.Second))
	e.POST("/api/events", func(c echo.Context) error {
		handled.Add(1)
		return c.JSON(http.StatusCreated, map[string]any{"success": true})
	}, rc.Middleware(30*time.Second))

	for i := 0; i < 2; i++ {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/events/9", nil))
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/events", nil))
	}
	// Neither a non-2xx GET nor a POST may be cached.
	if got := handled.Load(); got != 4 {
		t.Errorf("handler ran %d times, want 4", got)
	}
}

func TestDedupeMiddlewareCollapsesConcurrentRequests(t *testing.T) {
	co := NewCoordinator(50 * time.Millisecond)

	var handled atomic.Int32
	release := make(chan struct{})
	e := echo.New()
	e.GET("/api/events", func(c echo.Context) error {
		handled.Add(1)
		<-release
		return c.JSON(http.StatusOK, map[string]any{"success": true})
	}, co.Middleware())

	const n = 8
	var wg sync.WaitGroup
	codes := make([]int, n)
	bodies := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
			codes[i] = rec.Code
			bodies[i] = rec.Body.String()
		}(i)
	}

	for co.InFlight() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := handled.Load(); got != 1 {
		t.Errorf("handler ran %d times, want 1", got)
	}
	for i := 0; i < n; i++ {
		if codes[i] != http.StatusOK {
			t.Errorf("request %d status = %d", i, codes[i])
		}
		if bodies[i] != bodies[0] {
			t.Errorf("request %d body %q differs from %q", i, bodies[i], bodies[0])
		}
	}
}

func TestDedupeMiddlewareSeparatesIdentities(t *testing.T) {
	co := NewCoordinator(time.Minute)

	var handled atomic.Int32
	e := echo.New()
	e.GET("/api/contacts", func(c echo.Context) error {
		handled.Add(1)
		return c.JSON(http.StatusOK, map[string]any{"success": true})
	}, co.Middleware())

	anon := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
	authed := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
	authed.Header.Set("Authorization", "Bearer tok123")

	e.ServeHTTP(httptest.NewRecorder(), anon)
	e.ServeHTTP(httptest.NewRecorder(), authed)

	if got := handled.Load(); got != 2 {
		t.Errorf("handler ran %d times, want 2 for distinct identities", got)
	}
}
