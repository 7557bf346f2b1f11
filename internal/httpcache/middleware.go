package httpcache

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// recorder tees a response: bytes flow through to the client while a copy
// of the status and body is kept for caching or sharing with joiners.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func newRecorder(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) contentType() string {
	return r.Header().Get(echo.HeaderContentType)
}

// Middleware returns the response-cache layer for GET routes. Hits are
// served straight from Redis; misses run the handler through a recorder
// and store successful responses for the given TTL. Redis failures are
// logged and degrade to pass-through.
func (rc *ResponseCache) Middleware(ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			fingerprint := RequestFingerprint(c)

			entry, hit, err := rc.Get(ctx, fingerprint)
			if err != nil {
				slog.Warn("response cache read failed", "error", err)
			}
			if hit {
				return c.JSONBlob(entry.Status, entry.Body)
			}

			rec := newRecorder(c.Response().Writer)
			c.Response().Writer = rec
			if err := next(c); err != nil {
				return err
			}
			if rec.status >= 200 && rec.status < 300 {
				entry := Entry{Status: rec.status, Body: rec.body.Bytes()}
				if err := rc.Set(ctx, fingerprint, entry, ttl); err != nil {
					slog.Warn("response cache write failed", "error", err)
				}
			}
			return nil
		}
	}
}

// Middleware returns the request-deduplication layer for GET routes.
// The first request for a fingerprint executes the handler and streams
// its response normally; concurrent duplicates wait for it and replay
// the recorded status and body.
func (co *Coordinator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			fingerprint := RequestFingerprint(c)

			res, shared, err := co.Join(fingerprint, func() (*Result, error) {
				rec := newRecorder(c.Response().Writer)
				c.Response().Writer = rec
				if err := next(c); err != nil {
					return nil, err
				}
				return &Result{
					Status:      rec.status,
					ContentType: rec.contentType(),
					Body:        bytes.Clone(rec.body.Bytes()),
				}, nil
			})
			if err != nil {
				// Errors reach every joiner; each connection renders the
				// same error envelope through the central handler.
				return err
			}
			if !shared {
				// Leader already streamed its response through the recorder.
				return nil
			}
			contentType := res.ContentType
			if contentType == "" {
				contentType = echo.MIMEApplicationJSON
			}
			return c.Blob(res.Status, contentType, res.Body)
		}
	}
}
