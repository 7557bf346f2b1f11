package admission

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/padmasana/studio/internal/apperror"
)

// ErrBodyTimeout is returned by a gated request body once its read
// deadline has passed.
var ErrBodyTimeout = errors.New("request body read deadline exceeded")

// deadlineBody classifies body-read failures against a fixed deadline.
// Reads that start past the deadline fail immediately; reads already
// blocked on the wire are cut off by the connection read deadline set in
// GateUploads and surface here as os.ErrDeadlineExceeded.
type deadlineBody struct {
	rc       io.ReadCloser
	deadline time.Time
	timedOut bool
}

func (b *deadlineBody) Read(p []byte) (int, error) {
	if time.Now().After(b.deadline) {
		b.timedOut = true
		return 0, ErrBodyTimeout
	}
	n, err := b.rc.Read(p)
	if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		b.timedOut = true
	}
	return n, err
}

func (b *deadlineBody) Close() error { return b.rc.Close() }

// Gate holds a pool slot for the duration of the request and rejects
// with 429 when the pool is full.
func Gate(pool *Pool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			release, ok := pool.TryAcquire()
			if !ok {
				slog.Warn("admission rejected",
					"pool", pool.Name(),
					"path", c.Request().URL.Path,
					"active", pool.Active(),
				)
				return apperror.NewAdmissionRejected(busyMessage)
			}
			defer release()
			return next(c)
		}
	}
}

const busyMessage = "Service is at capacity, please try again shortly"

// GateUploads combines slot admission with a read deadline on the request
// body. A client that stops sending mid-upload gets 408 once the deadline
// passes instead of occupying a slot forever.
func GateUploads(pool *Pool, bodyTimeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			release, ok := pool.TryAcquire()
			if !ok {
				slog.Warn("admission rejected",
					"pool", pool.Name(),
					"path", c.Request().URL.Path,
					"active", pool.Active(),
				)
				return apperror.NewAdmissionRejected(busyMessage)
			}
			defer release()

			deadline := time.Now().Add(bodyTimeout)

			// The connection deadline is what unblocks a read that is
			// already waiting on a stalled sender; without it the slot
			// would be held until the client goes away.
			ctrl := http.NewResponseController(c.Response())
			if err := ctrl.SetReadDeadline(deadline); err != nil {
				slog.Debug("connection read deadline unsupported", "error", err)
			} else {
				defer ctrl.SetReadDeadline(time.Time{})
			}

			body := &deadlineBody{
				rc:       c.Request().Body,
				deadline: deadline,
			}
			c.Request().Body = body

			err := next(c)
			if err != nil && body.timedOut {
				return apperror.NewUploadTimeout("Upload timed out before the request body completed")
			}
			return err
		}
	}
}
