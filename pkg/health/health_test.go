package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLivenessHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live?format=json", nil))
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	t.Run("all healthy", func(t *testing.T) {
		t.Parallel()

		h := ReadinessHandler(Checks{"smtp": func(context.Context) error { return nil }})
		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		req.Header.Set("Accept", "application/json")

		rec := httptest.NewRecorder()
		h(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, StatusHealthy, resp.Status)
		assert.Equal(t, StatusHealthy, resp.Checks["smtp"].Status)
	})

	t.Run("one failing check", func(t *testing.T) {
		t.Parallel()

		h := ReadinessHandler(Checks{
			"ok":   func(context.Context) error { return nil },
			"smtp": func(context.Context) error { return errors.New("SMTP connection failed: refused") },
		})

		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, StatusUnhealthy, resp.Status)
		assert.Equal(t, "SMTP connection failed: refused", resp.Checks["smtp"].Error)
		assert.Equal(t, StatusHealthy, resp.Checks["ok"].Status)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		h := ReadinessHandler(Checks{
			"slow": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}, WithTimeout(10*time.Millisecond))

		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), ErrCheckTimeout.Error())
	})

	t.Run("plain text", func(t *testing.T) {
		t.Parallel()

		h := ReadinessHandler(Checks{"smtp": func(context.Context) error { return errors.New("down") }})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, "Service Unavailable", rec.Body.String())
	})
}

func TestCachedRunner(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &cachedRunner{
		checks: Checks{"smtp": func(context.Context) error { calls.Add(1); return nil }},
		cfg:    newConfig(WithCacheTTL(time.Minute)),
		now:    func() time.Time { return now },
	}

	r.run(context.Background())
	r.run(context.Background())
	assert.Equal(t, int32(1), calls.Load())

	now = now.Add(2 * time.Minute)
	r.run(context.Background())
	assert.Equal(t, int32(2), calls.Load())
}
