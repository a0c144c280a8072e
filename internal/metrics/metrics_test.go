package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/trznica/internal/client"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveFetch(t *testing.T) {
	m := New(func() int { return 0 })

	m.ObserveFetch("json", nil, 10*time.Millisecond)
	m.ObserveFetch("json", nil, 10*time.Millisecond)
	m.ObserveFetch("binary", &client.RequestError{Kind: client.KindStatus, Message: "nope"}, time.Millisecond)
	m.ObserveFetch("json", errors.New("other"), time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, `trznica_fetch_total{kind="json",outcome="ok"} 2`)
	assert.Contains(t, out, `trznica_fetch_total{kind="binary",outcome="status"} 1`)
	assert.Contains(t, out, `trznica_fetch_total{kind="json",outcome="error"} 1`)
	assert.Contains(t, out, `trznica_fetch_duration_seconds_count{kind="json"} 3`)
}

func TestLiveHandlesGauge(t *testing.T) {
	live := 3
	m := New(func() int { return live })

	assert.Contains(t, scrape(t, m), "trznica_image_handles_live 3")
	live = 1
	assert.Contains(t, scrape(t, m), "trznica_image_handles_live 1")
}

func TestObservePurchase(t *testing.T) {
	m := New(func() int { return 0 })

	m.ObservePurchase(nil)
	m.ObservePurchase(&client.RequestError{Kind: client.KindTransport, Message: "down"})

	out := scrape(t, m)
	assert.Contains(t, out, `trznica_purchases_total{outcome="ok"} 1`)
	assert.Contains(t, out, `trznica_purchases_total{outcome="transport"} 1`)
}
