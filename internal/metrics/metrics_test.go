package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsAreIndependent(t *testing.T) {
	a := New()
	b := New()

	a.Uploads.WithLabelValues("ok").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Uploads.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Uploads.WithLabelValues("ok")))
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.Downloads.WithLabelValues("ok").Add(2)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `file_share_downloads_total{outcome="ok"} 2`)
}
