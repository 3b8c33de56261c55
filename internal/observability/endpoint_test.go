package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/keyclip/internal/observability/metrics"
)

func TestMetricsHandler(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	m.Session.RecordOperation(metrics.OpExport, metrics.StatusSuccess)

	mux := http.NewServeMux()
	m.RegisterHandlers(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `keyclip_operations_total{operation="export",status="success"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestEndpointServesAndStops(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	endpoint := NewEndpoint("127.0.0.1:0", m, nil)
	require.NoError(t, endpoint.Start(ctx))
	require.NotNil(t, endpoint.Addr())

	resp, err := http.Get("http://" + endpoint.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "keyclip_selected_events")

	cancel()
	endpoint.Wait()

	_, err = http.Get("http://" + endpoint.Addr().String() + "/metrics")
	assert.Error(t, err)
}

func TestEndpointBadAddress(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	endpoint := NewEndpoint("not-an-address", m, nil)
	require.Error(t, endpoint.Start(context.Background()))
	assert.Nil(t, endpoint.Addr())
}
