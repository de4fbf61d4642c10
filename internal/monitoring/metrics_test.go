package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsAreIndependentPerInstance(t *testing.T) {
	first := NewMetrics()
	second := NewMetrics()

	first.RecordNotificationSent("email", "customer")
	first.RecordNotificationSent("email", "customer")
	first.RecordNotificationFailed("chat", "instructor")

	assert.Equal(t, 2.0, testutil.ToFloat64(first.NotificationsSent.WithLabelValues("email", "customer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.NotificationsFailed.WithLabelValues("chat", "instructor")))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.NotificationsSent.WithLabelValues("email", "customer")))
}

func TestHandlerExposesBookingMetrics(t *testing.T) {
	m := NewMetrics()
	m.RecordDispatch("hotel", "success", 0.25)
	m.RecordDuplicate("hotel")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `booking_dispatches_total{result="success",variant="hotel"} 1`))
	assert.True(t, strings.Contains(body, `booking_duplicate_confirmations_total{variant="hotel"} 1`))
}

func TestActiveConnectionsGaugeIsPrefixed(t *testing.T) {
	m := NewMetrics()
	m.IncrementActiveConnections()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, "booking_active_connections 1")
	assert.NotContains(t, body, "\nactive_connections ")
}
