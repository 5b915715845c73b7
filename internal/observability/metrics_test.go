package observability

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequestUnmatchedRoute(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))

	RecordHTTPRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404"))
	assert.Equal(t, before+1, after)
}

func TestRecordGRPCRequest(t *testing.T) {
	before := testutil.ToFloat64(grpcRequestsTotal.WithLabelValues("AreFriends", "OK"))

	RecordGRPCRequest("AreFriends", "OK", time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(grpcRequestsTotal.WithLabelValues("AreFriends", "OK")))
}

func TestInitMetricsRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	InitMetrics(reg)
	InitMetrics(reg)

	IncEventPublished("")
	IncAMQPPublishError()

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
