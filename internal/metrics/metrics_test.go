package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCollectors(t *testing.T) {
	CandidatesTotal.WithLabelValues("test_extractor", "accepted").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(CandidatesTotal.WithLabelValues("test_extractor", "accepted")))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "subgraphdumper_candidates_total")
}
