package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(assessmentsCompleted.WithLabelValues("structured"))
	IncAssessmentCompleted("structured")
	assert.Equal(t, before+1, testutil.ToFloat64(assessmentsCompleted.WithLabelValues("structured")))

	beforeCalls := testutil.ToFloat64(engineCalls.WithLabelValues("placeholder", "ok"))
	ObserveEngineCall("placeholder", "ok", -1)
	assert.Equal(t, beforeCalls+1, testutil.ToFloat64(engineCalls.WithLabelValues("placeholder", "ok")))

	beforeTrig := testutil.ToFloat64(detectorTriggers.WithLabelValues("false"))
	IncDetectorTrigger(false)
	assert.Equal(t, beforeTrig+1, testutil.ToFloat64(detectorTriggers.WithLabelValues("false")))

	beforePanics := testutil.ToFloat64(httpPanics.WithLabelValues("/x"))
	IncHTTPPanic("/x")
	assert.Equal(t, beforePanics+1, testutil.ToFloat64(httpPanics.WithLabelValues("/x")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncAssessmentStarted()

	r := gin.New()
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "exporo_assessments_started_total")
}
