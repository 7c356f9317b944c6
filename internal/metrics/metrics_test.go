package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meeting-notifier/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOutcome(t *testing.T) {
	before := testutil.ToFloat64(pipelineOutcomes.WithLabelValues("sent"))
	ObserveOutcome(models.OutcomeSent)
	ObserveOutcome(models.OutcomeSent)
	assert.Equal(t, before+2, testutil.ToFloat64(pipelineOutcomes.WithLabelValues("sent")))
}

func TestObserveSummary(t *testing.T) {
	before := testutil.ToFloat64(summaryDocuments.WithLabelValues("insufficient_content"))
	ObserveSummary("insufficient_content")
	assert.Equal(t, before+1, testutil.ToFloat64(summaryDocuments.WithLabelValues("insufficient_content")))
}

func TestObserveSend(t *testing.T) {
	ObserveSend(10*time.Millisecond, nil)
	ObserveSend(10*time.Millisecond, errors.New("boom"))
	assert.Equal(t, 2, testutil.CollectAndCount(mailSendDuration))
}

func TestHTTPMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(HTTPMiddleware())
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/healthz", "200"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/healthz", "200")))
}
