package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCostingCountsBySource(t *testing.T) {
	before := testutil.ToFloat64(costingSheets.WithLabelValues(SourcePreview))
	ObserveCosting(SourcePreview, time.Now())
	ObserveCosting(SourcePreview, time.Now())

	assert.Equal(t, before+2, testutil.ToFloat64(costingSheets.WithLabelValues(SourcePreview)))
}

func TestRecordImportCountsOutcomes(t *testing.T) {
	created := testutil.ToFloat64(importedRows.WithLabelValues("created"))
	skipped := testutil.ToFloat64(importedRows.WithLabelValues("skipped"))

	RecordImport(3, 1, 2)

	assert.Equal(t, created+3, testutil.ToFloat64(importedRows.WithLabelValues("created")))
	assert.Equal(t, skipped+2, testutil.ToFloat64(importedRows.WithLabelValues("skipped")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	ObserveCosting(SourceAPI, time.Now())

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `backoffice_costing_sheets_total{source="api"}`)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}
