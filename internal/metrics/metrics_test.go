package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Independent(t *testing.T) {
	a, b := New(), New()
	a.RecordRequest(OutcomeSuccess)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.requests.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.requests.WithLabelValues(OutcomeSuccess)))
}

func TestRecordRequest(t *testing.T) {
	m := New()
	m.RecordRequest(OutcomeSuccess)
	m.RecordRequest(OutcomeSuccess)
	m.RecordRequest(OutcomeClientError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(OutcomeClientError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.requests.WithLabelValues(OutcomeError)))
}

func TestSetEngineInitialized(t *testing.T) {
	m := New()
	m.SetEngineInitialized(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.engineAvailable))
	m.SetEngineInitialized(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.engineAvailable))
}

func TestObserveRecognition(t *testing.T) {
	m := New()
	m.ObserveRecognition("tesseract", 120*time.Millisecond, 3, nil)
	m.ObserveRecognition("tesseract", time.Second, 0, errors.New("boom"))

	assert.Equal(t, 1, testutil.CollectAndCount(m.engineDuration), "one series per engine")
	assert.Equal(t, uint64(2), durationSamples(t, m, "tesseract"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.engineFailures.WithLabelValues("tesseract")))

	expected := `
# HELP ocr_text_regions Text regions detected per image.
# TYPE ocr_text_regions histogram
ocr_text_regions_bucket{le="0"} 0
ocr_text_regions_bucket{le="1"} 0
ocr_text_regions_bucket{le="2"} 0
ocr_text_regions_bucket{le="5"} 1
ocr_text_regions_bucket{le="10"} 1
ocr_text_regions_bucket{le="20"} 1
ocr_text_regions_bucket{le="50"} 1
ocr_text_regions_bucket{le="100"} 1
ocr_text_regions_bucket{le="200"} 1
ocr_text_regions_bucket{le="+Inf"} 1
ocr_text_regions_sum 3
ocr_text_regions_count 1
`
	require.NoError(t, testutil.CollectAndCompare(m.textRegions, strings.NewReader(expected)))
}

func TestObserveRecognition_PerEngineSeries(t *testing.T) {
	m := New()
	m.ObserveRecognition("tesseract", 10*time.Millisecond, 1, nil)
	m.ObserveRecognition("paddle", 20*time.Millisecond, 1, nil)
	m.ObserveRecognition("paddle", 30*time.Millisecond, 2, nil)

	assert.Equal(t, 2, testutil.CollectAndCount(m.engineDuration))
	assert.Equal(t, uint64(1), durationSamples(t, m, "tesseract"))
	assert.Equal(t, uint64(2), durationSamples(t, m, "paddle"))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.engineFailures.WithLabelValues("paddle")))
}

// durationSamples returns the observation count of the engine duration
// histogram for one engine label.
func durationSamples(t *testing.T, m *Metrics, engine string) uint64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "ocr_engine_duration_seconds" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "engine" && lp.GetValue() == engine {
					return metric.GetHistogram().GetSampleCount()
				}
			}
		}
	}
	return 0
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordRequest(OutcomeUnavailable)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `ocr_requests_total{outcome="unavailable"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
