package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSuccess(t *testing.T) {
	r := NewRecorder(nil)

	r.RecordSuccess("Local model (demo)", 2*time.Second, 1024)
	r.RecordSuccess("Local model (demo)", time.Second, 2048)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.transcriptions.WithLabelValues("Local model (demo)", OutcomeCompleted)))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecordFailure(t *testing.T) {
	r := NewRecorder(nil)

	r.RecordFailure("", OutcomeRejected, "unsupported_format")
	r.RecordFailure("OpenAI gpt-4o-mini-transcribe", OutcomeFailed, "rate_limit_exceeded")
	r.RecordFailure("OpenAI gpt-4o-mini-transcribe", OutcomeFailed, "rate_limit_exceeded")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("unsupported_format")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.errors.WithLabelValues("rate_limit_exceeded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.transcriptions.WithLabelValues("OpenAI gpt-4o-mini-transcribe", OutcomeFailed)))
}

func TestHandlerExposesScratchGauge(t *testing.T) {
	r := NewRecorder(func() int64 { return 3 })

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "hywhisper_scratch_files 3")
}
