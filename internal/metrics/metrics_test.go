package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	r.ObserveAnalysis("MANUAL DATA ANALYSIS", "success", 2*time.Second)
	r.ObserveAnalysis("MANUAL DATA ANALYSIS", "success", time.Second)
	r.ObserveMutation("rate", nil)
	r.ObserveMutation("rate", errors.New("nope"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.analysesTotal.WithLabelValues("MANUAL DATA ANALYSIS", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.mutationsTotal.WithLabelValues("rate", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.mutationsTotal.WithLabelValues("rate", "rejected")))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.ObserveAnalysis("m", "o", time.Second)
	r.ObserveMutation("op", nil)
	r.ObserveStoreError("k")
}

func TestTwoRecordersDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		NewRecorder()
		NewRecorder()
	})
}
