package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRefresh(t *testing.T) {
	before := testutil.ToFloat64(refreshTotal.WithLabelValues("metrics_test", ResultOK))
	ObserveRefresh("metrics_test", ResultOK, 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(refreshTotal.WithLabelValues("metrics_test", ResultOK)))
}

func TestSetRecords(t *testing.T) {
	SetRecords("metrics_test", 7)
	assert.Equal(t, float64(7), testutil.ToFloat64(collectionRecords.WithLabelValues("metrics_test")))
}

func TestObserveUpload(t *testing.T) {
	okBefore := testutil.ToFloat64(uploadsTotal.WithLabelValues(ResultOK))
	bytesBefore := testutil.ToFloat64(uploadBytes)

	ObserveUpload(ResultOK, 128)
	ObserveUpload(ResultError, 4096)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(uploadsTotal.WithLabelValues(ResultOK)))
	assert.Equal(t, bytesBefore+128, testutil.ToFloat64(uploadBytes))
}

func TestIncActivityDropped(t *testing.T) {
	before := testutil.ToFloat64(activityDropped)
	IncActivityDropped()
	assert.Equal(t, before+1, testutil.ToFloat64(activityDropped))
}
