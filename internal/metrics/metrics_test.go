package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordAuthFailure(t *testing.T) {
	before := testutil.ToFloat64(AuthFailures.WithLabelValues(ReasonExpired))
	RecordAuthFailure(ReasonExpired)
	RecordAuthFailure(ReasonExpired)
	require.Equal(t, before+2, testutil.ToFloat64(AuthFailures.WithLabelValues(ReasonExpired)))
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("/notes", "GET", "200"))
	ObserveRequest("/notes", "GET", "200", 15*time.Millisecond)
	require.Equal(t, before+1, testutil.ToFloat64(HTTPRequests.WithLabelValues("/notes", "GET", "200")))
}
