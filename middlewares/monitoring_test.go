package middlewares

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusOK, OutcomeSuccess},
		{http.StatusCreated, OutcomeSuccess},
		{http.StatusBadRequest, OutcomeRejected},
		{http.StatusConflict, OutcomeRejected},
		{http.StatusInternalServerError, OutcomeFailed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.status), "status %d", tt.status)
	}
}

func TestRecordOrderOperation(t *testing.T) {
	rejected := orderOperations.WithLabelValues("update_status", OutcomeRejected)
	before := testutil.ToFloat64(rejected)

	RecordOrderOperation("update_status", http.StatusConflict)
	RecordOrderOperation("update_status", http.StatusNotFound)

	assert.Equal(t, before+2, testutil.ToFloat64(rejected))
}
