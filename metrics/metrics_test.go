package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CountsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder("test", reg)
	require.NoError(t, err)

	r.Attestation(ResultSuccess)
	r.Attestation(ResultSuccess)
	r.Attestation(ResultInvalid)
	r.Schema(ResultFailure)
	r.ObserveDelegation("attest", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(r.attestations.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.attestations.WithLabelValues(ResultInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.schemas.WithLabelValues(ResultFailure)))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Attestation(ResultSuccess)
		r.Schema(ResultSuccess)
		r.ObserveDelegation("attest", time.Now())
	})
}

func TestNewRecorder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder("test", reg)
	require.NoError(t, err)

	_, err = NewRecorder("test", reg)
	assert.Error(t, err)
}
