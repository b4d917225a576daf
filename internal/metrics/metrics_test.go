package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/web3ix-api/internal/domain"
)

func TestProvisioning_Counters(t *testing.T) {
	p := New(prometheus.NewRegistry())

	p.Outcome(FlowVerification, OutcomeSuccess)
	p.Outcome(FlowVerification, OutcomeSuccess)
	p.Outcome(FlowWallet, OutcomeAuth)
	p.Retry(FlowVerification)
	p.Reaped(3)
	p.Reaped(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.outcomes.WithLabelValues(FlowVerification, OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.outcomes.WithLabelValues(FlowWallet, OutcomeAuth)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.retries.WithLabelValues(FlowVerification)))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.reaped))
}

func TestProvisioning_NilIsNoop(t *testing.T) {
	var p *Provisioning
	assert.NotPanics(t, func() {
		p.Outcome(FlowSignup, OutcomeDelivery)
		p.Retry(FlowWallet)
		p.Reaped(1)
	})
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, OutcomeOf(nil))
	assert.Equal(t, OutcomeAuth, OutcomeOf(domain.Fail(domain.ErrAuth, "User already registered", nil)))
	assert.Equal(t, OutcomeProvision, OutcomeOf(domain.Fail(domain.ErrProvision, "boom", errors.New("boom"))))
	assert.Equal(t, OutcomeStorage, OutcomeOf(errors.New("unclassified")))
}
