package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/web3ix-api/internal/domain"
)

// Flows reported on the provisioning counters.
const (
	FlowSignup       = "signup"
	FlowVerification = "verification"
	FlowWallet       = "wallet"
)

// Outcomes reported on the provisioning counters.
const (
	OutcomeSuccess     = "success"
	OutcomeValidation  = "validation"
	OutcomeInvalidCode = "invalid_code"
	OutcomeAuth        = "auth"
	OutcomeProvision   = "provision"
	OutcomeStorage     = "storage"
	OutcomeDelivery    = "delivery"
)

// Provisioning counts terminal outcomes of the signup, verification and
// wallet flows, plus identity provider retries and reaped codes.
type Provisioning struct {
	outcomes *prometheus.CounterVec
	retries  *prometheus.CounterVec
	reaped   prometheus.Counter
}

// New registers the provisioning collectors on reg.
func New(reg prometheus.Registerer) *Provisioning {
	p := &Provisioning{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "web3ix",
			Name:      "provisioning_outcomes_total",
			Help:      "Terminal outcomes of provisioning requests by flow.",
		}, []string{"flow", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "web3ix",
			Name:      "duplicate_account_retries_total",
			Help:      "Sign-in retries after a duplicate-account sign-up rejection.",
		}, []string{"flow"}),
		reaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "web3ix",
			Name:      "verification_codes_reaped_total",
			Help:      "Expired verification codes removed by the reaper.",
		}),
	}
	reg.MustRegister(p.outcomes, p.retries, p.reaped)
	return p
}

// Outcome records one terminal outcome. Safe on a nil receiver.
func (p *Provisioning) Outcome(flow, outcome string) {
	if p == nil {
		return
	}
	p.outcomes.WithLabelValues(flow, outcome).Inc()
}

func (p *Provisioning) Retry(flow string) {
	if p == nil {
		return
	}
	p.retries.WithLabelValues(flow).Inc()
}

func (p *Provisioning) Reaped(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.reaped.Add(float64(n))
}

// OutcomeOf maps a terminal request error to its outcome label.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, domain.ErrInvalidCode):
		return OutcomeInvalidCode
	case errors.Is(err, domain.ErrAuth):
		return OutcomeAuth
	case errors.Is(err, domain.ErrProvision):
		return OutcomeProvision
	case errors.Is(err, domain.ErrDelivery):
		return OutcomeDelivery
	default:
		return OutcomeStorage
	}
}
