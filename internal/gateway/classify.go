package gateway

import "net/http"

type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeTransient
	OutcomeQuota
	OutcomeFatal
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeTransient:
		return "transient"
	case OutcomeQuota:
		return "quota"
	case OutcomeFatal:
		return "fatal"
	default:
		return "failed"
	}
}

type Classification struct {
	Reason  string
	Outcome Outcome
}

// Classifier maps a provider response onto an Outcome.
type Classifier func(resp *Response) Classification

// DefaultClassifier treats 429 and 5xx as transient and 401/403 as fatal.
func DefaultClassifier(resp *Response) Classification {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Classification{Outcome: OutcomeOK}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return Classification{Outcome: OutcomeTransient, Reason: http.StatusText(resp.StatusCode)}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Classification{Outcome: OutcomeFatal, Reason: http.StatusText(resp.StatusCode)}
	default:
		return Classification{Outcome: OutcomeFailed}
	}
}
