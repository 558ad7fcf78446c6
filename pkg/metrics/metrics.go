package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coursehub", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coursehub", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coursehub", Name: "auth_logins_total", Help: "Login attempts by result."},
		[]string{"result"},
	)
	Activations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coursehub", Name: "auth_activations_total", Help: "Account activation attempts by result."},
		[]string{"result"},
	)
	Refreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coursehub", Name: "auth_refresh_total", Help: "Session refresh attempts by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(Logins)
	reg.MustRegister(Activations)
	reg.MustRegister(Refreshes)
}

// Result converts an error into the "result" label value.
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
