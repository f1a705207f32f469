package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "users_service"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// UserOperations counts user resource calls by operation (list|create|update|delete)
	// and outcome (ok|not_found|invalid|error).
	UserOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "user_operations_total", Help: "Number of user resource operations by outcome."},
		[]string{"op", "outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(UserOperations)
}
