package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)

	UserOperations.WithLabelValues("create", "ok").Inc()

	expected := `
# HELP users_service_user_operations_total Number of user resource operations by outcome.
# TYPE users_service_user_operations_total counter
users_service_user_operations_total{op="create",outcome="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "users_service_user_operations_total"))
}

func TestRegisterCollectorsTwicePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)
	require.Panics(t, func() { RegisterCollectors(reg) })
}
