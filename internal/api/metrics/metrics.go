// Package metrics defines and registers the custom Prometheus collectors of
// the HCO admin API. HTTP request metrics come from echoprometheus; this
// package only covers session outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/humanityclub/hco-backend/internal/core/domain"
)

const (
	namespace = "hco"
	subsystem = "auth"
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or the error kind (e.g. "invalid_credentials", "too_many_attempts")
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "logins_total",
		Help:      "Total number of admin login attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts completed logouts.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "logouts_total",
		Help:      "Total number of admin logouts.",
	},
)

// RegistrationsTotal counts created administrators.
// Label:
//   - role: the assigned role
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "registrations_total",
		Help:      "Total number of registered administrators, by role.",
	},
	[]string{"role"},
)

// RefreshesTotal counts refresh credential exchanges.
var RefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "refreshes_total",
		Help:      "Total number of refresh token exchanges, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts bearer verifications on protected routes.
// Label:
//   - result: "success", "missing", "malformed" or the error kind
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "token_verifications_total",
		Help:      "Total number of access token verifications, by result.",
	},
	[]string{"result"},
)

// Result turns an operation outcome into a result label.
func Result(err error) string {
	if err == nil {
		return "success"
	}
	return string(domain.KindOf(err))
}
