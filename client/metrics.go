package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/paul-bokelman/hem/client/internal/identity"
)

var (
	identityTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hem_client",
			Name:      "identity_transitions_total",
			Help:      "Identity state machine transitions by target state.",
		},
		[]string{"state"},
	)

	identityDeletionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hem_client",
			Name:      "identity_deletions_total",
			Help:      "Identities deleted through a Session.",
		},
	)
)

func recordTransition(_, to identity.State) {
	identityTransitionsTotal.WithLabelValues(to.String()).Inc()
}
