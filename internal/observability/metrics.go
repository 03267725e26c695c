package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts login attempts by outcome.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postline_login_attempts_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	// FeedMutations counts write operations against the feed by kind.
	FeedMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postline_feed_mutations_total",
		Help: "Total number of feed write operations by kind",
	}, []string{"kind"})

	// CredentialStoreErrors counts credential store failures by operation.
	CredentialStoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postline_credential_store_errors_total",
		Help: "Total number of credential store failures by operation",
	}, []string{"operation"})
)
