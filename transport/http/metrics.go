package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "passgate_sessions_issued_total",
		Help: "Sessions issued in exchange for a valid proof token.",
	})

	sessionsRefreshed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "passgate_sessions_refreshed_total",
		Help: "Sliding-window session refreshes.",
	})

	sessionsRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "passgate_sessions_revoked_total",
		Help: "Explicit logouts, including ones where upstream revocation failed.",
	})

	proofRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "passgate_proof_rejections_total",
		Help: "Proof tokens rejected during issuance.",
	})
)
