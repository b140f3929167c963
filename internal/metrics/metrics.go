package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric the service exports, including the HTTP ones from fiberprometheus
const Namespace = "catalog"

var (
	// CatalogMutations counts committed catalog mutations by audit action
	CatalogMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "mutations_total",
		Help:      "Committed catalog mutations by action.",
	}, []string{"action"})

	// AuditDropped counts audit entries that could not be written
	AuditDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "audit_dropped_total",
		Help:      "Admin audit entries dropped because the store was unavailable or the write failed.",
	})

	// DegradedReads counts reads answered with an empty result because the store was unavailable
	DegradedReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "degraded_reads_total",
		Help:      "Reads answered empty because the store was unavailable or unreachable.",
	}, []string{"operation"})

	// LoginAttempts counts admin.login outcomes
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "admin_login_attempts_total",
		Help:      "Admin login attempts by outcome.",
	}, []string{"outcome"})
)
