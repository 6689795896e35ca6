// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "babysteps"

const (
	NameCollectionSize  = "collection_size"
	NameMutations       = "mutations_total"
	NamePersistFailures = "persist_failures_total"
	NameSeeded          = "seeded_total"

	LabelCollection = "collection"
	LabelOperation  = "operation"
)

// CollectionSize is the number of records currently held by each store.
var CollectionSize = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name:      NameCollectionSize,
		Help:      "Records currently held by a store",
		Namespace: Namespace,
	},
	[]string{LabelCollection},
)

// Mutations counts applied store mutations (add, update, remove, like, verify).
// No-ops on unknown ids are not counted.
var Mutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameMutations,
		Help:      "Store mutations applied",
		Namespace: Namespace,
	},
	[]string{LabelCollection, LabelOperation},
)

// PersistFailures counts swallowed backend write failures.
var PersistFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NamePersistFailures,
		Help:      "Backend writes that failed and were kept in memory only",
		Namespace: Namespace,
	},
	[]string{LabelCollection},
)

// Seeded counts loads that fell back to the seed dataset.
var Seeded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameSeeded,
		Help:      "Loads that fell back to seed data",
		Namespace: Namespace,
	},
	[]string{LabelCollection},
)
