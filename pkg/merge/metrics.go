package merge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// mergesTotal counts completed merge pipelines by join mode.
	mergesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xlmerge_merges_total",
			Help: "Total number of successfully completed merges",
		},
		[]string{"join_mode"},
	)

	// mergeFailuresTotal counts aborted merge pipelines by error stage.
	mergeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xlmerge_merge_failures_total",
			Help: "Total number of merges aborted with an error",
		},
		[]string{"stage"},
	)

	// mergeRowsOut tracks rows produced by completed merges.
	mergeRowsOut = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "xlmerge_merge_rows_out_total",
			Help: "Total number of rows in merged outputs",
		},
	)

	// mergeUnmatchedRows tracks rows flagged as unmatched.
	mergeUnmatchedRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "xlmerge_merge_unmatched_rows_total",
			Help: "Total number of merged rows present in fewer than all sources",
		},
	)
)
