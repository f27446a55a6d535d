package records

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation operations, used as the "op" label.
const (
	opAdd    = "add"
	opUpdate = "update"
	opDelete = "delete"
)

var (
	recordsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "student_records",
			Help: "Number of student records currently held by the store",
		},
	)

	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_record_mutations_total",
			Help: "Total number of record store mutations by operation and result",
		},
		[]string{"op", "result"},
	)
)

// resultLabel maps a mutation error onto a low-cardinality label value.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isDuplicate(err):
		return "duplicate_id"
	case isOutOfRange(err):
		return "index_out_of_range"
	default:
		return "storage_error"
	}
}
