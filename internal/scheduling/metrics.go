package scheduling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sysu-ecnc-dev/shift-assignments/backend/internal/domain"
)

var (
	assignmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shift_assignments_created_total",
		Help: "Number of shift assignments created by batch plans.",
	})
	assignmentsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shift_assignments_skipped_total",
		Help: "Number of distinct workers skipped by batch plans.",
	})
	// 同一名员工可能同时属于 duplicate 和 overlap，各原因分别计数，相加会大于 skipped_total
	skipReasons = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shift_assignment_skip_reasons_total",
		Help: "Skip reasons seen by batch plans. A worker with both reasons is counted once per reason.",
	}, []string{"reason"})
	writeConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shift_assignments_write_conflicts_total",
		Help: "Writes rejected by storage constraints or serialization failures, by kind.",
	}, []string{"kind"})
)

func recordWriteConflict(kind string) {
	writeConflicts.WithLabelValues(kind).Inc()
}

func recordPlan(created, skipped int, duplicates, overlapping []domain.ID) {
	assignmentsCreated.Add(float64(created))
	assignmentsSkipped.Add(float64(skipped))
	skipReasons.WithLabelValues("duplicate").Add(float64(len(duplicates)))
	skipReasons.WithLabelValues("overlap").Add(float64(len(overlapping)))
}
