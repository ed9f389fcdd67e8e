// Package metrics provides Prometheus observability metrics for the shift
// scheduler: the headline schedule quality numbers, model size, and parse
// and solve timings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// SCHEDULE QUALITY - Business Impact Visibility
// =============================================================================

// ScheduleWDC is the weekly demand coverage of the last solved schedule.
var ScheduleWDC = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "schedule",
	Name:      "wdc",
	Help:      "Weekly demand coverage ratio of the last solved schedule (0-1)",
})

// ScheduleWOR is the weekly overtime rate of the last solved schedule.
var ScheduleWOR = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "schedule",
	Name:      "wor",
	Help:      "Ratio of overtime hours to scheduled hours in the last solved schedule (0-1)",
})

// ScheduleTotalCost is the labor cost of the last solved schedule.
var ScheduleTotalCost = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "schedule",
	Name:      "total_cost",
	Help:      "Total labor cost of the last solved schedule, overtime included",
})

// ScheduledHours tracks total scheduled staff-hours.
var ScheduledHours = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "schedule",
	Name:      "scheduled_hours",
	Help:      "Total staff-hours scheduled in the last solve",
})

// OvertimeHours tracks total scheduled overtime staff-hours.
var OvertimeHours = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "schedule",
	Name:      "overtime_hours",
	Help:      "Total overtime staff-hours scheduled in the last solve",
})

// ShortfallHours tracks demand units left uncovered across the horizon.
var ShortfallHours = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "schedule",
	Name:      "shortfall_hours",
	Help:      "Total uncovered demand units across all hours of the last solve",
})

// SolveStatus flags the terminal status of the last solve, by status label.
var SolveStatus = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "schedule",
	Name:      "solve_status",
	Help:      "Terminal status of the last solve (1 on the active label)",
}, []string{"status"})

// =============================================================================
// OPERATIONAL HEALTH
// =============================================================================

// ModelVariables tracks decision variables in the last built model.
var ModelVariables = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "model",
	Name:      "variables",
	Help:      "Number of decision variables in the last built model",
})

// ModelConstraints tracks linear constraints in the last built model.
var ModelConstraints = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "model",
	Name:      "constraints",
	Help:      "Number of linear constraints in the last built model",
})

// SolveDurationSeconds tracks wall-clock time spent in the solver.
var SolveDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "schedule",
	Name:      "solve_duration_seconds",
	Help:      "Time taken to solve the shift model, both phases included",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
})

// ParserErrorsTotal tracks parse errors by error type.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total parse errors by error type",
}, []string{"error_type"})

// ParserRecordsTotal tracks total records successfully parsed.
var ParserRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Total CSV records successfully parsed",
})

// ParserDurationSeconds tracks time to parse input files.
var ParserDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "parser",
	Name:      "duration_seconds",
	Help:      "Time taken to parse a CSV input file",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetRunGauges resets all per-run gauges before a new scheduling run.
// Call this at the start of Planner.Schedule.
func ResetRunGauges() {
	ScheduleWDC.Set(0)
	ScheduleWOR.Set(0)
	ScheduleTotalCost.Set(0)
	ScheduledHours.Set(0)
	OvertimeHours.Set(0)
	ShortfallHours.Set(0)
	ModelVariables.Set(0)
	ModelConstraints.Set(0)
	SolveStatus.Reset()
}
