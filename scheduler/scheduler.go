// Package scheduler assigns staff to hourly shift slots over the planning
// horizon. It builds an integer-programming model of the labor rules, solves
// it in two lexicographic phases (demand coverage first, overtime second) and
// extracts shift intervals plus headline metrics from the assignment.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bmorecarrie13/shift-scheduling/config"
	"github.com/bmorecarrie13/shift-scheduling/metrics"
	"github.com/bmorecarrie13/shift-scheduling/models"
	"github.com/bmorecarrie13/shift-scheduling/solver"
)

// Phase 1 (coverage) gets the bulk of the time budget; phase 2 reoptimizes
// overtime inside the remainder.
const phase1BudgetShare = 0.6

// Planner runs scheduling invocations against one immutable configuration
// snapshot. Concurrent invocations with different inputs are independent.
type Planner struct {
	cfg config.Config
}

// New validates the configuration and returns a planner bound to it.
func New(cfg config.Config) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Planner{cfg: cfg}, nil
}

// Schedule builds and solves the shift model for one (demand, roster) pair.
// Infeasible and budget-exhausted outcomes are terminal result states, not
// errors; errors are reserved for configuration rejection and engine
// failures.
func (p *Planner) Schedule(ctx context.Context, demand *models.DemandTable, roster *models.Roster) (*models.Result, error) {
	started := time.Now()
	metrics.ResetRunGauges()

	sm, err := buildModel(p.cfg, demand, roster)
	if err != nil {
		return nil, err
	}
	metrics.ModelVariables.Set(float64(sm.mip.NumVars()))
	metrics.ModelConstraints.Set(float64(sm.mip.NumConstraints()))
	logrus.WithFields(logrus.Fields{
		"slots":       demand.Grid().Len(),
		"staff":       roster.Len(),
		"variables":   sm.mip.NumVars(),
		"constraints": sm.mip.NumConstraints(),
		"threads":     p.cfg.SolverThreads,
	}).Info("shift model built")

	budget := p.cfg.SolveTimeLimit
	phase1Budget := time.Duration(float64(budget) * phase1BudgetShare)
	if !sm.hasOvertime() {
		phase1Budget = budget
	}

	sm.mip.Minimize(sm.shortfallObjective())
	sol1, err := sm.mip.Solve(ctx, solver.Options{TimeLimit: phase1Budget})
	if err != nil {
		return nil, fmt.Errorf("phase 1 solve: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"status":    sol1.Status,
		"objective": sol1.Objective,
		"elapsed":   time.Since(started),
	}).Info("phase 1 (coverage) finished")

	switch sol1.Status {
	case solver.StatusInfeasible:
		metrics.SolveStatus.WithLabelValues(string(models.StatusInfeasible)).Set(1)
		return &models.Result{Status: models.StatusInfeasible}, nil
	case solver.StatusUnknown:
		metrics.SolveStatus.WithLabelValues(string(models.StatusUnknown)).Set(1)
		return &models.Result{
			Status:  models.StatusUnknown,
			Metrics: models.Metrics{SolveSeconds: time.Since(started).Seconds(), TimedOut: true},
		}, nil
	}

	best := sol1
	optimal := sol1.Status == solver.StatusOptimal
	timedOut := sol1.Status == solver.StatusFeasible

	if sm.hasOvertime() {
		sm.pinShortfall(sol1.Objective)
		sm.mip.Minimize(sm.overtimeObjective())
		remaining := budget - time.Since(started)
		if remaining < time.Second {
			remaining = time.Second
		}
		sol2, err := sm.mip.Solve(ctx, solver.Options{TimeLimit: remaining})
		if err != nil {
			return nil, fmt.Errorf("phase 2 solve: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"status":    sol2.Status,
			"objective": sol2.Objective,
			"elapsed":   time.Since(started),
		}).Info("phase 2 (overtime) finished")

		switch sol2.Status {
		case solver.StatusOptimal:
			best = sol2
		case solver.StatusFeasible:
			best, timedOut, optimal = sol2, true, false
		default:
			// The pinned model contains the phase-1 incumbent, so this only
			// happens when phase 2 ran out of budget before finding it.
			logrus.Warn("phase 2 returned no incumbent; keeping phase 1 assignment")
			timedOut, optimal = true, false
		}
	}

	result := sm.extract(best)
	result.Metrics.SolveSeconds = time.Since(started).Seconds()
	result.Metrics.TimedOut = timedOut
	if optimal {
		result.Status = models.StatusOptimal
	} else {
		result.Status = models.StatusFeasible
	}

	publishRunMetrics(result)
	return result, nil
}

func publishRunMetrics(res *models.Result) {
	metrics.ScheduleWDC.Set(res.Metrics.WDC)
	metrics.ScheduleWOR.Set(res.Metrics.WOR)
	metrics.ScheduleTotalCost.Set(res.Metrics.TotalCost)
	metrics.ScheduledHours.Set(float64(res.Metrics.ScheduledHours))
	metrics.OvertimeHours.Set(float64(res.Metrics.OvertimeHours))
	metrics.SolveDurationSeconds.Observe(res.Metrics.SolveSeconds)
	metrics.SolveStatus.WithLabelValues(string(res.Status)).Set(1)
}
