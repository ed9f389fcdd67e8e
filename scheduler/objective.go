package scheduler

import "github.com/bmorecarrie13/shift-scheduling/solver"

// Phase-1 bound slack absorbs simplex floating error when the achieved
// coverage level is pinned for phase 2.
const coverageBoundSlack = 1e-6

// shortfallObjective is the phase-1 objective: demand-normalized weighted
// shortfall. The first uncovered unit of an hour costs less than every
// further unit, so the solver spreads unavoidable shortage across hours
// instead of concentrating it.
func (sm *shiftModel) shortfallObjective() solver.Expr {
	expr := solver.Expr{}
	for t := 0; t < sm.grid.Len(); t++ {
		d := sm.demand.Demand(t)
		if d <= 0 {
			continue
		}
		expr = expr.Plus(sm.short1[t], sm.cfg.ShortfallFirstWeight/d)
		expr = expr.Plus(sm.short2[t], sm.cfg.ShortfallExtraWeight/d)
	}
	return expr
}

// overtimeObjective is the phase-2 objective: total overtime hours.
func (sm *shiftModel) overtimeObjective() solver.Expr {
	expr := solver.Expr{}
	for i := range sm.staff {
		for t := 0; t < sm.grid.Len(); t++ {
			if sm.ot[i][t].Valid() {
				expr = expr.Plus(sm.ot[i][t], 1)
			}
		}
	}
	return expr
}

// pinShortfall fixes the coverage level achieved in phase 1 as a floor for
// phase 2, making the two objectives strictly lexicographic.
func (sm *shiftModel) pinShortfall(achieved float64) {
	sm.mip.AddLE(sm.shortfallObjective(), achieved+coverageBoundSlack, "coverage_floor")
}
