package scheduler

import (
	"fmt"
	"math"

	"github.com/bmorecarrie13/shift-scheduling/config"
	"github.com/bmorecarrie13/shift-scheduling/errors"
	"github.com/bmorecarrie13/shift-scheduling/models"
	"github.com/bmorecarrie13/shift-scheduling/solver"
)

// shiftModel holds the decision variables and constraints for one
// (demand, roster) pair. Variable collections are dense slices indexed by
// [staff][slot]; variables that are never materialized (e.g. starts at the
// horizon edge) carry solver.InvalidVar.
type shiftModel struct {
	cfg    config.Config
	demand *models.DemandTable
	grid   *models.TimeGrid
	staff  []models.StaffMember

	mip *solver.Model

	start [][]solver.Var // staff i begins a shift whose first working hour is t
	work  [][]solver.Var // staff i is on duty during slot t
	ot    [][]solver.Var // staff i's hour t is paid at the overtime rate
	day   [][]solver.Var // staff i works at all on calendar day d (weekly cap only)

	short1 []solver.Var // first uncovered unit of demand at slot t
	short2 []solver.Var // uncovered units beyond the first at slot t

	eligible []bool // overtime eligibility per staff member
	dayFirst []int  // first slot index of each calendar day
}

// buildModel constructs the full constraint model. Contradictory
// configurations are rejected here, before any solve is attempted.
func buildModel(cfg config.Config, demand *models.DemandTable, roster *models.Roster) (*shiftModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid := demand.Grid()
	if grid.Len() == 0 {
		return nil, &errors.ConfigError{Field: "demand", Reason: "planning horizon is empty"}
	}
	if roster.Len() == 0 {
		return nil, &errors.ConfigError{Field: "staff", Reason: "roster is empty"}
	}
	if cfg.MinStaffPerHour > roster.Len() {
		return nil, &errors.ConfigError{
			Field:  "min_staff_per_hour",
			Reason: fmt.Sprintf("floor %d exceeds roster headcount %d", cfg.MinStaffPerHour, roster.Len()),
		}
	}

	sm := &shiftModel{
		cfg:    cfg,
		demand: demand,
		grid:   grid,
		staff:  roster.Members,
		mip:    solver.NewModel(),
	}
	sm.indexDays()
	sm.addVariables()
	sm.addShiftWindowConstraints()
	sm.addRestConstraints()
	sm.addDailyCaps()
	sm.addWeeklyCaps()
	sm.addCoverageConstraints()
	return sm, nil
}

func (sm *shiftModel) indexDays() {
	sm.dayFirst = make([]int, sm.grid.Days())
	for d := range sm.dayFirst {
		sm.dayFirst[d] = -1
	}
	for t := 0; t < sm.grid.Len(); t++ {
		if d := sm.grid.DayIndex(t); sm.dayFirst[d] == -1 {
			sm.dayFirst[d] = t
		}
	}
}

// startAllowed reports whether a shift may begin at slot t: the full minimum
// commitment must fit inside the horizon and inside slot t's calendar day
// (shifts never cross midnight).
func (sm *shiftModel) startAllowed(t int) bool {
	if t+sm.cfg.MinShiftHours-1 >= sm.grid.Len() {
		return false
	}
	return sm.grid.HourOfDay(t)+sm.cfg.MinShiftHours <= 23
}

func (sm *shiftModel) addVariables() {
	H := sm.grid.Len()
	M := len(sm.staff)

	sm.start = make([][]solver.Var, M)
	sm.work = make([][]solver.Var, M)
	sm.ot = make([][]solver.Var, M)
	sm.eligible = make([]bool, M)

	for i, member := range sm.staff {
		sm.eligible[i] = sm.cfg.OvertimeAllowed(member.Role)
		sm.start[i] = make([]solver.Var, H)
		sm.work[i] = make([]solver.Var, H)
		sm.ot[i] = make([]solver.Var, H)
		for t := 0; t < H; t++ {
			sm.start[i][t] = solver.InvalidVar
			sm.ot[i][t] = solver.InvalidVar
			if sm.startAllowed(t) {
				sm.start[i][t] = sm.mip.Binary(fmt.Sprintf("start%d_%d", i, t))
			}
			sm.work[i][t] = sm.mip.Binary(fmt.Sprintf("work%d_%d", i, t))
			// Overtime hours can only fall this deep into a same-day shift.
			if sm.eligible[i] && sm.grid.HourOfDay(t) >= sm.cfg.OvertimeHoursStart {
				sm.ot[i][t] = sm.mip.Binary(fmt.Sprintf("ot%d_%d", i, t))
			}
		}
	}

	sm.short1 = make([]solver.Var, H)
	sm.short2 = make([]solver.Var, H)
	for t := 0; t < H; t++ {
		sm.short1[t] = solver.InvalidVar
		sm.short2[t] = solver.InvalidVar
		if d := sm.demand.Demand(t); d > 0 {
			sm.short1[t] = sm.mip.Int(0, 1, fmt.Sprintf("y1_%d", t))
			sm.short2[t] = sm.mip.Int(0, math.Max(0, math.Ceil(d)-1), fmt.Sprintf("y2_%d", t))
		}
	}
}

// addShiftWindowConstraints ties working hours to shift starts: a working
// slot needs a start inside its trailing window, a start forces the whole
// minimum commitment, and extension hours must be consecutive and flagged as
// overtime once they pass the overtime boundary.
func (sm *shiftModel) addShiftWindowConstraints() {
	H := sm.grid.Len()
	for i := range sm.staff {
		for t := 0; t < H; t++ {
			// work[t] <= sum of starts in the trailing window, clamped to
			// the slot's own calendar day.
			winLo := t - sm.cfg.MaxShiftHours + 1
			if first := sm.dayFirst[sm.grid.DayIndex(t)]; winLo < first {
				winLo = first
			}
			link := solver.Expr{}.Plus(sm.work[i][t], 1)
			for p := winLo; p <= t; p++ {
				if sm.start[i][p].Valid() {
					link = link.Plus(sm.start[i][p], -1)
				}
			}
			sm.mip.AddLE(link, 0, fmt.Sprintf("window%d_%d", i, t))

			if !sm.start[i][t].Valid() {
				continue
			}

			// Minimum commitment: a start forces the next MinShiftHours on.
			for s := t; s < t+sm.cfg.MinShiftHours; s++ {
				sm.mip.AddLE(
					solver.Expr{}.Plus(sm.start[i][t], 1).Plus(sm.work[i][s], -1),
					0, fmt.Sprintf("commit%d_%d_%d", i, t, s))
			}

			// Extension hours up to MaxShiftHours stay inside the day, must
			// be consecutive, and are overtime past the boundary.
			for k := sm.cfg.MinShiftHours; k < sm.cfg.MaxShiftHours; k++ {
				u := t + k
				if u >= H || sm.grid.DayIndex(u) != sm.grid.DayIndex(t) {
					break
				}
				sm.mip.AddLE(
					solver.Expr{}.Plus(sm.start[i][t], 1).Plus(sm.work[i][u], 1).Plus(sm.work[i][u-1], -1),
					1, fmt.Sprintf("consec%d_%d_%d", i, t, k))
				if k >= sm.cfg.OvertimeHoursStart {
					gate := solver.Expr{}.Plus(sm.start[i][t], 1).Plus(sm.work[i][u], 1)
					if sm.ot[i][u].Valid() {
						// Working this deep forces the overtime rate.
						gate = gate.Plus(sm.ot[i][u], -1)
					}
					// For ineligible staff the gate caps the shift at the
					// non-overtime boundary outright.
					sm.mip.AddLE(gate, 1, fmt.Sprintf("otgate%d_%d_%d", i, t, k))
				}
			}
		}
	}
}

// addRestConstraints enforces the rest gap pairwise: no shift may start
// within MinRestHours of any working hour, which also rules out overlapping
// shifts. Overtime hours extend the gap by OvertimeRestExtension.
func (sm *shiftModel) addRestConstraints() {
	H := sm.grid.Len()
	for i := range sm.staff {
		for u := 0; u < H; u++ {
			for e := 1; e <= sm.cfg.MinRestHours; e++ {
				if u+e >= H || !sm.start[i][u+e].Valid() {
					continue
				}
				sm.mip.AddLE(
					solver.Expr{}.Plus(sm.work[i][u], 1).Plus(sm.start[i][u+e], 1),
					1, fmt.Sprintf("rest%d_%d_%d", i, u, e))
			}
			if !sm.ot[i][u].Valid() {
				continue
			}
			for e := sm.cfg.MinRestHours + 1; e <= sm.cfg.MinRestHours+sm.cfg.OvertimeRestExtension; e++ {
				if u+e >= H || !sm.start[i][u+e].Valid() {
					continue
				}
				sm.mip.AddLE(
					solver.Expr{}.Plus(sm.ot[i][u], 1).Plus(sm.start[i][u+e], 1),
					1, fmt.Sprintf("otrest%d_%d_%d", i, u, e))
			}
		}
	}
}

// addDailyCaps limits shift starts per staff member per calendar day.
func (sm *shiftModel) addDailyCaps() {
	for i := range sm.staff {
		for d := 0; d < sm.grid.Days(); d++ {
			lo, hi, ok := sm.grid.DaySlots(d)
			if !ok {
				continue
			}
			expr := solver.Expr{}
			for t := lo; t <= hi; t++ {
				if sm.start[i][t].Valid() {
					expr = expr.Plus(sm.start[i][t], 1)
				}
			}
			if len(expr) > 0 {
				sm.mip.AddLE(expr, float64(sm.cfg.MaxShiftsPerDay), fmt.Sprintf("maxday%d_%d", i, d))
			}
		}
	}
}

// addWeeklyCaps bounds, for every week holding more days than the cap, the
// number of calendar days a staff member works at all. Day indicator
// variables are only materialized for weeks where the cap can bind.
func (sm *shiftModel) addWeeklyCaps() {
	days := sm.grid.Days()
	weekDays := make(map[int][]int)
	for d := 0; d < days; d++ {
		w := sm.grid.WeekOfDay(d)
		weekDays[w] = append(weekDays[w], d)
	}

	binding := make(map[int]bool)
	for w, ds := range weekDays {
		if len(ds) > sm.cfg.MaxDaysPerWeek {
			binding[w] = true
		}
	}
	if len(binding) == 0 {
		return
	}

	sm.day = make([][]solver.Var, len(sm.staff))
	for i := range sm.staff {
		sm.day[i] = make([]solver.Var, days)
		for d := 0; d < days; d++ {
			sm.day[i][d] = solver.InvalidVar
			if !binding[sm.grid.WeekOfDay(d)] {
				continue
			}
			sm.day[i][d] = sm.mip.Binary(fmt.Sprintf("day%d_%d", i, d))
			lo, hi, ok := sm.grid.DaySlots(d)
			if !ok {
				continue
			}
			for t := lo; t <= hi; t++ {
				sm.mip.AddLE(
					solver.Expr{}.Plus(sm.work[i][t], 1).Plus(sm.day[i][d], -1),
					0, fmt.Sprintf("daylink%d_%d_%d", i, d, t))
			}
		}
		for w := range binding {
			expr := solver.Expr{}
			for _, d := range weekDays[w] {
				expr = expr.Plus(sm.day[i][d], 1)
			}
			sm.mip.AddLE(expr, float64(sm.cfg.MaxDaysPerWeek), fmt.Sprintf("maxweek%d_%d", i, w))
		}
	}
}

// addCoverageConstraints accounts for demand shortfall per slot and enforces
// the hard staffing floor on every slot, demand or not.
func (sm *shiftModel) addCoverageConstraints() {
	for t := 0; t < sm.grid.Len(); t++ {
		staffed := solver.Expr{}
		for i := range sm.staff {
			staffed = staffed.Plus(sm.work[i][t], 1)
		}

		if d := sm.demand.Demand(t); d > 0 {
			cover := append(solver.Expr{}, staffed...)
			cover = cover.Plus(sm.short1[t], 1).Plus(sm.short2[t], 1)
			sm.mip.AddGE(cover, d, fmt.Sprintf("cover%d", t))
		}
		if sm.cfg.MinStaffPerHour > 0 {
			sm.mip.AddGE(staffed, float64(sm.cfg.MinStaffPerHour), fmt.Sprintf("minstaff%d", t))
		}
	}

	// Spurious overtime outside a working hour is never meaningful.
	for i := range sm.staff {
		for t := 0; t < sm.grid.Len(); t++ {
			if sm.ot[i][t].Valid() {
				sm.mip.AddLE(
					solver.Expr{}.Plus(sm.ot[i][t], 1).Plus(sm.work[i][t], -1),
					0, fmt.Sprintf("otwork%d_%d", i, t))
			}
		}
	}
}

// hasOvertime reports whether any overtime variable was materialized.
func (sm *shiftModel) hasOvertime() bool {
	for i := range sm.staff {
		for _, v := range sm.ot[i] {
			if v.Valid() {
				return true
			}
		}
	}
	return false
}
