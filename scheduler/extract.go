package scheduler

import (
	"math"
	"time"

	"github.com/bmorecarrie13/shift-scheduling/metrics"
	"github.com/bmorecarrie13/shift-scheduling/models"
	"github.com/bmorecarrie13/shift-scheduling/solver"
)

// extract turns a solved assignment into shift intervals and metrics.
// Binary variables are rounded through Solution.Bool against solver
// tolerance.
func (sm *shiftModel) extract(sol *solver.Solution) *models.Result {
	H := sm.grid.Len()
	M := len(sm.staff)

	worked := make([][]bool, M)
	overtime := make([][]bool, M)
	for i := 0; i < M; i++ {
		worked[i] = make([]bool, H)
		overtime[i] = make([]bool, H)
		for t := 0; t < H; t++ {
			worked[i][t] = sol.Bool(sm.work[i][t])
			overtime[i][t] = sm.ot[i][t].Valid() && sol.Bool(sm.ot[i][t])
		}
	}

	staffed := make([]int, H)
	shortfall := 0.0
	for t := 0; t < H; t++ {
		for i := 0; i < M; i++ {
			if worked[i][t] {
				staffed[t]++
			}
		}
		if gap := sm.demand.Demand(t) - float64(staffed[t]); gap > 0 {
			shortfall += gap
		}
	}
	metrics.ShortfallHours.Set(shortfall)

	return &models.Result{
		Shifts:  buildShifts(sm.staff, worked, sm.grid),
		Metrics: computeMetrics(sm.demand, sm.staff, worked, overtime),
		Staffed: staffed,
	}
}

// buildShifts merges each staff member's consecutive working slots into
// [start, end) shift intervals.
func buildShifts(staff []models.StaffMember, worked [][]bool, grid *models.TimeGrid) []models.Shift {
	var shifts []models.Shift
	for i, member := range staff {
		runStart := -1
		for t := 0; t <= grid.Len(); t++ {
			on := t < grid.Len() && worked[i][t]
			switch {
			case on && runStart == -1:
				runStart = t
			case !on && runStart != -1:
				shifts = append(shifts, models.Shift{
					StaffID: member.ID,
					Start:   grid.At(runStart),
					End:     grid.At(t - 1).Add(time.Hour),
				})
				runStart = -1
			}
		}
	}
	return shifts
}

// computeMetrics derives the headline numbers from a rounded assignment.
// WDC counts zero-demand hours as fully covered and clamps overstaffed hours
// at 1; WOR is 0 when nothing is scheduled; cost pays every overtime hour at
// the overtime rate and every other working hour at the base rate.
func computeMetrics(demand *models.DemandTable, staff []models.StaffMember, worked, overtime [][]bool) models.Metrics {
	grid := demand.Grid()
	H := grid.Len()

	coverage := 0.0
	for t := 0; t < H; t++ {
		d := demand.Demand(t)
		if d <= 0 {
			coverage++
			continue
		}
		staffed := 0
		for i := range staff {
			if worked[i][t] {
				staffed++
			}
		}
		coverage += math.Min(1, float64(staffed)/d)
	}

	var m models.Metrics
	if H > 0 {
		m.WDC = coverage / float64(H)
	}

	for i, member := range staff {
		for t := 0; t < H; t++ {
			if !worked[i][t] {
				continue
			}
			m.ScheduledHours++
			if overtime[i][t] {
				m.OvertimeHours++
				m.TotalCost += member.OvertimeHourlyWage
			} else {
				m.TotalCost += member.HourlyWage
			}
		}
	}
	if m.ScheduledHours > 0 {
		m.WOR = float64(m.OvertimeHours) / float64(m.ScheduledHours)
	}
	return m
}
