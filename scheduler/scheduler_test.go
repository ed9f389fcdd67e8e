package scheduler_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmorecarrie13/shift-scheduling/config"
	"github.com/bmorecarrie13/shift-scheduling/models"
	"github.com/bmorecarrie13/shift-scheduling/scheduler"
)

var midnight = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func flatDemand(start time.Time, hours int, demand float64) *models.DemandTable {
	grid := models.NewTimeGrid(start, hours)
	counts := make([]float64, hours)
	for i := range counts {
		counts[i] = demand
	}
	return models.NewDemandTable(grid, counts)
}

func baseConfig() config.Config {
	cfg := config.Default()
	cfg.MinShiftHours = 4
	cfg.MaxShiftHours = 8
	cfg.OvertimeHoursStart = 4
	cfg.MinRestHours = 2
	cfg.MinStaffPerHour = 0
	cfg.SolveTimeLimit = 60 * time.Second
	cfg.SolverThreads = 1
	return cfg
}

func schedule(t *testing.T, cfg config.Config, demand *models.DemandTable, roster *models.Roster) *models.Result {
	t.Helper()
	planner, err := scheduler.New(cfg)
	require.NoError(t, err)
	res, err := planner.Schedule(context.Background(), demand, roster)
	require.NoError(t, err)
	return res
}

// assertLaborRules checks the structural shift rules every solved schedule
// must satisfy: length bounds, the daily start cap, and rest gaps between
// consecutive shifts of the same staff member.
func assertLaborRules(t *testing.T, cfg config.Config, shifts []models.Shift) {
	t.Helper()
	byStaff := make(map[string][]models.Shift)
	for _, s := range shifts {
		assert.GreaterOrEqual(t, s.Hours(), cfg.MinShiftHours)
		assert.LessOrEqual(t, s.Hours(), cfg.MaxShiftHours)
		assert.Equal(t, s.Start.YearDay(), s.End.Add(-time.Hour).YearDay(),
			"shift must not cross midnight")
		byStaff[s.StaffID] = append(byStaff[s.StaffID], s)
	}
	for id, list := range byStaff {
		sort.Slice(list, func(i, j int) bool { return list[i].Start.Before(list[j].Start) })
		perDay := make(map[int]int)
		for _, s := range list {
			perDay[s.Start.YearDay()]++
		}
		for day, n := range perDay {
			assert.LessOrEqual(t, n, cfg.MaxShiftsPerDay, "staff %s day %d", id, day)
		}
		for i := 1; i < len(list); i++ {
			gap := list[i].Start.Sub(list[i-1].End)
			assert.GreaterOrEqual(t, gap, time.Duration(cfg.MinRestHours)*time.Hour,
				"staff %s rest gap between shifts", id)
		}
	}
}

func TestScheduleSingleStaffUnderstaffed(t *testing.T) {
	// One staff member against demand 2 for eight hours: the best coverage is
	// one maximum-length shift, with every hour past the overtime boundary
	// billed as overtime.
	cfg := baseConfig()
	roster := &models.Roster{Members: []models.StaffMember{
		{ID: "S001", Role: "Teller", HourlyWage: 20, OvertimeHourlyWage: 30},
	}}

	res := schedule(t, cfg, flatDemand(midnight, 8, 2), roster)

	assert.Equal(t, models.StatusOptimal, res.Status)
	require.Len(t, res.Shifts, 1)
	assert.Equal(t, "S001", res.Shifts[0].StaffID)
	assert.Equal(t, midnight, res.Shifts[0].Start)
	assert.Equal(t, 8, res.Shifts[0].Hours())
	assertLaborRules(t, cfg, res.Shifts)

	assert.Equal(t, 8, res.Metrics.ScheduledHours)
	assert.Equal(t, 4, res.Metrics.OvertimeHours)
	assert.InDelta(t, 0.5, res.Metrics.WDC, 1e-6, "one of two demanded staff every hour")
	assert.InDelta(t, 0.5, res.Metrics.WOR, 1e-6)
	assert.InDelta(t, 4*20+4*30, res.Metrics.TotalCost, 1e-6)
	require.Len(t, res.Staffed, 8)
	for _, n := range res.Staffed {
		assert.Equal(t, 1, n)
	}
}

func TestScheduleStaffingFloorForcesOvertime(t *testing.T) {
	// Zero demand but a hard floor of one staffed hour everywhere: the single
	// staff member must cover the whole horizon, and the hours past the
	// overtime boundary are forced onto the overtime rate.
	cfg := baseConfig()
	cfg.MinStaffPerHour = 1
	roster := &models.Roster{Members: []models.StaffMember{
		{ID: "S001", Role: "Teller", HourlyWage: 10, OvertimeHourlyWage: 15},
	}}

	res := schedule(t, cfg, flatDemand(midnight, 8, 0), roster)

	assert.Equal(t, models.StatusOptimal, res.Status)
	require.Len(t, res.Shifts, 1)
	assert.Equal(t, 8, res.Shifts[0].Hours())
	assertLaborRules(t, cfg, res.Shifts)

	assert.InDelta(t, 1.0, res.Metrics.WDC, 1e-6, "zero-demand hours count as covered")
	assert.Equal(t, 4, res.Metrics.OvertimeHours)
	assert.InDelta(t, 4*10+4*15, res.Metrics.TotalCost, 1e-6)
}

func TestScheduleIneligibleRoleInfeasible(t *testing.T) {
	// The floor demands round-the-clock presence, but the only staff member's
	// role cannot accrue overtime, so their shifts are capped at the overtime
	// boundary and the tail hours stay unstaffable.
	cfg := baseConfig()
	cfg.MinStaffPerHour = 1
	cfg.MinRestHours = 4
	cfg.OvertimeEligibleRoles = []string{"Supervisor"}
	roster := &models.Roster{Members: []models.StaffMember{
		{ID: "S001", Role: "Teller", HourlyWage: 20, OvertimeHourlyWage: 30},
	}}

	res := schedule(t, cfg, flatDemand(midnight, 8, 0), roster)

	assert.Equal(t, models.StatusInfeasible, res.Status)
	assert.Empty(t, res.Shifts)
	assert.Zero(t, res.Metrics.ScheduledHours)
}

func TestScheduleSplitsShiftsAroundRest(t *testing.T) {
	// Twelve hours of demand 1, shifts of 3 to 5 hours, two starts per day
	// allowed: maximum coverage is two 5-hour shifts separated by exactly the
	// 2-hour rest gap, leaving the middle two hours uncovered.
	cfg := baseConfig()
	cfg.MinShiftHours = 3
	cfg.MaxShiftHours = 5
	cfg.OvertimeHoursStart = 3
	cfg.MaxShiftsPerDay = 2
	roster := &models.Roster{Members: []models.StaffMember{
		{ID: "S001", Role: "Teller", HourlyWage: 20, OvertimeHourlyWage: 30},
	}}

	res := schedule(t, cfg, flatDemand(midnight, 12, 1), roster)

	assert.Equal(t, models.StatusOptimal, res.Status)
	require.Len(t, res.Shifts, 2)
	assertLaborRules(t, cfg, res.Shifts)

	shifts := res.Shifts
	sort.Slice(shifts, func(i, j int) bool { return shifts[i].Start.Before(shifts[j].Start) })
	assert.Equal(t, midnight, shifts[0].Start)
	assert.Equal(t, 5, shifts[0].Hours())
	assert.Equal(t, midnight.Add(7*time.Hour), shifts[1].Start)
	assert.Equal(t, 5, shifts[1].Hours())

	assert.Equal(t, 10, res.Metrics.ScheduledHours)
	assert.Equal(t, 4, res.Metrics.OvertimeHours, "the last two hours of each shift")
	assert.InDelta(t, 10.0/12.0, res.Metrics.WDC, 1e-6)
}

func TestScheduleTwoStaffCoverDemand(t *testing.T) {
	// Two staff against demand 2: both must work every hour for full coverage.
	cfg := baseConfig()
	roster := &models.Roster{Members: []models.StaffMember{
		{ID: "S001", Role: "Teller", HourlyWage: 20, OvertimeHourlyWage: 30},
		{ID: "S002", Role: "Teller", HourlyWage: 22, OvertimeHourlyWage: 33},
	}}

	res := schedule(t, cfg, flatDemand(midnight, 6, 2), roster)

	assert.Equal(t, models.StatusOptimal, res.Status)
	require.Len(t, res.Shifts, 2)
	assertLaborRules(t, cfg, res.Shifts)
	assert.InDelta(t, 1.0, res.Metrics.WDC, 1e-6)
	assert.Equal(t, 12, res.Metrics.ScheduledHours)
	for _, n := range res.Staffed {
		assert.Equal(t, 2, n)
	}
}

func TestScheduleRejectsInvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.MinShiftHours = 0
	_, err := scheduler.New(cfg)
	assert.Error(t, err)
}

func TestScheduleContextCancellation(t *testing.T) {
	cfg := baseConfig()
	roster := &models.Roster{Members: []models.StaffMember{
		{ID: "S001", Role: "Teller", HourlyWage: 20, OvertimeHourlyWage: 30},
	}}
	planner, err := scheduler.New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := planner.Schedule(ctx, flatDemand(midnight, 8, 2), roster)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnknown, res.Status)
	assert.True(t, res.Metrics.TimedOut)
}
