package models

import "time"

// TimeGrid is the discretized planning horizon: a contiguous run of hourly
// slots starting at a fixed timestamp. It is immutable once built and shared
// read-only across packages.
type TimeGrid struct {
	start time.Time
	hours int
	dayOf []int // calendar day index per slot, relative to the first slot's date
}

// NewTimeGrid builds a grid of hourly slots beginning at start (truncated to
// the top of the hour).
func NewTimeGrid(start time.Time, hours int) *TimeGrid {
	start = start.Truncate(time.Hour)
	g := &TimeGrid{start: start, hours: hours, dayOf: make([]int, hours)}
	first := dateOf(start)
	for i := 0; i < hours; i++ {
		g.dayOf[i] = int(dateOf(g.At(i)).Sub(first).Hours() / 24)
	}
	return g
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Len returns the number of hourly slots in the horizon.
func (g *TimeGrid) Len() int { return g.hours }

// At returns the timestamp of slot i.
func (g *TimeGrid) At(i int) time.Time { return g.start.Add(time.Duration(i) * time.Hour) }

// Index maps a timestamp to its slot index. The second return is false when
// the timestamp falls outside the horizon or off the hourly lattice.
func (g *TimeGrid) Index(t time.Time) (int, bool) {
	d := t.Sub(g.start)
	if d < 0 || d%time.Hour != 0 {
		return 0, false
	}
	i := int(d / time.Hour)
	if i >= g.hours {
		return 0, false
	}
	return i, true
}

// HourOfDay returns the wall-clock hour (0-23) of slot i.
func (g *TimeGrid) HourOfDay(i int) int { return g.At(i).Hour() }

// DayIndex returns the calendar day of slot i, counted from the first slot's
// date.
func (g *TimeGrid) DayIndex(i int) int { return g.dayOf[i] }

// Days returns the number of calendar days touched by the horizon.
func (g *TimeGrid) Days() int {
	if g.hours == 0 {
		return 0
	}
	return g.dayOf[g.hours-1] + 1
}

// WeekOfDay returns the week index a calendar day belongs to.
func (g *TimeGrid) WeekOfDay(day int) int { return day / 7 }

// DaySlots returns the inclusive slot range [lo, hi] covered by calendar day
// d, with ok=false when the day holds no slots.
func (g *TimeGrid) DaySlots(d int) (lo, hi int, ok bool) {
	lo, hi = -1, -1
	for i, day := range g.dayOf {
		if day != d {
			continue
		}
		if lo == -1 {
			lo = i
		}
		hi = i
	}
	return lo, hi, lo != -1
}

// DemandTable maps every grid slot to its expected demand. Slots missing from
// the input default to zero demand.
type DemandTable struct {
	grid   *TimeGrid
	counts []float64
}

// NewDemandTable pairs a grid with per-slot demand counts. counts must have
// one entry per slot.
func NewDemandTable(grid *TimeGrid, counts []float64) *DemandTable {
	return &DemandTable{grid: grid, counts: counts}
}

// Grid returns the underlying time grid.
func (d *DemandTable) Grid() *TimeGrid { return d.grid }

// Demand returns the expected demand at slot i.
func (d *DemandTable) Demand(i int) float64 { return d.counts[i] }

// StaffMember is one row of the staff registry. Immutable after load.
type StaffMember struct {
	ID                 string
	Role               string
	HourlyWage         float64
	OvertimeHourlyWage float64
}

// Roster holds the staff registry for one scheduling run.
type Roster struct {
	Members []StaffMember
}

// Len returns the headcount.
func (r *Roster) Len() int { return len(r.Members) }

// Shift is a maximal run of consecutive on-duty hours for one staff member.
// End is exclusive.
type Shift struct {
	StaffID string    `json:"staff_id"`
	Start   time.Time `json:"start_date_time"`
	End     time.Time `json:"end_date_time"`
}

// Hours returns the shift length in hours.
func (s Shift) Hours() int { return int(s.End.Sub(s.Start) / time.Hour) }

// Metrics are the headline numbers of one solved schedule.
type Metrics struct {
	WDC            float64 // weekly demand coverage, in [0, 1]
	WOR            float64 // weekly overtime rate, in [0, 1]
	TotalCost      float64
	ScheduledHours int
	OvertimeHours  int
	SolveSeconds   float64
	TimedOut       bool
}

// ScheduleStatus classifies the terminal outcome of a scheduling run.
type ScheduleStatus string

const (
	StatusOptimal    ScheduleStatus = "optimal"
	StatusFeasible   ScheduleStatus = "feasible" // incumbent returned before proof of optimality
	StatusInfeasible ScheduleStatus = "infeasible"
	StatusUnknown    ScheduleStatus = "unknown" // budget exhausted with no incumbent
)

// Result is the outcome of one scheduling run. Shifts and Staffed are empty
// for infeasible and unknown outcomes.
type Result struct {
	Status  ScheduleStatus
	Shifts  []Shift
	Metrics Metrics
	Staffed []int // scheduled headcount per grid slot
}
