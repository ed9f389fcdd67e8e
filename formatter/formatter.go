package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/bmorecarrie13/shift-scheduling/models"
)

const timeLayout = "2006-01-02 15:04:05"

// metricsView is the serialized shape of a scheduling run, mirrored by the
// metrics.json output file.
type metricsView struct {
	SolverStatus   string      `json:"solver_status"`
	WDC            float64     `json:"WDC"`
	WOR            float64     `json:"WOR"`
	TotalCost      float64     `json:"total_cost"`
	ScheduledHours int         `json:"scheduled_hours"`
	OvertimeHours  int         `json:"overtime_hours"`
	SolveSeconds   float64     `json:"solve_seconds"`
	TimedOut       bool        `json:"timed_out"`
	Shifts         []shiftView `json:"shifts"`
}

type shiftView struct {
	StaffID       string `json:"staff_id"`
	StartDateTime string `json:"start_date_time"`
	EndDateTime   string `json:"end_date_time"`
}

// prepareView rounds a result into its serialized shape, shifts sorted by
// staff then start time.
func prepareView(res *models.Result) metricsView {
	view := metricsView{
		SolverStatus:   string(res.Status),
		WDC:            round4(res.Metrics.WDC),
		WOR:            round4(res.Metrics.WOR),
		TotalCost:      round2(res.Metrics.TotalCost),
		ScheduledHours: res.Metrics.ScheduledHours,
		OvertimeHours:  res.Metrics.OvertimeHours,
		SolveSeconds:   round2(res.Metrics.SolveSeconds),
		TimedOut:       res.Metrics.TimedOut,
		Shifts:         make([]shiftView, 0, len(res.Shifts)),
	}
	shifts := append([]models.Shift(nil), res.Shifts...)
	sort.Slice(shifts, func(i, j int) bool {
		if shifts[i].StaffID != shifts[j].StaffID {
			return shifts[i].StaffID < shifts[j].StaffID
		}
		return shifts[i].Start.Before(shifts[j].Start)
	})
	for _, s := range shifts {
		view.Shifts = append(view.Shifts, shiftView{
			StaffID:       s.StaffID,
			StartDateTime: s.Start.Format(timeLayout),
			EndDateTime:   s.End.Format(timeLayout),
		})
	}
	return view
}

// FormatCSV returns the schedule table: one row per contiguous shift.
func FormatCSV(res *models.Result) string {
	view := prepareView(res)
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{"staff_id", "start_date_time", "end_date_time"})
	for _, s := range view.Shifts {
		writer.Write([]string{s.StaffID, s.StartDateTime, s.EndDateTime})
	}

	writer.Flush()
	return sb.String()
}

// FormatJSON returns the metrics record with the shift list embedded.
func FormatJSON(res *models.Result) string {
	view := prepareView(res)
	jsonBytes, _ := json.MarshalIndent(view, "", "  ")
	return string(jsonBytes)
}

// FormatText returns the console summary of a run.
func FormatText(res *models.Result) string {
	view := prepareView(res)
	var sb strings.Builder

	fmt.Fprintf(&sb, "status: %s", view.SolverStatus)
	if view.TimedOut {
		sb.WriteString(" (time limit reached, best incumbent returned)")
	}
	sb.WriteString("\n")

	if res.Status == models.StatusInfeasible || res.Status == models.StatusUnknown {
		sb.WriteString("no schedule produced\n")
		return sb.String()
	}

	var lastStaff string
	for _, s := range view.Shifts {
		if s.StaffID != lastStaff {
			fmt.Fprintf(&sb, "%s:\n", s.StaffID)
			lastStaff = s.StaffID
		}
		fmt.Fprintf(&sb, "  %s -> %s\n", s.StartDateTime, s.EndDateTime)
	}

	fmt.Fprintf(&sb, "WDC=%.4f WOR=%.4f total_cost=%.2f scheduled_hours=%d overtime_hours=%d\n",
		view.WDC, view.WOR, view.TotalCost, view.ScheduledHours, view.OvertimeHours)
	return sb.String()
}

func round2(v float64) float64 { return roundTo(v, 100) }
func round4(v float64) float64 { return roundTo(v, 10000) }

func roundTo(v float64, scale float64) float64 {
	if v < 0 {
		return -roundTo(-v, scale)
	}
	return float64(int64(v*scale+0.5)) / scale
}
