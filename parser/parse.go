// Package parser ingests the tabular demand and staff inputs. Both readers
// are header-driven: columns may appear in any order, unknown columns are
// ignored, and every malformed row is rejected with the offending line and
// record attached.
package parser

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bmorecarrie13/shift-scheduling/errors"
	"github.com/bmorecarrie13/shift-scheduling/metrics"
	"github.com/bmorecarrie13/shift-scheduling/models"
)

// Accepted date_time layouts. Timestamps must land on the top of an hour.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// ParseDemand reads the demand table from CSV. The expected columns are
// date_time and demand; hours missing between the first and last timestamp
// are filled with zero demand.
func ParseDemand(r io.Reader) (*models.DemandTable, error) {
	timer := time.Now()
	defer func() { metrics.ParserDurationSeconds.Observe(time.Since(timer).Seconds()) }()

	rows, header, err := readTable(r, []string{"date_time", "demand"})
	if err != nil {
		return nil, err
	}

	byTime := make(map[time.Time]float64, len(rows))
	var first, last time.Time
	for _, row := range rows {
		ts, err := parseTimestamp(row.fields[header["date_time"]])
		if err != nil {
			return nil, inputErr(row, fmt.Errorf("%w: %v", errors.ErrInvalidTimestamp, err))
		}
		demand, err := strconv.ParseFloat(strings.TrimSpace(row.fields[header["demand"]]), 64)
		if err != nil || demand < 0 {
			return nil, inputErr(row, errors.ErrInvalidDemand)
		}
		if _, seen := byTime[ts]; seen {
			return nil, inputErr(row, errors.ErrDuplicateSlot)
		}
		byTime[ts] = demand
		if first.IsZero() || ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
		metrics.ParserRecordsTotal.Inc()
	}

	hours := int(last.Sub(first)/time.Hour) + 1
	grid := models.NewTimeGrid(first, hours)
	counts := make([]float64, hours)
	for i := 0; i < hours; i++ {
		counts[i] = byTime[grid.At(i)]
	}
	return models.NewDemandTable(grid, counts), nil
}

// ParseStaff reads the staff registry from CSV. The expected columns are
// staff_id, role, hourly_wage and overtime_hourly_wage.
func ParseStaff(r io.Reader) (*models.Roster, error) {
	timer := time.Now()
	defer func() { metrics.ParserDurationSeconds.Observe(time.Since(timer).Seconds()) }()

	cols := []string{"staff_id", "role", "hourly_wage", "overtime_hourly_wage"}
	rows, header, err := readTable(r, cols)
	if err != nil {
		return nil, err
	}

	roster := &models.Roster{}
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		id := strings.TrimSpace(row.fields[header["staff_id"]])
		if id == "" {
			return nil, inputErr(row, errors.ErrInvalidFieldCount)
		}
		if seen[id] {
			return nil, inputErr(row, errors.ErrDuplicateStaff)
		}
		seen[id] = true

		wage, err := strconv.ParseFloat(strings.TrimSpace(row.fields[header["hourly_wage"]]), 64)
		if err != nil || wage <= 0 {
			return nil, inputErr(row, errors.ErrInvalidWage)
		}
		otWage, err := strconv.ParseFloat(strings.TrimSpace(row.fields[header["overtime_hourly_wage"]]), 64)
		if err != nil {
			return nil, inputErr(row, errors.ErrInvalidOvertimeWage)
		}
		if otWage < wage {
			return nil, inputErr(row, errors.ErrOvertimeWageBelowBase)
		}

		roster.Members = append(roster.Members, models.StaffMember{
			ID:                 id,
			Role:               strings.TrimSpace(row.fields[header["role"]]),
			HourlyWage:         wage,
			OvertimeHourlyWage: otWage,
		})
		metrics.ParserRecordsTotal.Inc()
	}
	return roster, nil
}

type tableRow struct {
	line   int
	fields []string
}

// readTable consumes a CSV stream, resolves the header row and returns the
// data rows plus a column-name index. Lines starting with '#' are comments.
func readTable(r io.Reader, required []string) ([]tableRow, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var (
		rows    []tableRow
		header  map[string]int
		lineNum int
	)
	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues("csv").Inc()
			return nil, nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}
		if len(record) == 0 || strings.HasPrefix(record[0], "#") {
			continue
		}

		if header == nil {
			header = make(map[string]int, len(record))
			for i, name := range record {
				header[strings.ToLower(strings.TrimSpace(name))] = i
			}
			for _, col := range required {
				if _, ok := header[col]; !ok {
					metrics.ParserErrorsTotal.WithLabelValues("missing_column").Inc()
					return nil, nil, &errors.InputError{
						Line:   lineNum,
						Record: record,
						Err:    fmt.Errorf("%w: %s", errors.ErrMissingColumn, col),
					}
				}
			}
			continue
		}

		width := 0
		for _, col := range required {
			if header[col] >= width {
				width = header[col] + 1
			}
		}
		if len(record) < width {
			metrics.ParserErrorsTotal.WithLabelValues("field_count").Inc()
			return nil, nil, &errors.InputError{Line: lineNum, Record: record, Err: errors.ErrInvalidFieldCount}
		}
		rows = append(rows, tableRow{line: lineNum, fields: record})
	}

	if len(rows) == 0 {
		metrics.ParserErrorsTotal.WithLabelValues("empty").Inc()
		return nil, nil, &errors.InputError{Line: lineNum, Err: errors.ErrEmptyInput}
	}
	return rows, header, nil
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			lastErr = err
			continue
		}
		if !t.Truncate(time.Hour).Equal(t) {
			return time.Time{}, fmt.Errorf("timestamp %q is not on an hourly boundary", value)
		}
		return t, nil
	}
	return time.Time{}, lastErr
}

func inputErr(row tableRow, cause error) error {
	metrics.ParserErrorsTotal.WithLabelValues(errorLabel(cause)).Inc()
	return &errors.InputError{Line: row.line, Record: row.fields, Err: cause}
}

func errorLabel(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrInvalidTimestamp):
		return "timestamp"
	case stderrors.Is(err, errors.ErrInvalidDemand):
		return "demand"
	case stderrors.Is(err, errors.ErrDuplicateSlot):
		return "duplicate_slot"
	case stderrors.Is(err, errors.ErrInvalidWage), stderrors.Is(err, errors.ErrInvalidOvertimeWage):
		return "wage"
	case stderrors.Is(err, errors.ErrOvertimeWageBelowBase):
		return "overtime_wage"
	case stderrors.Is(err, errors.ErrDuplicateStaff):
		return "duplicate_staff"
	default:
		return "other"
	}
}
