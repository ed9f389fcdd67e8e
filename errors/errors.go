package errors

import "fmt"

// ConfigError reports a contradictory or out-of-range scheduling parameter.
// It is raised before any model construction; no solve is attempted.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// InputError wraps a malformed demand or staff record with context about
// where it occurred.
type InputError struct {
	Line   int
	Record []string
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Sentinel causes carried inside InputError.
var (
	ErrInvalidFieldCount     = fmt.Errorf("invalid field count")
	ErrMissingColumn         = fmt.Errorf("missing required column")
	ErrInvalidTimestamp      = fmt.Errorf("invalid date_time")
	ErrInvalidDemand         = fmt.Errorf("invalid demand")
	ErrDuplicateSlot         = fmt.Errorf("duplicate demand slot")
	ErrInvalidWage           = fmt.Errorf("invalid hourly_wage")
	ErrInvalidOvertimeWage   = fmt.Errorf("invalid overtime_hourly_wage")
	ErrOvertimeWageBelowBase = fmt.Errorf("overtime_hourly_wage below hourly_wage")
	ErrDuplicateStaff        = fmt.Errorf("duplicate staff_id")
	ErrEmptyInput            = fmt.Errorf("empty input")
)

// ErrInfeasible marks solver-stage infeasibility surfaced by callers that
// need an error value rather than a result status.
var ErrInfeasible = fmt.Errorf("no feasible schedule under current constraints")
