// Package config holds the scheduling parameter surface. A Config is a plain
// value: callers snapshot it once per run and pass it explicitly into the
// model builder, so concurrent runs with different parameters never share
// mutable state.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	scherr "github.com/bmorecarrie13/shift-scheduling/errors"
)

// Config is the full scheduling parameter set.
type Config struct {
	// MinShiftHours is the minimum length of any shift.
	MinShiftHours int `yaml:"min_shift_hours"`
	// MaxShiftHours is the maximum length of any shift. Shifts never cross
	// midnight, so this is capped at 24.
	MaxShiftHours int `yaml:"max_shift_hours"`
	// MinRestHours is the minimum gap between the last working hour of one
	// shift and the start of the next, per staff member.
	MinRestHours int `yaml:"min_rest_hours"`
	// MaxShiftsPerDay caps shift starts per staff member per calendar day.
	MaxShiftsPerDay int `yaml:"max_shifts_per_day"`
	// MaxDaysPerWeek caps the number of calendar days with any working hour
	// per staff member per week.
	MaxDaysPerWeek int `yaml:"max_days_per_week"`
	// MinStaffPerHour is a hard floor on scheduled headcount for every slot,
	// regardless of demand.
	MinStaffPerHour int `yaml:"min_staff_per_hour"`
	// OvertimeHoursStart is the hour offset within a shift at which hours
	// switch to the overtime rate. Must lie in [MinShiftHours, MaxShiftHours].
	OvertimeHoursStart int `yaml:"overtime_hours_start"`
	// OvertimeRestExtension adds this many hours of required rest after each
	// overtime hour, on top of MinRestHours.
	OvertimeRestExtension int `yaml:"overtime_rest_extension"`
	// OvertimeEligibleRoles lists the roles permitted to accrue overtime.
	// An empty list means every role is eligible.
	OvertimeEligibleRoles []string `yaml:"overtime_eligible_roles"`
	// ShortfallFirstWeight and ShortfallExtraWeight are the phase-1 penalty
	// coefficients on the first uncovered unit of demand and on every unit
	// beyond it. Extra must exceed First so the solver spreads shortfall
	// across hours instead of concentrating it.
	ShortfallFirstWeight float64 `yaml:"shortfall_first_weight"`
	ShortfallExtraWeight float64 `yaml:"shortfall_extra_weight"`
	// SolveTimeLimit bounds the total solver budget across both phases.
	SolveTimeLimit time.Duration `yaml:"solve_time_limit"`
	// SolverThreads is forwarded to the solve engine.
	SolverThreads int `yaml:"solver_threads"`
}

// Default returns the stock parameter set.
func Default() Config {
	return Config{
		MinShiftHours:         9,
		MaxShiftHours:         12,
		MinRestHours:          4,
		MaxShiftsPerDay:       1,
		MaxDaysPerWeek:        6,
		MinStaffPerHour:       2,
		OvertimeHoursStart:    9,
		OvertimeRestExtension: 0,
		ShortfallFirstWeight:  1,
		ShortfallExtraWeight:  2,
		SolveTimeLimit:        65 * time.Second,
		SolverThreads:         8,
	}
}

// Load returns the defaults overlaid by an optional YAML file and by
// SCHEDULE_* environment variables (a .env file is honored when present).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err == nil {
		logrus.Debug("loaded environment overrides from .env")
	}
	cfg.applyEnv()

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.MinShiftHours = getEnvAsInt("SCHEDULE_MIN_SHIFT_HOURS", c.MinShiftHours)
	c.MaxShiftHours = getEnvAsInt("SCHEDULE_MAX_SHIFT_HOURS", c.MaxShiftHours)
	c.MinRestHours = getEnvAsInt("SCHEDULE_MIN_REST_HOURS", c.MinRestHours)
	c.MaxShiftsPerDay = getEnvAsInt("SCHEDULE_MAX_SHIFTS_PER_DAY", c.MaxShiftsPerDay)
	c.MaxDaysPerWeek = getEnvAsInt("SCHEDULE_MAX_DAYS_PER_WEEK", c.MaxDaysPerWeek)
	c.MinStaffPerHour = getEnvAsInt("SCHEDULE_MIN_STAFF_PER_HOUR", c.MinStaffPerHour)
	c.OvertimeHoursStart = getEnvAsInt("SCHEDULE_OVERTIME_HOURS_START", c.OvertimeHoursStart)
	c.SolverThreads = getEnvAsInt("SCHEDULE_SOLVER_THREADS", c.SolverThreads)
	c.SolveTimeLimit = getEnvAsDuration("SCHEDULE_SOLVE_TIME_LIMIT", c.SolveTimeLimit)
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(name string, defaultVal int) int {
	if val, err := strconv.Atoi(getEnv(name, "")); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	if val, err := time.ParseDuration(getEnv(name, "")); err == nil {
		return val
	}
	return defaultVal
}

// OvertimeAllowed reports whether a role may accrue overtime hours.
func (c Config) OvertimeAllowed(role string) bool {
	if len(c.OvertimeEligibleRoles) == 0 {
		return true
	}
	for _, r := range c.OvertimeEligibleRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Validate rejects contradictory or out-of-range parameters before any model
// is built.
func (c Config) Validate() error {
	switch {
	case c.MinShiftHours < 1:
		return &scherr.ConfigError{Field: "min_shift_hours", Reason: "must be at least 1"}
	case c.MaxShiftHours < c.MinShiftHours:
		return &scherr.ConfigError{Field: "max_shift_hours", Reason: "must be >= min_shift_hours"}
	case c.MaxShiftHours > 24:
		return &scherr.ConfigError{Field: "max_shift_hours", Reason: "shifts cannot exceed one calendar day"}
	case c.MinRestHours < 0:
		return &scherr.ConfigError{Field: "min_rest_hours", Reason: "must be non-negative"}
	case c.MaxShiftsPerDay < 1:
		return &scherr.ConfigError{Field: "max_shifts_per_day", Reason: "must be at least 1"}
	case c.MaxDaysPerWeek < 1 || c.MaxDaysPerWeek > 7:
		return &scherr.ConfigError{Field: "max_days_per_week", Reason: "must be between 1 and 7"}
	case c.MinStaffPerHour < 0:
		return &scherr.ConfigError{Field: "min_staff_per_hour", Reason: "must be non-negative"}
	case c.OvertimeHoursStart < c.MinShiftHours || c.OvertimeHoursStart > c.MaxShiftHours:
		return &scherr.ConfigError{Field: "overtime_hours_start", Reason: "must lie between min_shift_hours and max_shift_hours"}
	case c.OvertimeRestExtension < 0:
		return &scherr.ConfigError{Field: "overtime_rest_extension", Reason: "must be non-negative"}
	case c.ShortfallFirstWeight <= 0:
		return &scherr.ConfigError{Field: "shortfall_first_weight", Reason: "must be positive"}
	case c.ShortfallExtraWeight <= c.ShortfallFirstWeight:
		return &scherr.ConfigError{Field: "shortfall_extra_weight", Reason: "must exceed shortfall_first_weight"}
	case c.SolveTimeLimit <= 0:
		return &scherr.ConfigError{Field: "solve_time_limit", Reason: "must be positive"}
	case c.SolverThreads < 1:
		return &scherr.ConfigError{Field: "solver_threads", Reason: "must be at least 1"}
	}
	return nil
}
