// Package store persists solved scheduling runs to SQLite so planners can
// compare runs across configuration changes. It is never on the solve path.
package store

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bmorecarrie13/shift-scheduling/models"
)

// ScheduleRun is one persisted scheduling run.
type ScheduleRun struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	Status       string    `gorm:"type:varchar(20);not null;index" json:"status"`
	WDC          float64   `json:"wdc"`
	WOR          float64   `json:"wor"`
	TotalCost    float64   `json:"total_cost"`
	SolveSeconds float64   `json:"solve_seconds"`
	TimedOut     bool      `json:"timed_out"`

	Shifts []ShiftRecord `gorm:"foreignKey:RunID" json:"shifts"`
}

func (ScheduleRun) TableName() string {
	return "schedule_runs"
}

// ShiftRecord is one shift interval of a persisted run.
type ShiftRecord struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	RunID         uint      `gorm:"not null;index" json:"run_id"`
	StaffID       string    `gorm:"type:varchar(64);not null;index" json:"staff_id"`
	StartDateTime time.Time `gorm:"not null" json:"start_date_time"`
	EndDateTime   time.Time `gorm:"not null" json:"end_date_time"`
}

func (ShiftRecord) TableName() string {
	return "shift_records"
}

// ScheduleStore wraps the run-history database.
type ScheduleStore struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at path and migrates
// the run tables.
func Open(path string) (*ScheduleStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&ScheduleRun{}, &ShiftRecord{}); err != nil {
		return nil, err
	}
	return &ScheduleStore{db: db}, nil
}

// SaveRun persists a result with its shifts and returns the run ID.
func (s *ScheduleStore) SaveRun(res *models.Result) (uint, error) {
	run := ScheduleRun{
		Status:       string(res.Status),
		WDC:          res.Metrics.WDC,
		WOR:          res.Metrics.WOR,
		TotalCost:    res.Metrics.TotalCost,
		SolveSeconds: res.Metrics.SolveSeconds,
		TimedOut:     res.Metrics.TimedOut,
	}
	for _, shift := range res.Shifts {
		run.Shifts = append(run.Shifts, ShiftRecord{
			StaffID:       shift.StaffID,
			StartDateTime: shift.Start,
			EndDateTime:   shift.End,
		})
	}
	if err := s.db.Create(&run).Error; err != nil {
		return 0, err
	}
	return run.ID, nil
}

// RecentRuns returns the latest n runs, newest first, shifts included.
func (s *ScheduleStore) RecentRuns(n int) ([]ScheduleRun, error) {
	var runs []ScheduleRun
	err := s.db.Preload("Shifts").Order("id desc").Limit(n).Find(&runs).Error
	return runs, err
}

// Close releases the underlying database handle.
func (s *ScheduleStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
