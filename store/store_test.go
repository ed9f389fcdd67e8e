package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmorecarrie13/shift-scheduling/models"
	"github.com/bmorecarrie13/shift-scheduling/store"
)

func openTestStore(t *testing.T) *store.ScheduleStore {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveAndLoadRun(t *testing.T) {
	st := openTestStore(t)

	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	res := &models.Result{
		Status: models.StatusOptimal,
		Shifts: []models.Shift{
			{StaffID: "S001", Start: day.Add(8 * time.Hour), End: day.Add(17 * time.Hour)},
			{StaffID: "S002", Start: day.Add(10 * time.Hour), End: day.Add(19 * time.Hour)},
		},
		Metrics: models.Metrics{WDC: 0.9, WOR: 0.1, TotalCost: 640, SolveSeconds: 1.5},
	}

	id, err := st.SaveRun(res)
	require.NoError(t, err)
	assert.NotZero(t, id)

	runs, err := st.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, id, run.ID)
	assert.Equal(t, "optimal", run.Status)
	assert.InDelta(t, 0.9, run.WDC, 1e-9)
	assert.InDelta(t, 640, run.TotalCost, 1e-9)
	assert.False(t, run.TimedOut)

	require.Len(t, run.Shifts, 2)
	assert.Equal(t, "S001", run.Shifts[0].StaffID)
	assert.True(t, run.Shifts[0].StartDateTime.Equal(day.Add(8*time.Hour)))
	assert.True(t, run.Shifts[0].EndDateTime.Equal(day.Add(17*time.Hour)))
}

func TestRecentRunsOrderAndLimit(t *testing.T) {
	st := openTestStore(t)

	for i := 0; i < 3; i++ {
		_, err := st.SaveRun(&models.Result{
			Status:  models.StatusFeasible,
			Metrics: models.Metrics{WDC: float64(i) / 10},
		})
		require.NoError(t, err)
	}

	runs, err := st.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Greater(t, runs[0].ID, runs[1].ID, "newest first")
	assert.InDelta(t, 0.2, runs[0].WDC, 1e-9)
}

func TestSaveRunWithoutShifts(t *testing.T) {
	st := openTestStore(t)

	id, err := st.SaveRun(&models.Result{Status: models.StatusInfeasible})
	require.NoError(t, err)

	runs, err := st.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Empty(t, runs[0].Shifts)
}
