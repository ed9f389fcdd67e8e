package solver_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmorecarrie13/shift-scheduling/solver"
)

func solve(t *testing.T, m *solver.Model) *solver.Solution {
	t.Helper()
	sol, err := m.Solve(context.Background(), solver.Options{TimeLimit: 10 * time.Second})
	require.NoError(t, err)
	return sol
}

func TestSolveContinuousLP(t *testing.T) {
	// min -(x + y) s.t. x + y <= 1.5, x, y in [0, 1] -> objective -1.5.
	m := solver.NewModel()
	x := m.Num(0, 1, "x")
	y := m.Num(0, 1, "y")
	m.AddLE(solver.Expr{}.Plus(x, 1).Plus(y, 1), 1.5, "cap")
	m.Minimize(solver.Expr{}.Plus(x, -1).Plus(y, -1))

	sol := solve(t, m)
	assert.Equal(t, solver.StatusOptimal, sol.Status)
	assert.InDelta(t, -1.5, sol.Objective, 1e-6)
	assert.InDelta(t, 1.5, sol.Value(x)+sol.Value(y), 1e-6)
}

func TestSolveBinaryKnapsack(t *testing.T) {
	// Values 10, 7, 4 with weights 5, 4, 3 under capacity 7: the LP
	// relaxation is fractional, the integer optimum picks items 2 and 3.
	m := solver.NewModel()
	a := m.Binary("a")
	b := m.Binary("b")
	c := m.Binary("c")
	m.AddLE(solver.Expr{}.Plus(a, 5).Plus(b, 4).Plus(c, 3), 7, "weight")
	m.Minimize(solver.Expr{}.Plus(a, -10).Plus(b, -7).Plus(c, -4))

	sol := solve(t, m)
	assert.Equal(t, solver.StatusOptimal, sol.Status)
	assert.InDelta(t, -11, sol.Objective, 1e-6)
	assert.False(t, sol.Bool(a))
	assert.True(t, sol.Bool(b))
	assert.True(t, sol.Bool(c))
}

func TestSolveIntegerRoundsUp(t *testing.T) {
	// min x s.t. x >= 2.3 over integers forces x = 3.
	m := solver.NewModel()
	x := m.Int(0, 10, "x")
	m.AddGE(solver.Expr{}.Plus(x, 1), 2.3, "floor")
	m.Minimize(solver.Expr{}.Plus(x, 1))

	sol := solve(t, m)
	assert.Equal(t, solver.StatusOptimal, sol.Status)
	assert.InDelta(t, 3, sol.Value(x), 1e-6)
}

func TestSolveEquality(t *testing.T) {
	// x + y == 2 over binaries forces both on.
	m := solver.NewModel()
	x := m.Binary("x")
	y := m.Binary("y")
	m.AddEQ(solver.Expr{}.Plus(x, 1).Plus(y, 1), 2, "both")
	m.Minimize(solver.Expr{}.Plus(x, 1))

	sol := solve(t, m)
	assert.Equal(t, solver.StatusOptimal, sol.Status)
	assert.True(t, sol.Bool(x))
	assert.True(t, sol.Bool(y))
}

func TestSolveInfeasible(t *testing.T) {
	// Two binaries cannot sum to 3.
	m := solver.NewModel()
	x := m.Binary("x")
	y := m.Binary("y")
	m.AddGE(solver.Expr{}.Plus(x, 1).Plus(y, 1), 3, "impossible")
	m.Minimize(solver.Expr{}.Plus(x, 1))

	sol := solve(t, m)
	assert.Equal(t, solver.StatusInfeasible, sol.Status)
	assert.Zero(t, sol.Value(x))
}

func TestSolveRangeConstraint(t *testing.T) {
	// 1 <= x + y <= 1 expressed as a range: exactly one of two binaries,
	// minimizing the expensive one.
	m := solver.NewModel()
	x := m.Binary("x")
	y := m.Binary("y")
	m.AddRange(solver.Expr{}.Plus(x, 1).Plus(y, 1), 1, 1, "pick_one")
	m.Minimize(solver.Expr{}.Plus(x, 5).Plus(y, 1))

	sol := solve(t, m)
	assert.Equal(t, solver.StatusOptimal, sol.Status)
	assert.False(t, sol.Bool(x))
	assert.True(t, sol.Bool(y))
	assert.InDelta(t, 1, sol.Objective, 1e-6)
}

func TestSolveRejectsBadModels(t *testing.T) {
	t.Run("empty variable domain", func(t *testing.T) {
		m := solver.NewModel()
		m.Int(3, 1, "x")
		_, err := m.Solve(context.Background(), solver.Options{TimeLimit: time.Second})
		assert.Error(t, err)
	})

	t.Run("unbounded integer", func(t *testing.T) {
		m := solver.NewModel()
		x := m.Int(0, math.Inf(1), "x")
		m.Minimize(solver.Expr{}.Plus(x, 1))
		_, err := m.Solve(context.Background(), solver.Options{TimeLimit: time.Second})
		assert.Error(t, err)
	})
}

func TestInvalidVar(t *testing.T) {
	assert.False(t, solver.InvalidVar.Valid())
	m := solver.NewModel()
	assert.True(t, m.Binary("x").Valid())
}
