// Package solver provides a small mixed-integer linear programming engine
// behind a build-then-solve contract: callers declare bounded variables,
// linear constraints and a single minimization objective, then block on
// Solve until a terminal status comes back. The LP relaxation at each
// branch-and-bound node is solved with gonum's simplex method.
package solver

import (
	"fmt"
	"math"
)

// Var identifies a decision variable within one Model.
type Var int

// InvalidVar marks a variable that was never materialized, e.g. a shift
// start excluded at the horizon edge.
const InvalidVar Var = -1

// Valid reports whether the variable exists in the model.
func (v Var) Valid() bool { return v >= 0 }

// Term is one coefficient-variable pair of a linear expression.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a linear expression over model variables.
type Expr []Term

// Plus appends a term and returns the extended expression.
func (e Expr) Plus(v Var, coef float64) Expr {
	return append(e, Term{Var: v, Coef: coef})
}

type constraint struct {
	terms Expr
	lo    float64
	hi    float64
	name  string
}

// Model is a mixed-integer linear program under construction. It is not safe
// for concurrent mutation; build one model per solve invocation.
type Model struct {
	lo      []float64
	hi      []float64
	integer []bool
	names   []string
	cons    []constraint
	obj     Expr
}

// NewModel returns an empty model.
func NewModel() *Model { return &Model{} }

func (m *Model) addVar(lo, hi float64, integer bool, name string) Var {
	m.lo = append(m.lo, lo)
	m.hi = append(m.hi, hi)
	m.integer = append(m.integer, integer)
	m.names = append(m.names, name)
	return Var(len(m.lo) - 1)
}

// Binary declares a {0,1} variable.
func (m *Model) Binary(name string) Var { return m.addVar(0, 1, true, name) }

// Int declares an integer variable with inclusive finite bounds.
func (m *Model) Int(lo, hi float64, name string) Var { return m.addVar(lo, hi, true, name) }

// Num declares a continuous variable with inclusive bounds.
func (m *Model) Num(lo, hi float64, name string) Var { return m.addVar(lo, hi, false, name) }

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.lo) }

// NumConstraints returns the number of declared constraints.
func (m *Model) NumConstraints() int { return len(m.cons) }

// AddLE adds the constraint expr <= ub.
func (m *Model) AddLE(e Expr, ub float64, name string) {
	m.cons = append(m.cons, constraint{terms: e, lo: math.Inf(-1), hi: ub, name: name})
}

// AddGE adds the constraint expr >= lb.
func (m *Model) AddGE(e Expr, lb float64, name string) {
	m.cons = append(m.cons, constraint{terms: e, lo: lb, hi: math.Inf(1), name: name})
}

// AddEQ adds the constraint expr == b.
func (m *Model) AddEQ(e Expr, b float64, name string) {
	m.cons = append(m.cons, constraint{terms: e, lo: b, hi: b, name: name})
}

// AddRange adds the constraint lo <= expr <= hi.
func (m *Model) AddRange(e Expr, lo, hi float64, name string) {
	m.cons = append(m.cons, constraint{terms: e, lo: lo, hi: hi, name: name})
}

// Minimize sets the objective. Later calls replace earlier ones.
func (m *Model) Minimize(e Expr) { m.obj = e }

func (m *Model) evalObj(x []float64) float64 {
	var total float64
	for _, t := range m.obj {
		total += t.Coef * x[t.Var]
	}
	return total
}

func (m *Model) validate() error {
	for j := range m.lo {
		if m.lo[j] > m.hi[j] {
			return fmt.Errorf("variable %s has empty domain [%g, %g]", m.names[j], m.lo[j], m.hi[j])
		}
		if m.integer[j] && (math.IsInf(m.lo[j], 0) || math.IsInf(m.hi[j], 0)) {
			return fmt.Errorf("integer variable %s requires finite bounds", m.names[j])
		}
	}
	for _, t := range m.obj {
		if !t.Var.Valid() || int(t.Var) >= len(m.lo) {
			return fmt.Errorf("objective references unknown variable %d", t.Var)
		}
	}
	return nil
}

// Status is the terminal state of a solve.
type Status int

const (
	// StatusOptimal means the incumbent was proven optimal.
	StatusOptimal Status = iota
	// StatusFeasible means the budget ran out with a feasible incumbent.
	StatusFeasible
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
	// StatusUnknown means the budget ran out before any incumbent was found.
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Solution is the result of a solve. Values are only populated for
// StatusOptimal and StatusFeasible.
type Solution struct {
	Status    Status
	Objective float64
	values    []float64
}

// Value returns the assignment of v, or 0 when no assignment exists.
func (s *Solution) Value(v Var) float64 {
	if s.values == nil || !v.Valid() {
		return 0
	}
	return s.values[v]
}

// Bool rounds a binary variable's assignment, guarding against solver
// floating tolerance.
func (s *Solution) Bool(v Var) bool { return s.Value(v) > 0.5 }
