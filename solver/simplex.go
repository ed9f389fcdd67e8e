package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

var errNodeInfeasible = errors.New("relaxation infeasible")

const simplexTol = 1e-10

// solveRelaxation solves the LP relaxation of the model under the given
// variable bounds. The general form (bounded variables, ranged constraints)
// is converted to the standard form min c'z s.t. Az = b, z >= 0 expected by
// lp.Simplex: variables are shifted by their lower bound and slack columns
// are appended for every one-sided row and finite upper bound.
func (m *Model) solveRelaxation(lo, hi []float64) ([]float64, float64, error) {
	n := len(lo)
	for j := 0; j < n; j++ {
		if lo[j] > hi[j] {
			return nil, 0, errNodeInfeasible
		}
	}

	type stdRow struct {
		coefs []Term // in variable columns
		slack int    // slack column index or -1
		neg   bool   // slack enters with coefficient -1
		rhs   float64
	}
	var (
		rows   []stdRow
		slacks int
	)
	addRow := func(terms Expr, rhs float64, slacked, neg bool) {
		r := stdRow{coefs: terms, slack: -1, neg: neg, rhs: rhs}
		if slacked {
			r.slack = slacks
			slacks++
		}
		rows = append(rows, r)
	}

	for _, c := range m.cons {
		shift := 0.0
		for _, t := range c.terms {
			shift += t.Coef * lo[t.Var]
		}
		cLo, cHi := c.lo-shift, c.hi-shift
		switch {
		case !math.IsInf(c.lo, 0) && !math.IsInf(c.hi, 0) && c.lo == c.hi:
			addRow(c.terms, cLo, false, false)
		default:
			if !math.IsInf(c.hi, 0) {
				addRow(c.terms, cHi, true, false)
			}
			if !math.IsInf(c.lo, 0) {
				addRow(c.terms, cLo, true, true)
			}
		}
	}

	// Upper-bound rows: z_j + s = hi_j - lo_j.
	for j := 0; j < n; j++ {
		if math.IsInf(hi[j], 0) {
			continue
		}
		addRow(Expr{{Var: Var(j), Coef: 1}}, hi[j]-lo[j], true, false)
	}

	cols := n + slacks
	a := mat.NewDense(len(rows), cols, nil)
	b := make([]float64, len(rows))
	for i, r := range rows {
		for _, t := range r.coefs {
			a.Set(i, int(t.Var), a.At(i, int(t.Var))+t.Coef)
		}
		if r.slack >= 0 {
			coef := 1.0
			if r.neg {
				coef = -1
			}
			a.Set(i, n+r.slack, coef)
		}
		b[i] = r.rhs
	}

	c := make([]float64, cols)
	cShift := 0.0
	for _, t := range m.obj {
		c[t.Var] += t.Coef
		cShift += t.Coef * lo[t.Var]
	}

	optF, optZ, err := lp.Simplex(c, a, b, simplexTol, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return nil, 0, errNodeInfeasible
		}
		if errors.Is(err, lp.ErrUnbounded) {
			return nil, 0, fmt.Errorf("relaxation unbounded: %w", err)
		}
		return nil, 0, fmt.Errorf("simplex failed: %w", err)
	}

	x := make([]float64, n)
	for j := 0; j < n; j++ {
		x[j] = optZ[j] + lo[j]
	}
	return x, optF + cShift, nil
}
