package solver

import (
	"context"
	"math"
	"time"
)

// Options bounds one solve invocation.
type Options struct {
	// TimeLimit caps wall-clock time. Zero means no limit.
	TimeLimit time.Duration
	// MaxNodes caps explored branch-and-bound nodes. Zero applies a default.
	MaxNodes int
}

const (
	defaultMaxNodes = 200000
	intTol          = 1e-6
	pruneTol        = 1e-9
)

type node struct {
	lo []float64
	hi []float64
}

// Solve runs depth-first branch and bound over the LP relaxation and blocks
// until a terminal status: the incumbent is proven optimal, the model is
// proven infeasible, or the time/node budget runs out (returning the best
// incumbent as StatusFeasible, or StatusUnknown without one).
func (m *Model) Solve(ctx context.Context, opts Options) (*Solution, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	var deadline time.Time
	if opts.TimeLimit > 0 {
		deadline = time.Now().Add(opts.TimeLimit)
	}
	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = defaultMaxNodes
	}

	stack := []node{{lo: cloneBounds(m.lo), hi: cloneBounds(m.hi)}}
	var incumbent []float64
	bestObj := math.Inf(1)
	explored := 0
	exhausted := true

	for len(stack) > 0 {
		if ctx.Err() != nil || explored >= maxNodes ||
			(!deadline.IsZero() && time.Now().After(deadline)) {
			exhausted = false
			break
		}
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		explored++

		x, obj, err := m.solveRelaxation(cur.lo, cur.hi)
		if err == errNodeInfeasible {
			continue
		}
		if err != nil {
			return nil, err
		}
		if obj >= bestObj-pruneTol {
			continue
		}

		j := m.mostFractional(x)
		if j < 0 {
			incumbent = m.roundIntegers(x)
			bestObj = m.evalObj(incumbent)
			continue
		}

		frac := x[j]
		down := node{lo: cloneBounds(cur.lo), hi: cloneBounds(cur.hi)}
		down.hi[j] = math.Floor(frac)
		up := node{lo: cloneBounds(cur.lo), hi: cloneBounds(cur.hi)}
		up.lo[j] = math.Ceil(frac)
		// Explore the side nearer the fractional value first.
		if frac-math.Floor(frac) >= 0.5 {
			stack = append(stack, down, up)
		} else {
			stack = append(stack, up, down)
		}
	}

	switch {
	case incumbent != nil && exhausted:
		return &Solution{Status: StatusOptimal, Objective: bestObj, values: incumbent}, nil
	case incumbent != nil:
		return &Solution{Status: StatusFeasible, Objective: bestObj, values: incumbent}, nil
	case exhausted:
		return &Solution{Status: StatusInfeasible}, nil
	default:
		return &Solution{Status: StatusUnknown}, nil
	}
}

// mostFractional picks the integer variable farthest from integrality, or -1
// when the relaxation is already integral.
func (m *Model) mostFractional(x []float64) int {
	best, bestDist := -1, intTol
	for j, isInt := range m.integer {
		if !isInt {
			continue
		}
		frac := x[j] - math.Floor(x[j])
		dist := math.Min(frac, 1-frac)
		if dist > bestDist {
			best, bestDist = j, dist
		}
	}
	return best
}

func (m *Model) roundIntegers(x []float64) []float64 {
	out := cloneBounds(x)
	for j, isInt := range m.integer {
		if isInt {
			out[j] = math.Round(out[j])
		}
	}
	return out
}

func cloneBounds(b []float64) []float64 {
	out := make([]float64, len(b))
	copy(out, b)
	return out
}
