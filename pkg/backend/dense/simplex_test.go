package dense

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvenv/solvenv/pkg/solver"
)

const tol = 1e-6

func TestSimplexMaximize(t *testing.T) {
	// max 3x + 5y  s.t.  x <= 4, 2y <= 12, 3x + 2y <= 18, x,y >= 0.
	p := &solver.Problem{
		Name:      "factory",
		Maximize:  true,
		Objective: []float64{3, 5},
	}
	p.AddLeRow([]float64{1, 0}, 4)
	p.AddLeRow([]float64{0, 2}, 12)
	p.AddLeRow([]float64{3, 2}, 18)

	sol, err := solveSimplex(p, 0)
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, sol.Status)
	assert.InDelta(t, 36.0, sol.Objective, tol)
	assert.InDelta(t, 2.0, sol.Columns[0], tol)
	assert.InDelta(t, 6.0, sol.Columns[1], tol)
}

func TestSimplexMinimizeWithGeRows(t *testing.T) {
	// min 2x + 3y  s.t.  x + y >= 10, x,y >= 0.
	p := &solver.Problem{Objective: []float64{2, 3}}
	p.AddGeRow([]float64{1, 1}, 10)

	sol, err := solveSimplex(p, 0)
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, sol.Status)
	assert.InDelta(t, 20.0, sol.Objective, tol)
	assert.InDelta(t, 10.0, sol.Columns[0], tol)
	assert.InDelta(t, 0.0, sol.Columns[1], tol)
}

func TestSimplexEquality(t *testing.T) {
	// min x + 2y  s.t.  x + y = 10, x,y >= 0.
	p := &solver.Problem{Objective: []float64{1, 2}}
	p.AddEqRow([]float64{1, 1}, 10)

	sol, err := solveSimplex(p, 0)
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, sol.Status)
	assert.InDelta(t, 10.0, sol.Objective, tol)
	assert.InDelta(t, 10.0, sol.Columns[0], tol)
}

func TestSimplexRangedRow(t *testing.T) {
	// min x + y  s.t.  2 <= x + y <= 4, x,y >= 0.
	p := &solver.Problem{Objective: []float64{1, 1}}
	p.AddRow(2, []float64{1, 1}, 4)

	sol, err := solveSimplex(p, 0)
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, sol.Status)
	assert.InDelta(t, 2.0, sol.Objective, tol)
}

func TestSimplexInfeasible(t *testing.T) {
	p := &solver.Problem{Objective: []float64{1}}
	p.AddGeRow([]float64{1}, 5)
	p.AddLeRow([]float64{1}, 3)

	sol, err := solveSimplex(p, 0)
	require.NoError(t, err)
	assert.Equal(t, solver.StatusInfeasible, sol.Status)
}

func TestSimplexUnbounded(t *testing.T) {
	p := &solver.Problem{Maximize: true, Objective: []float64{1}}

	sol, err := solveSimplex(p, 0)
	require.NoError(t, err)
	assert.Equal(t, solver.StatusUnbounded, sol.Status)
}

func TestSimplexColumnBounds(t *testing.T) {
	t.Run("lower bound", func(t *testing.T) {
		p := &solver.Problem{
			Objective: []float64{1},
			ColLower:  []float64{-10},
		}
		sol, err := solveSimplex(p, 0)
		require.NoError(t, err)
		require.Equal(t, solver.StatusOptimal, sol.Status)
		assert.InDelta(t, -10.0, sol.Objective, tol)
	})

	t.Run("upper bound", func(t *testing.T) {
		p := &solver.Problem{
			Maximize:  true,
			Objective: []float64{1},
			ColLower:  []float64{2},
			ColUpper:  []float64{5},
		}
		sol, err := solveSimplex(p, 0)
		require.NoError(t, err)
		require.Equal(t, solver.StatusOptimal, sol.Status)
		assert.InDelta(t, 5.0, sol.Objective, tol)
		assert.InDelta(t, 5.0, sol.Columns[0], tol)
	})

	t.Run("upper bound only", func(t *testing.T) {
		p := &solver.Problem{
			Objective: []float64{-1},
			ColLower:  []float64{math.Inf(-1)},
			ColUpper:  []float64{7},
		}
		sol, err := solveSimplex(p, 0)
		require.NoError(t, err)
		require.Equal(t, solver.StatusOptimal, sol.Status)
		assert.InDelta(t, 7.0, sol.Columns[0], tol)
		assert.InDelta(t, -7.0, sol.Objective, tol)
	})

	t.Run("crossed bounds are infeasible", func(t *testing.T) {
		p := &solver.Problem{
			Objective: []float64{1},
			ColLower:  []float64{3},
			ColUpper:  []float64{1},
		}
		sol, err := solveSimplex(p, 0)
		require.NoError(t, err)
		assert.Equal(t, solver.StatusInfeasible, sol.Status)
	})
}

func TestSimplexFreeVariable(t *testing.T) {
	// min x over a free variable with x >= -3 as a row.
	p := &solver.Problem{
		Objective: []float64{1},
		ColLower:  []float64{math.Inf(-1)},
		ColUpper:  []float64{math.Inf(1)},
	}
	p.AddGeRow([]float64{1}, -3)

	sol, err := solveSimplex(p, 0)
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, sol.Status)
	assert.InDelta(t, -3.0, sol.Objective, tol)
	assert.InDelta(t, -3.0, sol.Columns[0], tol)
}

func TestSimplexOffset(t *testing.T) {
	p := &solver.Problem{
		Maximize:  true,
		Objective: []float64{3},
		Offset:    1,
	}
	p.AddLeRow([]float64{1}, 4)

	sol, err := solveSimplex(p, 0)
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, sol.Status)
	assert.InDelta(t, 13.0, sol.Objective, tol)
}

func TestSimplexEmptyProblem(t *testing.T) {
	sol, err := solveSimplex(&solver.Problem{Offset: 2.5}, 0)
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, sol.Status)
	assert.InDelta(t, 2.5, sol.Objective, tol)
}

func TestSimplexDegenerateDoesNotCycle(t *testing.T) {
	// A degenerate vertex with tied ratio tests; Bland's rule must still
	// terminate at the optimum.
	p := &solver.Problem{
		Maximize:  true,
		Objective: []float64{2, 3},
	}
	p.AddLeRow([]float64{1, 1}, 4)
	p.AddLeRow([]float64{1, 2}, 4)
	p.AddLeRow([]float64{2, 1}, 4)

	sol, err := solveSimplex(p, 0)
	require.NoError(t, err)
	require.Equal(t, solver.StatusOptimal, sol.Status)
	assert.InDelta(t, 20.0/3.0, sol.Objective, tol)
}
