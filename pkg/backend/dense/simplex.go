package dense

import (
	"math"

	"github.com/solvenv/solvenv/pkg/solver"
)

const (
	defaultIterationLimit = 10000

	// eps is the pivot and reduced-cost tolerance.
	eps = 1e-9

	// feasTol bounds the phase-1 objective for a point to count as feasible.
	feasTol = 1e-7
)

// colTerm maps one simplex column back to an original variable: the
// variable's value accumulates sign*y for the column's value y.
type colTerm struct {
	variable int
	sign     float64
}

// solveSimplex solves the problem with a dense two-phase primal simplex.
// General bounds are reduced to y >= 0 columns: finite lower bounds are
// shifted out, upper-bounded-only variables are negated, and free
// variables are split. Bland's rule keeps the iteration from cycling.
func solveSimplex(p *solver.Problem, maxIter int) (*solver.Solution, error) {
	n := p.NumVars()
	if n == 0 {
		return &solver.Solution{Status: solver.StatusOptimal, Objective: p.Offset}, nil
	}
	if maxIter <= 0 {
		maxIter = defaultIterationLimit
	}

	// Minimize internally; flip the objective for maximization.
	costs := make([]float64, n)
	copy(costs, p.Objective)
	objSign := 1.0
	if p.Maximize {
		objSign = -1.0
		for j := range costs {
			costs[j] = -costs[j]
		}
	}

	colBound := func(bounds []float64, j int, def float64) float64 {
		if j < len(bounds) {
			return bounds[j]
		}
		return def
	}

	// Substitute each variable by nonnegative columns.
	var terms []colTerm
	base := make([]float64, n)
	type boundRow struct {
		col int
		rhs float64
	}
	var boundRows []boundRow
	for j := 0; j < n; j++ {
		lb := colBound(p.ColLower, j, 0)
		ub := colBound(p.ColUpper, j, math.Inf(1))
		if lb > ub {
			return &solver.Solution{Status: solver.StatusInfeasible}, nil
		}
		switch {
		case math.IsInf(lb, -1) && math.IsInf(ub, 1):
			// Free variable: x = y+ - y-.
			terms = append(terms, colTerm{j, 1}, colTerm{j, -1})
		case math.IsInf(lb, -1):
			// Upper bound only: x = ub - y.
			base[j] = ub
			terms = append(terms, colTerm{j, -1})
		default:
			// Shift the finite lower bound out: x = lb + y.
			base[j] = lb
			terms = append(terms, colTerm{j, 1})
			if !math.IsInf(ub, 1) {
				boundRows = append(boundRows, boundRow{col: len(terms) - 1, rhs: ub - lb})
			}
		}
	}
	nStruct := len(terms)

	// Assemble the constraint system over y.
	const (
		rowLE = iota
		rowGE
		rowEQ
	)
	type stdRow struct {
		a    []float64
		rhs  float64
		kind int
	}
	var rows []stdRow
	for i, coeffs := range p.Rows {
		lo := math.Inf(-1)
		hi := math.Inf(1)
		if i < len(p.RowLower) {
			lo = p.RowLower[i]
		}
		if i < len(p.RowUpper) {
			hi = p.RowUpper[i]
		}
		if lo > hi {
			return &solver.Solution{Status: solver.StatusInfeasible}, nil
		}
		ay := make([]float64, nStruct)
		shift := 0.0
		for k, t := range terms {
			if t.variable < len(coeffs) {
				ay[k] = coeffs[t.variable] * t.sign
			}
		}
		for j := 0; j < n && j < len(coeffs); j++ {
			shift += coeffs[j] * base[j]
		}
		if lo == hi {
			rows = append(rows, stdRow{a: ay, rhs: lo - shift, kind: rowEQ})
			continue
		}
		if !math.IsInf(hi, 1) {
			rows = append(rows, stdRow{a: ay, rhs: hi - shift, kind: rowLE})
		}
		if !math.IsInf(lo, -1) {
			aCopy := make([]float64, nStruct)
			copy(aCopy, ay)
			rows = append(rows, stdRow{a: aCopy, rhs: lo - shift, kind: rowGE})
		}
	}
	for _, br := range boundRows {
		if br.rhs < 0 {
			return &solver.Solution{Status: solver.StatusInfeasible}, nil
		}
		a := make([]float64, nStruct)
		a[br.col] = 1
		rows = append(rows, stdRow{a: a, rhs: br.rhs, kind: rowLE})
	}

	// Normalize right-hand sides to be nonnegative.
	for i := range rows {
		if rows[i].rhs < 0 {
			for k := range rows[i].a {
				rows[i].a[k] = -rows[i].a[k]
			}
			rows[i].rhs = -rows[i].rhs
			switch rows[i].kind {
			case rowLE:
				rows[i].kind = rowGE
			case rowGE:
				rows[i].kind = rowLE
			}
		}
	}

	// Count slack and artificial columns.
	nSlack := 0
	nArt := 0
	for _, r := range rows {
		switch r.kind {
		case rowLE:
			nSlack++
		case rowGE:
			nSlack++
			nArt++
		case rowEQ:
			nArt++
		}
	}
	m := len(rows)
	artStart := nStruct + nSlack
	width := artStart + nArt + 1
	rhsIdx := width - 1

	t := &tableau{
		rows:  make([][]float64, m),
		obj:   make([]float64, width),
		basis: make([]int, m),
		width: width,
	}
	slackCol := nStruct
	artCol := artStart
	for i, r := range rows {
		row := make([]float64, width)
		copy(row, r.a)
		row[rhsIdx] = r.rhs
		switch r.kind {
		case rowLE:
			row[slackCol] = 1
			t.basis[i] = slackCol
			slackCol++
		case rowGE:
			row[slackCol] = -1
			slackCol++
			row[artCol] = 1
			t.basis[i] = artCol
			artCol++
		case rowEQ:
			row[artCol] = 1
			t.basis[i] = artCol
			artCol++
		}
		t.rows[i] = row
	}

	iterations := 0

	// Phase 1: drive the artificials to zero.
	if nArt > 0 {
		phase1 := make([]float64, width-1)
		for c := artStart; c < artStart+nArt; c++ {
			phase1[c] = 1
		}
		t.setObjective(phase1)
		switch t.iterate(artStart, maxIter, &iterations) {
		case iterLimit:
			return &solver.Solution{Status: solver.StatusIterationLimit, Iterations: iterations}, nil
		}
		if -t.obj[rhsIdx] > feasTol {
			return &solver.Solution{Status: solver.StatusInfeasible, Iterations: iterations}, nil
		}
		// Pivot zero-valued artificials out of the basis where possible.
		for i := range t.rows {
			if t.basis[i] < artStart {
				continue
			}
			for j := 0; j < artStart; j++ {
				if math.Abs(t.rows[i][j]) > eps {
					t.pivot(i, j)
					iterations++
					break
				}
			}
		}
	}

	// Phase 2: the original objective over structural columns.
	phase2 := make([]float64, width-1)
	constTerm := 0.0
	for k, term := range terms {
		phase2[k] = costs[term.variable] * term.sign
	}
	for j := 0; j < n; j++ {
		constTerm += costs[j] * base[j]
	}
	t.setObjective(phase2)
	status := solver.StatusOptimal
	switch t.iterate(artStart, maxIter, &iterations) {
	case unbounded:
		return &solver.Solution{Status: solver.StatusUnbounded, Iterations: iterations}, nil
	case iterLimit:
		status = solver.StatusIterationLimit
	}

	// Recover the original variable values.
	y := make([]float64, artStart)
	for i, b := range t.basis {
		if b < artStart {
			y[b] = t.rows[i][rhsIdx]
		}
	}
	x := make([]float64, n)
	copy(x, base)
	for k, term := range terms {
		x[term.variable] += term.sign * y[k]
	}
	minValue := -t.obj[rhsIdx] + constTerm
	return &solver.Solution{
		Status:     status,
		Objective:  objSign*minValue + p.Offset,
		Columns:    x,
		Iterations: iterations,
	}, nil
}

type iterateResult int

const (
	optimal iterateResult = iota
	unbounded
	iterLimit
)

// tableau is a dense simplex tableau with the right-hand side stored in
// the last column and the objective row kept separately.
type tableau struct {
	rows  [][]float64
	obj   []float64
	basis []int
	width int
}

// setObjective installs reduced costs for the cost vector c (one entry
// per non-rhs column) under the current basis.
func (t *tableau) setObjective(c []float64) {
	for j := range t.obj {
		t.obj[j] = 0
	}
	copy(t.obj, c)
	for i, b := range t.basis {
		cb := c[b]
		if cb == 0 {
			continue
		}
		for j := 0; j < t.width; j++ {
			t.obj[j] -= cb * t.rows[i][j]
		}
	}
}

// iterate runs simplex pivots until optimality, unboundedness, or the
// iteration budget runs out. Entering columns are restricted to indices
// below enterLimit, which keeps artificials out of the basis in phase 2.
// Bland's rule on both the entering and leaving choice prevents cycling.
func (t *tableau) iterate(enterLimit, maxIter int, iterations *int) iterateResult {
	rhsIdx := t.width - 1
	for {
		if *iterations >= maxIter {
			return iterLimit
		}
		enter := -1
		for j := 0; j < enterLimit; j++ {
			if t.obj[j] < -eps {
				enter = j
				break
			}
		}
		if enter < 0 {
			return optimal
		}
		leave := -1
		best := math.Inf(1)
		for i := range t.rows {
			a := t.rows[i][enter]
			if a <= eps {
				continue
			}
			ratio := t.rows[i][rhsIdx] / a
			if ratio < best-eps {
				best = ratio
				leave = i
			} else if ratio < best+eps && leave >= 0 && t.basis[i] < t.basis[leave] {
				leave = i
			}
		}
		if leave < 0 {
			return unbounded
		}
		t.pivot(leave, enter)
		*iterations++
	}
}

// pivot makes column c basic in row r.
func (t *tableau) pivot(r, c int) {
	pr := t.rows[r]
	inv := 1 / pr[c]
	for j := range pr {
		pr[j] *= inv
	}
	pr[c] = 1
	for i := range t.rows {
		if i == r {
			continue
		}
		f := t.rows[i][c]
		if f == 0 {
			continue
		}
		row := t.rows[i]
		for j := range row {
			row[j] -= f * pr[j]
		}
		row[c] = 0
	}
	if f := t.obj[c]; f != 0 {
		for j := range t.obj {
			t.obj[j] -= f * pr[j]
		}
		t.obj[c] = 0
	}
	t.basis[r] = c
}
