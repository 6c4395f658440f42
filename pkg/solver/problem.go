package solver

import "math"

// Status reports the outcome of an optimization.
type Status string

const (
	StatusOptimal        Status = "optimal"
	StatusInfeasible     Status = "infeasible"
	StatusUnbounded      Status = "unbounded"
	StatusIterationLimit Status = "iteration-limit"
)

// Problem is a linear program in row-bound form:
//
//	Minimize (or Maximize): Objective · x + Offset
//	Subject to:             RowLower ≤ A·x ≤ RowUpper
//	And:                    ColLower ≤ x ≤ ColUpper
//
// Rows holds the dense coefficient rows of A. Empty ColLower defaults to
// zero, empty ColUpper to +∞.
type Problem struct {
	// Name identifies the problem in logs and the run store.
	Name string `json:"name"`

	// Maximize flips the objective sense from the minimize default.
	Maximize bool `json:"maximize"`

	// Offset is a constant added to the objective value.
	Offset float64 `json:"offset"`

	// Objective holds the cost coefficient for each variable.
	Objective []float64 `json:"objective"`

	// ColLower are per-variable lower bounds; empty means zero.
	ColLower []float64 `json:"col_lower,omitempty"`

	// ColUpper are per-variable upper bounds; empty means +∞.
	ColUpper []float64 `json:"col_upper,omitempty"`

	// RowLower are per-constraint lower bounds. Use math.Inf(-1) for none.
	RowLower []float64 `json:"row_lower"`

	// RowUpper are per-constraint upper bounds. Use math.Inf(1) for none.
	RowUpper []float64 `json:"row_upper"`

	// Rows are the dense constraint coefficient vectors.
	Rows [][]float64 `json:"rows"`
}

// AddRow appends a constraint lower ≤ coeffs·x ≤ upper.
func (p *Problem) AddRow(lower float64, coeffs []float64, upper float64) {
	p.RowLower = append(p.RowLower, lower)
	p.RowUpper = append(p.RowUpper, upper)
	p.Rows = append(p.Rows, coeffs)
}

// AddEqRow appends an equality constraint coeffs·x = rhs.
func (p *Problem) AddEqRow(coeffs []float64, rhs float64) {
	p.AddRow(rhs, coeffs, rhs)
}

// AddLeRow appends coeffs·x ≤ rhs.
func (p *Problem) AddLeRow(coeffs []float64, rhs float64) {
	p.AddRow(math.Inf(-1), coeffs, rhs)
}

// AddGeRow appends coeffs·x ≥ rhs.
func (p *Problem) AddGeRow(coeffs []float64, rhs float64) {
	p.AddRow(rhs, coeffs, math.Inf(1))
}

// NumVars returns the number of variables in the problem.
func (p *Problem) NumVars() int {
	n := len(p.Objective)
	for _, row := range p.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	if len(p.ColLower) > n {
		n = len(p.ColLower)
	}
	if len(p.ColUpper) > n {
		n = len(p.ColUpper)
	}
	return n
}

// NumRows returns the number of constraints in the problem.
func (p *Problem) NumRows() int {
	return len(p.Rows)
}

// Solution holds the result of a successful optimization. A non-optimal
// Status is still a solution, not an error; errors are reserved for
// backend failures.
type Solution struct {
	// Status is the model status reported by the backend.
	Status Status `json:"status"`

	// Objective is the objective value at the returned point.
	Objective float64 `json:"objective"`

	// Columns are the primal variable values.
	Columns []float64 `json:"columns,omitempty"`

	// Iterations is the simplex iteration count, when the backend reports it.
	Iterations int `json:"iterations,omitempty"`
}
