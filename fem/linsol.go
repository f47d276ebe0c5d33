// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Solver solves the reduced system A_FF x_F = b_F, where F is the free set
// of the space. Vectors are full length; constrained entries of x are left
// exactly zero and constrained entries of b are ignored.
type Solver interface {
	Init(A *Matrix, free *bitset.BitSet) error
	Solve(x, b []float64) error  // uses A
	SolveT(x, b []float64) error // uses transpose(A); for adjoint systems
}

// GetSolver returns a linear solver by name: "cg" (Jacobi-preconditioned
// conjugate gradients; the default) or "chol" (dense Cholesky; reference for
// small systems). Unknown names panic.
func GetSolver(name string, tol float64, maxIt int) Solver {
	switch name {
	case "chol":
		return new(CholSolver)
	case "", "cg":
		if tol <= 0 {
			tol = 1e-10
		}
		if maxIt <= 0 {
			maxIt = 10000
		}
		return &CGSolver{Tol: tol, MaxIt: maxIt}
	}
	chk.Panic("unknown linear solver %q", name)
	return nil
}

// CGSolver implements conjugate gradients on the assembled sparse matrix,
// restricted to the free set by masking. Requires a symmetric positive
// definite reduced matrix.
type CGSolver struct {
	Tol   float64 // relative residual tolerance
	MaxIt int     // iteration cap

	cc   *la.CCMatrix
	diag []float64
	free *bitset.BitSet
	n    int

	// scratch
	r, z, p, q []float64
}

// Init prepares the solver. Fails with ErrSingularSystem if a free diagonal
// entry vanishes (the Jacobi preconditioner would break down).
func (o *CGSolver) Init(A *Matrix, free *bitset.BitSet) error {
	o.cc = A.CC()
	o.diag = A.Diag
	o.free = free
	o.n = A.N()
	for i := 0; i < o.n; i++ {
		if free.Test(uint(i)) && o.diag[i] == 0 {
			return fmt.Errorf("%w: zero diagonal at equation %d", ErrSingularSystem, i)
		}
	}
	o.r = make([]float64, o.n)
	o.z = make([]float64, o.n)
	o.p = make([]float64, o.n)
	o.q = make([]float64, o.n)
	return nil
}

// mask zeroes the constrained entries of v
func (o *CGSolver) mask(v []float64) {
	for i := 0; i < o.n; i++ {
		if !o.free.Test(uint(i)) {
			v[i] = 0
		}
	}
}

// matvec computes y = mask(A x) or mask(Aᵀ x); x must be masked already
func (o *CGSolver) matvec(y, x []float64, trans bool) {
	la.VecFill(y, 0)
	if trans {
		la.SpMatTrVecMulAdd(y, 1, o.cc, x)
	} else {
		la.SpMatVecMulAdd(y, 1, o.cc, x)
	}
	o.mask(y)
}

func (o *CGSolver) run(x, b []float64, trans bool) error {
	la.VecFill(x, 0)
	la.VecCopy(o.r, 1, b)
	o.mask(o.r)
	bnorm := la.VecNorm(o.r)
	if bnorm == 0 {
		return nil
	}
	rho := 0.0
	for it := 0; it < o.MaxIt; it++ {
		if la.VecNorm(o.r) <= o.Tol*bnorm {
			return nil
		}

		// z = M⁻¹ r (Jacobi)
		for i := 0; i < o.n; i++ {
			if o.free.Test(uint(i)) {
				o.z[i] = o.r[i] / o.diag[i]
			} else {
				o.z[i] = 0
			}
		}
		rhoNew := la.VecDot(o.r, o.z)
		if it == 0 {
			la.VecCopy(o.p, 1, o.z)
		} else {
			beta := rhoNew / rho
			for i := 0; i < o.n; i++ {
				o.p[i] = o.z[i] + beta*o.p[i]
			}
		}
		rho = rhoNew

		o.matvec(o.q, o.p, trans)
		den := la.VecDot(o.p, o.q)
		if den <= 0 || math.IsNaN(den) {
			return fmt.Errorf("%w: conjugate-gradient breakdown (pᵀAp = %g)", ErrSingularSystem, den)
		}
		alpha := rho / den
		la.VecAdd(x, alpha, o.p)
		la.VecAdd(o.r, -alpha, o.q)
	}
	if la.VecNorm(o.r) <= o.Tol*bnorm {
		return nil
	}
	return fmt.Errorf("%w: conjugate gradients did not converge in %d iterations", ErrSingularSystem, o.MaxIt)
}

// Solve solves A_FF x_F = b_F
func (o *CGSolver) Solve(x, b []float64) error {
	return o.run(x, b, false)
}

// SolveT solves (A_FF)ᵀ x_F = b_F
func (o *CGSolver) SolveT(x, b []float64) error {
	return o.run(x, b, true)
}

// CholSolver factorizes the reduced matrix densely with gonum's Cholesky.
// Reference solver for small systems; transpose solves go through LU.
type CholSolver struct {
	chol mat.Cholesky
	lu   *mat.LU
	red  *mat.Dense // reduced dense copy, kept for transpose solves
	fidx []int      // reduced index -> full equation
	n    int
}

// Init extracts the free rows/columns into dense storage and factorizes.
// Fails with ErrSingularSystem if the reduced matrix is not positive
// definite.
func (o *CholSolver) Init(A *Matrix, free *bitset.BitSet) error {
	o.n = A.N()
	o.fidx = o.fidx[:0]
	for i := 0; i < o.n; i++ {
		if free.Test(uint(i)) {
			o.fidx = append(o.fidx, i)
		}
	}
	nf := len(o.fidx)
	dense := A.CC().ToDense()
	sym := mat.NewSymDense(nf, nil)
	o.red = mat.NewDense(nf, nf, nil)
	for p, I := range o.fidx {
		for q, J := range o.fidx {
			o.red.Set(p, q, dense[I][J])
			if p <= q {
				sym.SetSym(p, q, dense[I][J])
			}
		}
	}
	o.lu = nil
	if !o.chol.Factorize(sym) {
		return fmt.Errorf("%w: Cholesky factorization failed", ErrSingularSystem)
	}
	return nil
}

func (o *CholSolver) gather(b []float64) *mat.VecDense {
	bf := make([]float64, len(o.fidx))
	for p, I := range o.fidx {
		bf[p] = b[I]
	}
	return mat.NewVecDense(len(o.fidx), bf)
}

func (o *CholSolver) scatter(x []float64, xf *mat.VecDense) {
	la.VecFill(x, 0)
	for p, I := range o.fidx {
		x[I] = xf.AtVec(p)
	}
}

// Solve solves A_FF x_F = b_F through the Cholesky factor
func (o *CholSolver) Solve(x, b []float64) error {
	var xf mat.VecDense
	if err := o.chol.SolveVecTo(&xf, o.gather(b)); err != nil {
		return fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}
	o.scatter(x, &xf)
	return nil
}

// SolveT solves (A_FF)ᵀ x_F = b_F through an LU factor of the reduced matrix
func (o *CholSolver) SolveT(x, b []float64) error {
	if o.lu == nil {
		o.lu = new(mat.LU)
		o.lu.Factorize(o.red)
	}
	var xf mat.VecDense
	if err := o.lu.SolveVecTo(&xf, true, o.gather(b)); err != nil {
		return fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}
	o.scatter(x, &xf)
	return nil
}
