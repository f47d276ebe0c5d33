// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/la"
)

// SolveSystem solves A u = b subject to essential boundary conditions by
// exact elimination: with u_g holding the prescribed values at constrained
// equations (zero elsewhere),
//
//	r = b − A u_g
//	A_FF Δu_F = r_F
//	u = u_g + Δu
//
// so constrained entries of u reproduce u_g bit for bit. The solver must
// have been chosen by the caller; it is initialized here.
func SolveSystem(A *Matrix, b, ug []float64, spc *Space, sol Solver) (u []float64, err error) {
	n := A.N()
	cc := A.CC()

	// r = b - A ug
	r := la.VecClone(b)
	la.SpMatVecMulAdd(r, -1, cc, ug)

	// solve reduced system
	if err = sol.Init(A, spc.FreeDofs()); err != nil {
		return nil, err
	}
	du := make([]float64, n)
	if err = sol.Solve(du, r); err != nil {
		return nil, err
	}

	// u = ug + du
	u = la.VecClone(ug)
	la.VecAdd(u, 1, du)
	return u, nil
}

// SolveSystemT solves Aᵀ w = b with homogeneous essential conditions on the
// same constrained set; used for adjoint systems
func SolveSystemT(A *Matrix, b []float64, spc *Space, sol Solver) (w []float64, err error) {
	if err = sol.Init(A, spc.FreeDofs()); err != nil {
		return nil, err
	}
	w = make([]float64, A.N())
	err = sol.SolveT(w, b)
	return w, err
}
