// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frm

import (
	"fmt"

	"github.com/JavierGatica/IPRE-Finite-Element-Method/fem"
)

// StateDerivative assembles the derivative of the functional ∫ e dx with
// respect to the state field, in the direction of each test basis function
// of the state's space, accumulating into b. The adjoint right-hand side of
// a cost functional J is the negative of this vector.
//
// Field leaves bound to state are seeded with δu = v, δ∇u = ∇v; every other
// leaf is held fixed.
func StateDerivative(e Expr, state *fem.GridFunc, b []float64) error {
	spc := state.Spc
	deg := quadDegree(spc, e)
	c := newCtx(spc, e)
	c.StateGF = state
	msh := spc.Msh
	arity := spc.Arity
	for _, cell := range msh.Cells {
		sh := spc.Shape(cell.Id)
		x := msh.CellCoords(cell.Id)
		l2g := spc.LocToGlob(cell.Id)
		c.gatherCell(spc, cell.Id)
		for _, ip := range sh.Ips(deg) {
			if err := sh.CalcAtIp(x, ip, true); err != nil {
				return fmt.Errorf("cell %d: %w", cell.Id, err)
			}
			coef := sh.J * ip.W
			c.S, c.G = sh.S, sh.G
			c.X = sh.IpRealCoordsFromS(x)
			c.HasTest = true
			for i, I := range l2g {
				c.TestS, c.TestC, c.TestG = sh.S[i/arity], i%arity, sh.G[i/arity]
				b[I] += coef * e.eval(c).Deriv()
			}
			c.HasTest = false
		}
	}
	return nil
}

// ShapeDerivative assembles the Eulerian shape derivative of the functional
// ∫ e dx as a linear form over the deformation space dspc (vector valued,
// same mesh), accumulating into b. For the perturbation direction V equal to
// each basis function of dspc, the integrand derivative is evaluated with
// seeds δx = V, δ∇w = −∇w·∇V on field leaves, plus the transport term
// e·div V from the change of measure:
//
//	d/dt ∫_{Ω_t} e dx |_{t=0} = ∫_Ω (δe + e·div V) dx
//
// Boundary terms are not included: traction and Dirichlet boundaries are
// held anchored by the caller.
func ShapeDerivative(dspc *fem.Space, e Expr, b []float64) error {
	deg := quadDegree(dspc, e)
	c := newCtx(dspc, e)
	c.ShapeMode = true
	msh := dspc.Msh
	ndim := msh.Ndim
	arity := dspc.Arity
	if arity != ndim {
		return fmt.Errorf("shape derivatives need a vector deformation space (arity %d != ndim %d)", arity, ndim)
	}
	c.DX = make([]float64, ndim)
	c.GradV = zeros(ndim, ndim)
	for _, cell := range msh.Cells {
		sh := dspc.Shape(cell.Id)
		x := msh.CellCoords(cell.Id)
		l2g := dspc.LocToGlob(cell.Id)
		c.gatherCell(dspc, cell.Id)
		for _, ip := range sh.Ips(deg) {
			if err := sh.CalcAtIp(x, ip, true); err != nil {
				return fmt.Errorf("cell %d: %w", cell.Id, err)
			}
			coef := sh.J * ip.W
			c.S, c.G = sh.S, sh.G
			c.X = sh.IpRealCoordsFromS(x)
			for i, I := range l2g {
				m, j := i/arity, i%arity

				// V = S[m]·e_j, ∇V = e_j ⊗ G[m]
				for k := 0; k < ndim; k++ {
					c.DX[k] = 0
					for l := 0; l < ndim; l++ {
						c.GradV[k][l] = 0
					}
				}
				c.DX[j] = sh.S[m]
				copy(c.GradV[j], sh.G[m])
				c.DivV = sh.G[m][j]

				val := e.eval(c)
				b[I] += coef * (val.Deriv() + val.Value()*c.DivV)
			}
		}
	}
	return nil
}
