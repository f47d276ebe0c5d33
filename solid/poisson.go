// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solid

import (
	"github.com/JavierGatica/IPRE-Finite-Element-Method/fem"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/frm"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/inp"
)

// Poisson holds the scalar diffusion problem −Δu = f with zero Dirichlet
// data on the named regions. Same staged lifecycle as Beam.
type Poisson struct {

	// configuration
	Msh       *inp.Mesh
	Order     int
	Source    func(x []float64) float64 // f; nil means 1
	Dirichlet string                    // constrained region names, pipe-delimited

	// solver settings
	LinSol   string
	Tol      float64
	LinMaxIt int

	// derived state
	Spc *fem.Space
	K   *fem.Matrix
	B   []float64
	Gfu *fem.GridFunc
}

// DefineSpace builds the scalar space with the Dirichlet regions constrained
func (o *Poisson) DefineSpace() (err error) {
	o.Spc, err = fem.NewSpace(o.Msh, o.Order, 1, inp.SplitRegions(o.Dirichlet))
	return
}

// AssembleForms assembles ∫ ∇u·∇v and ∫ f v from scratch
func (o *Poisson) AssembleForms() error {
	if o.Spc == nil {
		if err := o.DefineSpace(); err != nil {
			return err
		}
	}
	n := o.Spc.Ndofs
	nv := len(o.Msh.Cells[0].Verts)
	o.K = fem.NewMatrix(n, len(o.Msh.Cells)*nv*nv)
	a := frm.DDot(frm.Grad(frm.Trial()), frm.Grad(frm.Test()))
	if err := frm.NewBilinear(o.Spc, a).Assemble(o.K); err != nil {
		return err
	}
	f := o.Source
	if f == nil {
		f = func(x []float64) float64 { return 1 }
	}
	o.B = make([]float64, n)
	return frm.NewLinear(o.Spc, frm.Mul(frm.Fn(f), frm.Comp(frm.Test(), 0))).Assemble(o.B)
}

// Solve computes the solution field with zero Dirichlet data
func (o *Poisson) Solve() error {
	if o.K == nil {
		if err := o.AssembleForms(); err != nil {
			return err
		}
	}
	ug := make([]float64, o.Spc.Ndofs)
	u, err := fem.SolveSystem(o.K, o.B, ug, o.Spc, fem.GetSolver(o.LinSol, o.Tol, o.LinMaxIt))
	if err != nil {
		return err
	}
	o.Gfu = fem.NewGridFunc(o.Spc)
	copy(o.Gfu.V, u)
	return nil
}
