// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solid implements linear elasticity problems: the clamped beam
// under traction and body loads, and the scalar Poisson problem used for
// verification. Problems go through three ordered stages, each idempotent:
// DefineSpace, AssembleForms, Solve. Changing any parameter requires
// re-running all three stages; no partial invalidation is tracked.
package solid

import (
	"errors"
	"fmt"

	fun "github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/la"

	"github.com/JavierGatica/IPRE-Finite-Element-Method/fem"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/frm"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/inp"
)

// ErrNonconvergentNewton indicates that the state solve failed to converge
// within its iteration budget
var ErrNonconvergentNewton = errors.New("Newton iteration did not converge")

// Beam holds a linear elasticity problem: a body clamped on the fixed
// regions, loaded by a traction on the loaded regions and an optional body
// force. The displacement on the fixed boundary is the zero vector.
type Beam struct {

	// configuration
	Msh      *inp.Mesh
	Order    int
	Lam, Mu  float64   // Lamé parameters
	Fixed    string    // clamped region names, pipe-delimited
	Loaded   string    // traction region names, pipe-delimited
	Traction []float64 // traction direction vector
	LoadFcn  fun.T  // traction magnitude of (t, x); nil means 1
	Body     []float64 // body force vector; nil means none
	BodyFcn  fun.T  // body force magnitude; nil means 1

	// solver settings
	LinSol      string  // "cg" or "chol"
	Tol         float64 // linear solver tolerance
	LinMaxIt    int     // linear solver iteration cap
	NewtonTol   float64 // residual tolerance of the state solve
	NewtonMaxIt int     // iteration budget of the state solve

	// derived state, rebuilt by the stages
	Spc *fem.Space
	K   *fem.Matrix
	B   []float64
	Gfu *fem.GridFunc
}

// NewBeam validates the material and returns a beam problem.
// Physical validity requires μ > 0 and 3λ+2μ > 0.
func NewBeam(msh *inp.Mesh, order int, lam, mu float64, fixed, loaded string) (*Beam, error) {
	if mu <= 0 || 3*lam+2*mu <= 0 {
		return nil, fmt.Errorf("invalid material: mu=%g lam=%g (need mu>0 and 3lam+2mu>0)", mu, lam)
	}
	if fixed == "" {
		return nil, fmt.Errorf("the beam needs at least one fixed region")
	}
	return &Beam{
		Msh:         msh,
		Order:       order,
		Lam:         lam,
		Mu:          mu,
		Fixed:       fixed,
		Loaded:      loaded,
		NewtonTol:   1e-10,
		NewtonMaxIt: 10,
	}, nil
}

// WithMesh returns a copy of the beam over another mesh (same topology),
// with no derived state. The optimization driver uses this to solve on
// deformed geometry without touching the base problem.
func (o *Beam) WithMesh(msh *inp.Mesh) *Beam {
	c := *o
	c.Msh = msh
	c.Spc, c.K, c.B, c.Gfu = nil, nil, nil, nil
	return &c
}

// DefineSpace builds the vector displacement space with the fixed regions
// constrained
func (o *Beam) DefineSpace() (err error) {
	o.Spc, err = fem.NewSpace(o.Msh, o.Order, o.Msh.Ndim, inp.SplitRegions(o.Fixed))
	return
}

// AssembleForms assembles the stiffness matrix a(u,v) = ∫ σ(u):ε(v) and the
// load vector L(v) = ∫ b·v + ∫_Γ T·v from scratch
func (o *Beam) AssembleForms() error {
	if o.Spc == nil {
		if err := o.DefineSpace(); err != nil {
			return err
		}
	}
	n := o.Spc.Ndofs
	nv := len(o.Msh.Cells[0].Verts) * o.Spc.Arity
	o.K = fem.NewMatrix(n, len(o.Msh.Cells)*nv*nv)
	a := frm.DDot(frm.Stress(o.Lam, o.Mu, frm.Trial()), frm.Strain(frm.Test()))
	if err := frm.NewBilinear(o.Spc, a).Assemble(o.K); err != nil {
		return err
	}

	o.B = make([]float64, n)
	if o.Body != nil {
		l := frm.Dot(frm.Mul(o.magnitude(o.BodyFcn), frm.Vec(o.Body...)), frm.Test())
		if err := frm.NewLinear(o.Spc, l).Assemble(o.B); err != nil {
			return err
		}
	}
	if o.Loaded != "" {
		if len(o.Traction) == 0 {
			return fmt.Errorf("loaded region %q needs a traction vector", o.Loaded)
		}
		l := frm.Dot(frm.Mul(o.magnitude(o.LoadFcn), frm.Vec(o.Traction...)), frm.Test())
		form := frm.NewLinear(o.Spc, l).OnBoundary(inp.SplitRegions(o.Loaded)...)
		if err := form.Assemble(o.B); err != nil {
			return err
		}
	}
	return nil
}

func (o *Beam) magnitude(f fun.T) frm.Expr {
	if f == nil {
		return frm.Const(1)
	}
	return frm.Coeff(f)
}

// Solver returns the configured linear solver
func (o *Beam) Solver() fem.Solver {
	return fem.GetSolver(o.LinSol, o.Tol, o.LinMaxIt)
}

// Solve runs a Newton iteration on the residual R(u) = K·u − B restricted
// to the free equations, starting from the clamped state u = 0. For this
// linear problem Newton converges in one step; the iteration budget guards
// against singular or inconsistent systems.
func (o *Beam) Solve() error {
	if o.K == nil {
		if err := o.AssembleForms(); err != nil {
			return err
		}
	}
	n := o.Spc.Ndofs
	o.Gfu = fem.NewGridFunc(o.Spc)
	ug := make([]float64, n)

	r := make([]float64, n)
	for it := 0; it < o.NewtonMaxIt; it++ {

		// residual r = B − K·u on the free set
		la.VecCopy(r, 1, o.B)
		la.SpMatVecMulAdd(r, -1, o.K.CC(), o.Gfu.V)
		rnorm := 0.0
		for i := 0; i < n; i++ {
			if !o.Spc.IsFree(i) {
				r[i] = 0
				continue
			}
			rnorm += r[i] * r[i]
		}
		if rnorm <= o.NewtonTol*o.NewtonTol {
			return nil
		}

		// K Δu = r
		du, err := fem.SolveSystem(o.K, r, ug, o.Spc, o.Solver())
		if err != nil {
			return err
		}
		la.VecAdd(o.Gfu.V, 1, du)
	}
	return fmt.Errorf("%w: after %d iterations", ErrNonconvergentNewton, o.NewtonMaxIt)
}

// StrainEnergy returns the strain energy integrand σ(w):ε(w) as a form
// expression over a displacement field
func (o *Beam) StrainEnergy(w *fem.GridFunc) frm.Expr {
	return frm.DDot(frm.Stress(o.Lam, o.Mu, frm.Field(w)), frm.Strain(frm.Field(w)))
}

// ResidualEnergy returns the state-equation residual weighted by an adjoint
// field, σ(u):ε(p) − b·p, as a form expression. The traction term lives on
// an anchored boundary and is omitted.
func (o *Beam) ResidualEnergy(u, p *fem.GridFunc) frm.Expr {
	r := frm.DDot(frm.Stress(o.Lam, o.Mu, frm.Field(u)), frm.Strain(frm.Field(p)))
	if o.Body != nil {
		load := frm.Dot(frm.Mul(o.magnitude(o.BodyFcn), frm.Vec(o.Body...)), frm.Field(p))
		r = frm.Sub(r, load)
	}
	return r
}

// Energy computes the strain energy J(u) = ∫ σ(u):ε(u) of the current
// solution
func (o *Beam) Energy() (float64, error) {
	if o.Gfu == nil {
		return 0, fmt.Errorf("Energy needs a solved state; run Solve first")
	}
	return frm.Integral(o.Spc, o.StrainEnergy(o.Gfu), 0)
}
