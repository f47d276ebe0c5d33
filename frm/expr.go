// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package frm implements symbolic bilinear and linear forms over function
// spaces: a tagged expression tree of trial/test functions, known fields and
// coefficients, evaluated at integration points by an interpreter that
// carries a directional derivative along with every value. The derivative
// seeds select the differentiation mode: with respect to the state field
// (adjoint right-hand sides) or with respect to a domain perturbation
// (shape derivatives).
package frm

import (
	"github.com/cpmech/gosl/chk"
	fun "github.com/cpmech/gosl/fun/dbf"

	"github.com/JavierGatica/IPRE-Finite-Element-Method/fem"
)

// Expr is a node of a form expression tree
type Expr interface {
	eval(c *Ctx) Val
	children() []Expr
}

// Val holds a scalar, vector or matrix value together with its directional
// derivative (dual part)
type Val struct {
	rank  int
	s, ds float64
	v, dv []float64
	m, dm [][]float64
}

// Value returns the scalar value; panics unless the value is rank 0
func (o Val) Value() float64 {
	if o.rank != 0 {
		chk.Panic("form expression does not evaluate to a scalar (rank = %d)", o.rank)
	}
	return o.s
}

// Deriv returns the scalar directional derivative
func (o Val) Deriv() float64 {
	if o.rank != 0 {
		chk.Panic("form expression does not evaluate to a scalar (rank = %d)", o.rank)
	}
	return o.ds
}

// Ctx holds the evaluation state at one integration point: interpolation
// data, the bound trial/test basis function, and the derivative seeds
type Ctx struct {
	Ndim  int
	Arity int

	// integration point
	X   []float64 // real coordinates
	Nrm []float64 // unit outward normal (boundary integrands only)

	// interpolation data of the current cell
	S []float64   // [nverts] shape values
	G [][]float64 // [nverts][ndim] shape gradients (volume integrands only)

	// bound trial basis function: value TrialS at component TrialC
	HasTrial bool
	TrialS   float64
	TrialC   int
	TrialG   []float64

	// bound test basis function
	HasTest bool
	TestS   float64
	TestC   int
	TestG   []float64

	// nodal values of field leaves, gathered per cell
	cellVals map[*fem.GridFunc][]float64

	// state-derivative seed: field leaves bound to StateGF are perturbed by
	// the test basis function (δu = v, δ∇u = ∇v)
	StateGF *fem.GridFunc

	// shape-derivative seeds: δx = V, δ∇w = −∇w·∇V for field leaves; the
	// measure term f·div V is added by the assembler
	ShapeMode bool
	DX        []float64
	GradV     [][]float64
	DivV      float64
}

// leaves //////////////////////////////////////////////////////////////////

type trialExpr struct{}
type testExpr struct{}
type fieldExpr struct{ gf *fem.GridFunc }
type coeffExpr struct {
	f    fun.T
	grad func(x []float64) []float64
}
type constExpr struct{ c float64 }
type vecExpr struct{ v []float64 }
type xExpr struct{}
type normalExpr struct{}
type identExpr struct{}

// Trial returns the trial function of the space being assembled
func Trial() Expr { return trialExpr{} }

// Test returns the test function of the space being assembled
func Test() Expr { return testExpr{} }

// Field returns a known grid function, interpolated at integration points.
// Its space must live on the same mesh as the space being assembled.
func Field(gf *fem.GridFunc) Expr { return &fieldExpr{gf} }

// Coeff returns a scalar coefficient function of position. An optional
// spatial gradient callback enables Grad(Coeff(...)) and the coefficient
// transport term of shape derivatives; without it the coefficient is
// treated as piecewise constant.
func Coeff(f fun.T, grad ...func(x []float64) []float64) Expr {
	o := coeffExpr{f: f}
	if len(grad) > 0 {
		o.grad = grad[0]
	}
	return o
}

// Const returns a scalar constant
func Const(c float64) Expr { return constExpr{c} }

// Vec returns a constant vector
func Vec(v ...float64) Expr { return vecExpr{v} }

// X returns the position vector of the integration point
func X() Expr { return xExpr{} }

// Normal returns the unit outward normal; boundary integrands only
func Normal() Expr { return normalExpr{} }

// Identity returns the ndim-by-ndim identity matrix
func Identity() Expr { return identExpr{} }

type fnExpr struct{ f func(x []float64) float64 }

// Fn returns a scalar function of position given by a callback. Unlike
// Coeff there is no gradient option; Fn values are treated as piecewise
// constant by shape derivatives.
func Fn(f func(x []float64) float64) Expr { return fnExpr{f} }

func (o fnExpr) eval(c *Ctx) Val {
	return Val{rank: 0, s: o.f(c.X)}
}

func (o fnExpr) children() []Expr { return nil }

type compExpr struct {
	e Expr
	i int
}

// Comp returns component i of a vector expression as a scalar
func Comp(e Expr, i int) Expr { return compExpr{e, i} }

func (o compExpr) eval(c *Ctx) Val {
	a := o.e.eval(c)
	if a.rank != 1 || o.i >= len(a.v) {
		chk.Panic("Comp needs a vector expression with at least %d components", o.i+1)
	}
	return Val{rank: 0, s: a.v[o.i], ds: a.dv[o.i]}
}

func (o compExpr) children() []Expr { return []Expr{o.e} }

func (o trialExpr) eval(c *Ctx) Val {
	if c.ShapeMode {
		chk.Panic("trial functions cannot appear in shape-derivative integrands")
	}
	if !c.HasTrial {
		chk.Panic("trial function appears in an integrand with no bound trial basis")
	}
	v := make([]float64, c.Arity)
	v[c.TrialC] = c.TrialS
	return Val{rank: 1, v: v, dv: make([]float64, c.Arity)}
}

func (o testExpr) eval(c *Ctx) Val {
	if c.ShapeMode {
		chk.Panic("test functions cannot appear in shape-derivative integrands")
	}
	if !c.HasTest {
		chk.Panic("test function appears in an integrand with no bound test basis")
	}
	v := make([]float64, c.Arity)
	v[c.TestC] = c.TestS
	return Val{rank: 1, v: v, dv: make([]float64, c.Arity)}
}

func (o *fieldExpr) eval(c *Ctx) Val {
	vals, ok := c.cellVals[o.gf]
	if !ok {
		chk.Panic("field has no gathered cell values; fields are not allowed in boundary integrands")
	}
	a := o.gf.Spc.Arity
	v := make([]float64, a)
	dv := make([]float64, a)
	for m := range c.S {
		for i := 0; i < a; i++ {
			v[i] += c.S[m] * vals[m*a+i]
		}
	}
	if o.gf == c.StateGF {
		// δu = v (test basis of the state space)
		dv[c.TestC] = c.TestS
	}
	return Val{rank: 1, v: v, dv: dv}
}

func (o coeffExpr) eval(c *Ctx) Val {
	v := Val{rank: 0, s: o.f.F(0, c.X)}
	if c.ShapeMode && o.grad != nil {
		// δf = ∇f·V
		g := o.grad(c.X)
		for j := range g {
			v.ds += g[j] * c.DX[j]
		}
	}
	return v
}

func (o constExpr) eval(c *Ctx) Val {
	return Val{rank: 0, s: o.c}
}

func (o vecExpr) eval(c *Ctx) Val {
	return Val{rank: 1, v: o.v, dv: make([]float64, len(o.v))}
}

func (o xExpr) eval(c *Ctx) Val {
	dv := make([]float64, c.Ndim)
	if c.ShapeMode {
		copy(dv, c.DX)
	}
	return Val{rank: 1, v: c.X, dv: dv}
}

func (o normalExpr) eval(c *Ctx) Val {
	if c.Nrm == nil {
		chk.Panic("the normal vector is only defined in boundary integrands")
	}
	return Val{rank: 1, v: c.Nrm, dv: make([]float64, len(c.Nrm))}
}

func (o identExpr) eval(c *Ctx) Val {
	m := zeros(c.Ndim, c.Ndim)
	for i := 0; i < c.Ndim; i++ {
		m[i][i] = 1
	}
	return Val{rank: 2, m: m, dm: zeros(c.Ndim, c.Ndim)}
}

func (o trialExpr) children() []Expr  { return nil }
func (o testExpr) children() []Expr   { return nil }
func (o *fieldExpr) children() []Expr { return nil }
func (o coeffExpr) children() []Expr  { return nil }
func (o constExpr) children() []Expr  { return nil }
func (o vecExpr) children() []Expr    { return nil }
func (o xExpr) children() []Expr      { return nil }
func (o normalExpr) children() []Expr { return nil }
func (o identExpr) children() []Expr  { return nil }

// operations //////////////////////////////////////////////////////////////

type gradExpr struct{ e Expr }
type symExpr struct{ e Expr }
type trExpr struct{ e Expr }
type negExpr struct{ e Expr }
type scaleExpr struct {
	c float64
	e Expr
}
type addExpr struct{ a, b Expr }
type subExpr struct{ a, b Expr }
type mulExpr struct{ a, b Expr }
type dotExpr struct{ a, b Expr }
type ddotExpr struct{ a, b Expr }

// Grad returns the spatial gradient of a trial, test or field expression,
// as an arity-by-ndim matrix
func Grad(e Expr) Expr { return gradExpr{e} }

// Sym returns the symmetric part ½(M + Mᵀ) of a square matrix expression
func Sym(e Expr) Expr { return symExpr{e} }

// Tr returns the trace of a square matrix expression
func Tr(e Expr) Expr { return trExpr{e} }

// Div returns the divergence tr(∇e) of a vector expression
func Div(e Expr) Expr { return trExpr{gradExpr{e}} }

// Neg returns −e
func Neg(e Expr) Expr { return negExpr{e} }

// Scale returns c·e
func Scale(c float64, e Expr) Expr { return scaleExpr{c, e} }

// Add returns a + b
func Add(a, b Expr) Expr { return addExpr{a, b} }

// Sub returns a − b
func Sub(a, b Expr) Expr { return subExpr{a, b} }

// Mul multiplies: scalar with anything, matrix with matrix, matrix with
// vector
func Mul(a, b Expr) Expr { return mulExpr{a, b} }

// Dot returns the inner product of two vector expressions
func Dot(a, b Expr) Expr { return dotExpr{a, b} }

// DDot returns the double contraction A:B of two matrix expressions
func DDot(a, b Expr) Expr { return ddotExpr{a, b} }

// Strain returns the symmetric gradient ε(e) = ½(∇e + ∇eᵀ)
func Strain(e Expr) Expr { return Sym(Grad(e)) }

// Stress returns the isotropic linear-elastic stress
// σ(e) = λ·tr(ε(e))·I + 2μ·ε(e)
func Stress(lam, mu float64, e Expr) Expr {
	eps := Strain(e)
	return Add(Scale(lam, Mul(Tr(eps), Identity())), Scale(2*mu, eps))
}

func (o gradExpr) eval(c *Ctx) Val {
	switch t := o.e.(type) {
	case trialExpr:
		if c.ShapeMode {
			chk.Panic("trial functions cannot appear in shape-derivative integrands")
		}
		if !c.HasTrial || c.TrialG == nil {
			chk.Panic("gradient of trial function is unavailable here")
		}
		m := zeros(c.Arity, c.Ndim)
		copy(m[c.TrialC], c.TrialG)
		return Val{rank: 2, m: m, dm: zeros(c.Arity, c.Ndim)}
	case testExpr:
		if c.ShapeMode {
			chk.Panic("test functions cannot appear in shape-derivative integrands")
		}
		if !c.HasTest || c.TestG == nil {
			chk.Panic("gradient of test function is unavailable here")
		}
		m := zeros(c.Arity, c.Ndim)
		copy(m[c.TestC], c.TestG)
		return Val{rank: 2, m: m, dm: zeros(c.Arity, c.Ndim)}
	case *fieldExpr:
		vals, ok := c.cellVals[t.gf]
		if !ok || c.G == nil {
			chk.Panic("field gradient is unavailable in boundary integrands")
		}
		a := t.gf.Spc.Arity
		m := zeros(a, c.Ndim)
		dm := zeros(a, c.Ndim)
		for n := range c.S {
			for i := 0; i < a; i++ {
				for j := 0; j < c.Ndim; j++ {
					m[i][j] += c.G[n][j] * vals[n*a+i]
				}
			}
		}
		if c.ShapeMode {
			// δ∇w = −∇w·∇V
			for i := 0; i < a; i++ {
				for j := 0; j < c.Ndim; j++ {
					for k := 0; k < c.Ndim; k++ {
						dm[i][j] -= m[i][k] * c.GradV[k][j]
					}
				}
			}
		}
		if t.gf == c.StateGF {
			// δ∇u = ∇v
			for j := 0; j < c.Ndim; j++ {
				dm[c.TestC][j] += c.TestG[j]
			}
		}
		return Val{rank: 2, m: m, dm: dm}
	case coeffExpr:
		if t.grad == nil {
			chk.Panic("gradient of a coefficient needs the gradient callback")
		}
		// second derivatives are not tracked
		g := t.grad(c.X)
		return Val{rank: 1, v: g, dv: make([]float64, len(g))}
	}
	chk.Panic("Grad is only defined for trial, test, field and coefficient expressions")
	return Val{}
}

func (o symExpr) eval(c *Ctx) Val {
	a := o.e.eval(c)
	if a.rank != 2 || len(a.m) != len(a.m[0]) {
		chk.Panic("Sym needs a square matrix expression")
	}
	n := len(a.m)
	m, dm := zeros(n, n), zeros(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m[i][j] = 0.5 * (a.m[i][j] + a.m[j][i])
			dm[i][j] = 0.5 * (a.dm[i][j] + a.dm[j][i])
		}
	}
	return Val{rank: 2, m: m, dm: dm}
}

func (o trExpr) eval(c *Ctx) Val {
	a := o.e.eval(c)
	if a.rank != 2 || len(a.m) != len(a.m[0]) {
		chk.Panic("Tr needs a square matrix expression")
	}
	r := Val{rank: 0}
	for i := range a.m {
		r.s += a.m[i][i]
		r.ds += a.dm[i][i]
	}
	return r
}

func (o negExpr) eval(c *Ctx) Val {
	return vscale(-1, o.e.eval(c))
}

func (o scaleExpr) eval(c *Ctx) Val {
	return vscale(o.c, o.e.eval(c))
}

func (o addExpr) eval(c *Ctx) Val {
	return vaxpy(1, o.a.eval(c), o.b.eval(c))
}

func (o subExpr) eval(c *Ctx) Val {
	return vaxpy(-1, o.a.eval(c), o.b.eval(c))
}

func (o mulExpr) eval(c *Ctx) Val {
	a, b := o.a.eval(c), o.b.eval(c)
	switch {
	case a.rank == 0:
		return dualScale(a.s, a.ds, b)
	case b.rank == 0:
		return dualScale(b.s, b.ds, a)
	case a.rank == 2 && b.rank == 2:
		n, k, p := len(a.m), len(b.m), len(b.m[0])
		if len(a.m[0]) != k {
			chk.Panic("Mul: matrix dimensions do not match")
		}
		m, dm := zeros(n, p), zeros(n, p)
		for i := 0; i < n; i++ {
			for j := 0; j < p; j++ {
				for q := 0; q < k; q++ {
					m[i][j] += a.m[i][q] * b.m[q][j]
					dm[i][j] += a.dm[i][q]*b.m[q][j] + a.m[i][q]*b.dm[q][j]
				}
			}
		}
		return Val{rank: 2, m: m, dm: dm}
	case a.rank == 2 && b.rank == 1:
		n, k := len(a.m), len(b.v)
		if len(a.m[0]) != k {
			chk.Panic("Mul: matrix and vector dimensions do not match")
		}
		v, dv := make([]float64, n), make([]float64, n)
		for i := 0; i < n; i++ {
			for q := 0; q < k; q++ {
				v[i] += a.m[i][q] * b.v[q]
				dv[i] += a.dm[i][q]*b.v[q] + a.m[i][q]*b.dv[q]
			}
		}
		return Val{rank: 1, v: v, dv: dv}
	}
	chk.Panic("Mul: unsupported ranks %d and %d", a.rank, b.rank)
	return Val{}
}

func (o dotExpr) eval(c *Ctx) Val {
	a, b := o.a.eval(c), o.b.eval(c)
	if a.rank != 1 || b.rank != 1 || len(a.v) != len(b.v) {
		chk.Panic("Dot needs two vector expressions of equal size")
	}
	r := Val{rank: 0}
	for i := range a.v {
		r.s += a.v[i] * b.v[i]
		r.ds += a.dv[i]*b.v[i] + a.v[i]*b.dv[i]
	}
	return r
}

func (o ddotExpr) eval(c *Ctx) Val {
	a, b := o.a.eval(c), o.b.eval(c)
	if a.rank != 2 || b.rank != 2 || len(a.m) != len(b.m) || len(a.m[0]) != len(b.m[0]) {
		chk.Panic("DDot needs two matrix expressions of equal shape")
	}
	r := Val{rank: 0}
	for i := range a.m {
		for j := range a.m[i] {
			r.s += a.m[i][j] * b.m[i][j]
			r.ds += a.dm[i][j]*b.m[i][j] + a.m[i][j]*b.dm[i][j]
		}
	}
	return r
}

func (o gradExpr) children() []Expr  { return []Expr{o.e} }
func (o symExpr) children() []Expr   { return []Expr{o.e} }
func (o trExpr) children() []Expr    { return []Expr{o.e} }
func (o negExpr) children() []Expr   { return []Expr{o.e} }
func (o scaleExpr) children() []Expr { return []Expr{o.e} }
func (o addExpr) children() []Expr   { return []Expr{o.a, o.b} }
func (o subExpr) children() []Expr   { return []Expr{o.a, o.b} }
func (o mulExpr) children() []Expr   { return []Expr{o.a, o.b} }
func (o dotExpr) children() []Expr   { return []Expr{o.a, o.b} }
func (o ddotExpr) children() []Expr  { return []Expr{o.a, o.b} }

// value helpers ///////////////////////////////////////////////////////////

func zeros(n, m int) [][]float64 {
	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, m)
	}
	return a
}

// vscale returns c·a (value and dual)
func vscale(c float64, a Val) Val {
	r := Val{rank: a.rank}
	switch a.rank {
	case 0:
		r.s, r.ds = c*a.s, c*a.ds
	case 1:
		r.v, r.dv = make([]float64, len(a.v)), make([]float64, len(a.v))
		for i := range a.v {
			r.v[i], r.dv[i] = c*a.v[i], c*a.dv[i]
		}
	case 2:
		r.m, r.dm = zeros(len(a.m), len(a.m[0])), zeros(len(a.m), len(a.m[0]))
		for i := range a.m {
			for j := range a.m[i] {
				r.m[i][j], r.dm[i][j] = c*a.m[i][j], c*a.dm[i][j]
			}
		}
	}
	return r
}

// dualScale returns s·b with the product rule applied to the dual part:
// value = s·b, dual = ds·b + s·ḃ
func dualScale(s, ds float64, b Val) Val {
	r := Val{rank: b.rank}
	switch b.rank {
	case 0:
		r.s = s * b.s
		r.ds = ds*b.s + s*b.ds
	case 1:
		r.v, r.dv = make([]float64, len(b.v)), make([]float64, len(b.v))
		for i := range b.v {
			r.v[i] = s * b.v[i]
			r.dv[i] = ds*b.v[i] + s*b.dv[i]
		}
	case 2:
		r.m, r.dm = zeros(len(b.m), len(b.m[0])), zeros(len(b.m), len(b.m[0]))
		for i := range b.m {
			for j := range b.m[i] {
				r.m[i][j] = s * b.m[i][j]
				r.dm[i][j] = ds*b.m[i][j] + s*b.dm[i][j]
			}
		}
	}
	return r
}

// vaxpy returns a + c·b; a and b must have the same rank and shape
func vaxpy(c float64, a, b Val) Val {
	if a.rank != b.rank {
		chk.Panic("cannot add expressions of ranks %d and %d", a.rank, b.rank)
	}
	r := vscale(1, a)
	raxpy(&r, c, b)
	return r
}

// raxpy accumulates r += c·b in place, including the dual part
func raxpy(r *Val, c float64, b Val) {
	if c == 0 {
		return
	}
	switch r.rank {
	case 0:
		r.s += c * b.s
		r.ds += c * b.ds
	case 1:
		for i := range r.v {
			r.v[i] += c * b.v[i]
			r.dv[i] += c * b.dv[i]
		}
	case 2:
		for i := range r.m {
			for j := range r.m[i] {
				r.m[i][j] += c * b.m[i][j]
				r.dm[i][j] += c * b.dm[i][j]
			}
		}
	}
}
