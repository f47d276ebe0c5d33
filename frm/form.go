// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frm

import (
	"fmt"

	"github.com/cpmech/gosl/la"

	"github.com/JavierGatica/IPRE-Finite-Element-Method/fem"
)

// collectFields walks the tree and gathers the distinct field leaves
func collectFields(e Expr, out map[*fem.GridFunc]bool) {
	if f, ok := e.(*fieldExpr); ok {
		out[f.gf] = true
	}
	for _, c := range e.children() {
		collectFields(c, out)
	}
}

// hasCoeff tells whether the tree contains a coefficient or callback leaf
func hasCoeff(e Expr) bool {
	switch e.(type) {
	case coeffExpr, fnExpr:
		return true
	}
	for _, c := range e.children() {
		if hasCoeff(c) {
			return true
		}
	}
	return false
}

// quadDegree returns the default quadrature degree for a form over a space:
// twice the polynomial order, plus two when coefficient functions appear in
// the integrand. Requests above the largest tabulated rule get the largest
// one (degree 9 on lines/quads/hexes, 5 on triangles, 4 on tets).
func quadDegree(spc *fem.Space, e Expr) int {
	deg := 2 * spc.Order
	if hasCoeff(e) {
		deg += 2
	}
	return deg
}

// newCtx prepares an evaluation context for volume integrands over spc
func newCtx(spc *fem.Space, e Expr) *Ctx {
	c := &Ctx{Ndim: spc.Msh.Ndim, Arity: spc.Arity}
	fields := make(map[*fem.GridFunc]bool)
	collectFields(e, fields)
	c.cellVals = make(map[*fem.GridFunc][]float64, len(fields))
	for gf := range fields {
		c.cellVals[gf] = nil // gathered per cell
	}
	return c
}

// gatherCell loads the interpolation data of one cell into the context
func (c *Ctx) gatherCell(spc *fem.Space, cid int) {
	for gf := range c.cellVals {
		c.cellVals[gf] = gf.CellVals(cid)
	}
}

// Bilinear is a bilinear form a(u, v) over a space, assembled by numerical
// quadrature into a sparse matrix. The integrand must contain exactly one
// trial and one test function and evaluate to a scalar. The integration
// domain is the whole volume, or named boundary regions when OnBoundary was
// called; boundary integrands may use Trial, Test, Coeff, Const, Vec, X and
// Normal, but not gradients or fields.
type Bilinear struct {
	Spc     *fem.Space
	E       Expr
	Regions []string
	Deg     int // quadrature degree; 0 means the default for the space
}

// NewBilinear makes a bilinear form over the whole volume
func NewBilinear(spc *fem.Space, e Expr) *Bilinear {
	return &Bilinear{Spc: spc, E: e}
}

// OnBoundary restricts the form to the named boundary regions
func (o *Bilinear) OnBoundary(regions ...string) *Bilinear {
	o.Regions = regions
	return o
}

// Assemble accumulates the form into K. K is not cleared: callers reassembling
// after a parameter or geometry change must call K.Start() first.
func (o *Bilinear) Assemble(K *fem.Matrix) error {
	if len(o.Regions) > 0 {
		return o.assembleBoundary(K)
	}
	deg := o.Deg
	if deg == 0 {
		deg = quadDegree(o.Spc, o.E)
	}
	c := newCtx(o.Spc, o.E)
	msh := o.Spc.Msh
	arity := o.Spc.Arity
	for _, cell := range msh.Cells {
		sh := o.Spc.Shape(cell.Id)
		x := msh.CellCoords(cell.Id)
		l2g := o.Spc.LocToGlob(cell.Id)
		c.gatherCell(o.Spc, cell.Id)
		for _, ip := range sh.Ips(deg) {
			if err := sh.CalcAtIp(x, ip, true); err != nil {
				return fmt.Errorf("cell %d: %w", cell.Id, err)
			}
			coef := sh.J * ip.W
			c.S, c.G = sh.S, sh.G
			c.X = sh.IpRealCoordsFromS(x)
			for i, I := range l2g {
				c.HasTest = true
				c.TestS, c.TestC, c.TestG = sh.S[i/arity], i%arity, sh.G[i/arity]
				for j, J := range l2g {
					c.HasTrial = true
					c.TrialS, c.TrialC, c.TrialG = sh.S[j/arity], j%arity, sh.G[j/arity]
					K.Put(I, J, coef*o.E.eval(c).Value())
				}
			}
			c.HasTest, c.HasTrial = false, false
		}
	}
	return nil
}

func (o *Bilinear) assembleBoundary(K *fem.Matrix) error {
	deg := o.Deg
	if deg == 0 {
		deg = quadDegree(o.Spc, o.E)
	}
	c := &Ctx{Ndim: o.Spc.Msh.Ndim, Arity: o.Spc.Arity}
	c.cellVals = make(map[*fem.GridFunc][]float64) // fields panic in eval
	msh := o.Spc.Msh
	arity := o.Spc.Arity
	for _, name := range o.Regions {
		facets, err := msh.RegionFacets(name)
		if err != nil {
			return err
		}
		for _, f := range facets {
			sh := o.Spc.Shape(f.Cell)
			x := msh.CellCoords(f.Cell)
			l2g := o.Spc.LocToGlob(f.Cell)
			lverts := sh.FaceLocalVerts[f.Face]
			for _, ipf := range sh.FaceIps(deg) {
				c.X = sh.FaceIpRealCoords(x, ipf, f.Face)
				if err := sh.CalcAtFaceIp(x, ipf, f.Face); err != nil {
					return fmt.Errorf("cell %d face %d: %w", f.Cell, f.Face, err)
				}
				jf := la.VecNorm(sh.Fnvec)
				coef := jf * ipf.W
				c.Nrm = make([]float64, len(sh.Fnvec))
				for i := range sh.Fnvec {
					c.Nrm[i] = sh.Fnvec[i] / jf
				}
				c.HasTest, c.HasTrial = true, true
				c.TestG, c.TrialG = nil, nil
				for k, n := range lverts {
					for j := 0; j < arity; j++ {
						c.TestS, c.TestC = sh.Sf[k], j
						I := l2g[n*arity+j]
						for m, nm := range lverts {
							for jj := 0; jj < arity; jj++ {
								c.TrialS, c.TrialC = sh.Sf[m], jj
								K.Put(I, l2g[nm*arity+jj], coef*o.E.eval(c).Value())
							}
						}
					}
				}
				c.HasTest, c.HasTrial = false, false
			}
		}
	}
	return nil
}

// Linear is a linear form L(v) over a space, assembled into a dense vector.
// The integration domain is the whole volume, or named boundary regions when
// OnBoundary was called. Boundary integrands may use Test, Coeff, Const,
// Vec, X and Normal, but not gradients or fields.
type Linear struct {
	Spc     *fem.Space
	E       Expr
	Regions []string
	Deg     int
}

// NewLinear makes a linear form over the whole volume
func NewLinear(spc *fem.Space, e Expr) *Linear {
	return &Linear{Spc: spc, E: e}
}

// OnBoundary restricts the form to the named boundary regions
func (o *Linear) OnBoundary(regions ...string) *Linear {
	o.Regions = regions
	return o
}

// Assemble accumulates the form into b (not cleared)
func (o *Linear) Assemble(b []float64) error {
	if len(o.Regions) > 0 {
		return o.assembleBoundary(b)
	}
	deg := o.Deg
	if deg == 0 {
		deg = quadDegree(o.Spc, o.E)
	}
	c := newCtx(o.Spc, o.E)
	msh := o.Spc.Msh
	arity := o.Spc.Arity
	for _, cell := range msh.Cells {
		sh := o.Spc.Shape(cell.Id)
		x := msh.CellCoords(cell.Id)
		l2g := o.Spc.LocToGlob(cell.Id)
		c.gatherCell(o.Spc, cell.Id)
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
				b[I] += coef * o.E.eval(c).Value()
			}
			c.HasTest = false
		}
	}
	return nil
}

func (o *Linear) assembleBoundary(b []float64) error {
	deg := o.Deg
	if deg == 0 {
		deg = quadDegree(o.Spc, o.E)
	}
	c := &Ctx{Ndim: o.Spc.Msh.Ndim, Arity: o.Spc.Arity}
	c.cellVals = make(map[*fem.GridFunc][]float64) // fields panic in eval
	msh := o.Spc.Msh
	arity := o.Spc.Arity
	for _, name := range o.Regions {
		facets, err := msh.RegionFacets(name)
		if err != nil {
			return err
		}
		for _, f := range facets {
			sh := o.Spc.Shape(f.Cell)
			x := msh.CellCoords(f.Cell)
			l2g := o.Spc.LocToGlob(f.Cell)
			lverts := sh.FaceLocalVerts[f.Face]
			for _, ipf := range sh.FaceIps(deg) {
				c.X = sh.FaceIpRealCoords(x, ipf, f.Face)
				if err := sh.CalcAtFaceIp(x, ipf, f.Face); err != nil {
					return fmt.Errorf("cell %d face %d: %w", f.Cell, f.Face, err)
				}
				jf := la.VecNorm(sh.Fnvec)
				coef := jf * ipf.W
				c.Nrm = make([]float64, len(sh.Fnvec))
				for i := range sh.Fnvec {
					c.Nrm[i] = sh.Fnvec[i] / jf
				}
				c.HasTest = true
				c.TestG = nil
				for k, n := range lverts {
					for j := 0; j < arity; j++ {
						c.TestS, c.TestC = sh.Sf[k], j
						b[l2g[n*arity+j]] += coef * o.E.eval(c).Value()
					}
				}
				c.HasTest = false
			}
		}
	}
	return nil
}

// Integral evaluates ∫ e dx over the whole mesh of the space. The integrand
// may contain fields and coefficients but no trial or test functions.
func Integral(spc *fem.Space, e Expr, deg int) (float64, error) {
	if deg == 0 {
		deg = quadDegree(spc, e)
	}
	c := newCtx(spc, e)
	msh := spc.Msh
	sum := 0.0
	for _, cell := range msh.Cells {
		sh := spc.Shape(cell.Id)
		x := msh.CellCoords(cell.Id)
		c.gatherCell(spc, cell.Id)
		for _, ip := range sh.Ips(deg) {
			if err := sh.CalcAtIp(x, ip, true); err != nil {
				return 0, fmt.Errorf("cell %d: %w", cell.Id, err)
			}
			c.S, c.G = sh.S, sh.G
			c.X = sh.IpRealCoordsFromS(x)
			sum += sh.J * ip.W * e.eval(c).Value()
		}
	}
	return sum, nil
}
