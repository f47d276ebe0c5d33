// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	fun "github.com/cpmech/gosl/fun/dbf"

	"github.com/JavierGatica/IPRE-Finite-Element-Method/fem"
	"github.com/JavierGatica/IPRE-Finite-Element-Method/inp"
)

// scalarSpace builds an order-1 scalar space over a structured quad mesh
func scalarSpace(t *testing.T, nx, ny int, dirichlet []string) *fem.Space {
	msh, err := inp.Rectangle(0, 1, 0, 1, nx, ny, 1)
	require.NoError(t, err)
	spc, err := fem.NewSpace(msh, 1, 1, dirichlet)
	require.NoError(t, err)
	return spc
}

func TestStiffnessQua4(t *testing.T) {

	// single unit square qua4: the Laplacian element matrix has 2/3 on the
	// diagonal, -1/6 on edges and -1/3 across the diagonal
	spc := scalarSpace(t, 1, 1, nil)
	K := fem.NewMatrix(spc.Ndofs, 16)
	err := NewBilinear(spc, DDot(Grad(Trial()), Grad(Test()))).Assemble(K)
	require.NoError(t, err)

	d := K.CC().ToDense()
	require.InDelta(t, 2.0/3.0, d[0][0], 1e-14)
	require.InDelta(t, -1.0/6.0, d[0][1], 1e-14)
	require.InDelta(t, -1.0/6.0, d[0][2], 1e-14)
	require.InDelta(t, -1.0/3.0, d[0][3], 1e-14) // vertex 3 is opposite vertex 0

	// symmetry
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			require.InDelta(t, d[j][i], d[i][j], 1e-14)
		}
	}
}

func TestMassTotal(t *testing.T) {

	// sum of all mass matrix entries = ∫ 1 dx = area, on quads and triangles
	for _, tri := range []bool{false, true} {
		var msh *inp.Mesh
		var err error
		if tri {
			msh, err = inp.RectangleTri(0, 2, 0, 1.5, 3, 2, 1)
		} else {
			msh, err = inp.Rectangle(0, 2, 0, 1.5, 3, 2, 1)
		}
		require.NoError(t, err)
		spc, err := fem.NewSpace(msh, 1, 1, nil)
		require.NoError(t, err)
		M := fem.NewMatrix(spc.Ndofs, 16*spc.Ndofs)
		err = NewBilinear(spc, Dot(Trial(), Test())).Assemble(M)
		require.NoError(t, err)
		d := M.CC().ToDense()
		sum := 0.0
		for i := range d {
			for j := range d[i] {
				sum += d[i][j]
			}
		}
		require.InDelta(t, 3.0, sum, 1e-12)
	}
}

func TestAssembleAccumulates(t *testing.T) {

	// assembling twice without Start doubles the matrix
	spc := scalarSpace(t, 1, 1, nil)
	form := NewBilinear(spc, Dot(Trial(), Test()))
	K := fem.NewMatrix(spc.Ndofs, 64)
	require.NoError(t, form.Assemble(K))
	one := K.CC().ToDense()
	require.NoError(t, form.Assemble(K))
	two := K.CC().ToDense()
	require.InDelta(t, 2*one[0][0], two[0][0], 1e-15)

	K.Start()
	require.NoError(t, form.Assemble(K))
	again := K.CC().ToDense()
	require.InDelta(t, one[0][0], again[0][0], 1e-15)
}

func TestBoundaryTraction(t *testing.T) {

	// ∫_right (0,-1)·v over the unit square: total vertical load = -1
	msh, err := inp.Rectangle(0, 1, 0, 1, 2, 2, 1)
	require.NoError(t, err)
	spc, err := fem.NewSpace(msh, 1, 2, nil)
	require.NoError(t, err)
	b := make([]float64, spc.Ndofs)
	err = NewLinear(spc, Dot(Vec(0, -1), Test())).OnBoundary("right").Assemble(b)
	require.NoError(t, err)

	sumX, sumY := 0.0, 0.0
	for vid := range msh.Verts {
		sumX += b[vid*2]
		sumY += b[vid*2+1]
	}
	require.InDelta(t, 0.0, sumX, 1e-14)
	require.InDelta(t, -1.0, sumY, 1e-13)

	// load lands only on right-edge vertices
	right, err := msh.RegionVerts("right")
	require.NoError(t, err)
	onRight := make(map[int]bool)
	for _, v := range right {
		onRight[v] = true
	}
	for vid := range msh.Verts {
		if !onRight[vid] {
			require.Zero(t, b[vid*2+1])
		}
	}

	// unknown region fails fast
	err = NewLinear(spc, Dot(Vec(0, -1), Test())).OnBoundary("nowhere").Assemble(b)
	require.ErrorIs(t, err, inp.ErrUnknownRegion)
}

// solvePoisson solves -Δu = f with zero Dirichlet data on all four sides of
// the unit square
func solvePoisson(t *testing.T, n int, f func(x []float64) float64) (*fem.Space, *fem.GridFunc) {
	msh, err := inp.Rectangle(0, 1, 0, 1, n, n, 1)
	require.NoError(t, err)
	spc, err := fem.NewSpace(msh, 1, 1, []string{"left", "right", "bottom", "top"})
	require.NoError(t, err)

	K := fem.NewMatrix(spc.Ndofs, 16*spc.Ndofs)
	require.NoError(t, NewBilinear(spc, DDot(Grad(Trial()), Grad(Test()))).Assemble(K))
	b := make([]float64, spc.Ndofs)
	load := NewLinear(spc, Mul(Fn(f), Comp(Test(), 0)))
	load.Deg = 4
	require.NoError(t, load.Assemble(b))

	ug := make([]float64, spc.Ndofs)
	u, err := fem.SolveSystem(K, b, ug, spc, fem.GetSolver("cg", 1e-12, 5000))
	require.NoError(t, err)
	gfu := fem.NewGridFunc(spc)
	copy(gfu.V, u)
	return spc, gfu
}

func TestPoissonConvergence(t *testing.T) {

	// manufactured solution u* = x(1-x)y(1-y), f = 2(x(1-x) + y(1-y));
	// order-1 elements converge at O(h²) in L2
	ustar := func(x []float64) float64 { return x[0] * (1 - x[0]) * x[1] * (1 - x[1]) }
	f := func(x []float64) float64 { return 2 * (x[0]*(1-x[0]) + x[1]*(1-x[1])) }

	l2err := func(n int) float64 {
		spc, gfu := solvePoisson(t, n, f)
		diff := Sub(Comp(Field(gfu), 0), Fn(ustar))
		e2, err := Integral(spc, Mul(diff, diff), 6)
		require.NoError(t, err)
		return math.Sqrt(e2)
	}

	e1 := l2err(4)
	e2 := l2err(8)
	ratio := e1 / e2
	require.Greater(t, ratio, 3.0, "expected ~4x error reduction, got %g", ratio)
	require.Less(t, ratio, 5.0, "expected ~4x error reduction, got %g", ratio)
}

func TestStateDerivative(t *testing.T) {

	// J(w) = ∫ w² dx: the assembled derivative must match central finite
	// differences on the nodal values
	msh, err := inp.Rectangle(0, 1, 0, 1, 2, 2, 1)
	require.NoError(t, err)
	spc, err := fem.NewSpace(msh, 1, 1, nil)
	require.NoError(t, err)
	w := fem.NewGridFunc(spc)
	for vid, v := range msh.Verts {
		w.V[vid] = v.C[0]*v.C[0] + 0.5*v.C[1]
	}
	integrand := Mul(Comp(Field(w), 0), Comp(Field(w), 0))

	b := make([]float64, spc.Ndofs)
	require.NoError(t, StateDerivative(integrand, w, b))

	eps := 1e-6
	for k := 0; k < spc.Ndofs; k++ {
		orig := w.V[k]
		w.V[k] = orig + eps
		jp, err := Integral(spc, integrand, 4)
		require.NoError(t, err)
		w.V[k] = orig - eps
		jm, err := Integral(spc, integrand, 4)
		require.NoError(t, err)
		w.V[k] = orig
		require.InDelta(t, (jp-jm)/(2*eps), b[k], 1e-7)
	}
}

func TestShapeDerivative(t *testing.T) {

	// J(Ω) = ∫ |∇w|² dx with w transported on the moving mesh: the assembled
	// shape derivative contracted with a perturbation field V must match
	// (J(Ω_{+ε}) − J(Ω_{−ε})) / 2ε
	msh, err := inp.Rectangle(0, 1, 0, 1, 2, 2, 1)
	require.NoError(t, err)
	spc, err := fem.NewSpace(msh, 1, 1, nil)
	require.NoError(t, err)
	w := fem.NewGridFunc(spc)
	for vid, v := range msh.Verts {
		w.V[vid] = v.C[0]*v.C[0] - v.C[0]*v.C[1] + 2*v.C[1]
	}
	integrand := DDot(Grad(Field(w)), Grad(Field(w)))

	dspc, err := fem.NewSpace(msh, 1, 2, nil)
	require.NoError(t, err)
	b := make([]float64, dspc.Ndofs)
	require.NoError(t, ShapeDerivative(dspc, integrand, b))

	// perturbation field (vanishing on the boundary keeps cells valid)
	V := make([][]float64, len(msh.Verts))
	dj := 0.0
	for vid, v := range msh.Verts {
		x, y := v.C[0], v.C[1]
		V[vid] = []float64{
			0.3 * x * (1 - x) * y * (1 - y),
			-0.2 * x * (1 - x) * y,
		}
		dj += b[vid*2]*V[vid][0] + b[vid*2+1]*V[vid][1]
	}

	jAt := func(sign float64, eps float64) float64 {
		disp := make([][]float64, len(V))
		for i := range V {
			disp[i] = []float64{sign * eps * V[i][0], sign * eps * V[i][1]}
		}
		dmsh, err := msh.Deformed(disp)
		require.NoError(t, err)
		dspc2, err := fem.NewSpace(dmsh, 1, 1, nil)
		require.NoError(t, err)
		wd := fem.NewGridFunc(dspc2)
		copy(wd.V, w.V) // nodal values ride with the mesh
		j, err := Integral(dspc2, DDot(Grad(Field(wd)), Grad(Field(wd))), 0)
		require.NoError(t, err)
		return j
	}

	eps := 1e-6
	djFD := (jAt(1, eps) - jAt(-1, eps)) / (2 * eps)
	require.InDelta(t, djFD, dj, 1e-6*math.Max(1, math.Abs(djFD)))
}

func TestElasticityFormSymmetry(t *testing.T) {

	// a(u,v) = ∫ σ(u):ε(v) assembles to a symmetric matrix
	msh, err := inp.Rectangle(0, 2, 0, 1, 2, 1, 1)
	require.NoError(t, err)
	spc, err := fem.NewSpace(msh, 1, 2, []string{"left"})
	require.NoError(t, err)
	lam, mu := 1.25, 1.0
	K := fem.NewMatrix(spc.Ndofs, 64*spc.Ndofs)
	err = NewBilinear(spc, DDot(Stress(lam, mu, Trial()), Strain(Test()))).Assemble(K)
	require.NoError(t, err)

	d := K.CC().ToDense()
	for i := range d {
		for j := range d[i] {
			require.InDelta(t, d[j][i], d[i][j], 1e-12)
		}
	}
}

func TestCoeffGradient(t *testing.T) {

	spc := scalarSpace(t, 2, 2, nil)

	// f = 5 with declared gradient (2, 0): the gradient leaf integrates to
	// ∫ ∇f·x over the unit square
	f := Coeff(&fun.Cte{C: 5}, func(x []float64) []float64 {
		return []float64{2, 0}
	})
	got, err := Integral(spc, Dot(Grad(f), X()), 4)
	require.NoError(t, err)
	require.InDelta(t, 1.0, got, 1e-12)

	// without the callback the gradient is unavailable
	require.Panics(t, func() {
		Integral(spc, Dot(Grad(Coeff(&fun.Cte{C: 5})), X()), 4)
	})
}

func TestBoundaryMass(t *testing.T) {

	// m(u,v) = ∫_Γ u v on the right edge of the unit square: the entries sum
	// to ∫_Γ 1 = |Γ| and only right-edge vertices couple
	msh, err := inp.Rectangle(0, 1, 0, 1, 2, 2, 1)
	require.NoError(t, err)
	spc, err := fem.NewSpace(msh, 1, 1, nil)
	require.NoError(t, err)

	M := fem.NewMatrix(spc.Ndofs, 16*spc.Ndofs)
	err = NewBilinear(spc, Mul(Trial(), Test())).OnBoundary("right").Assemble(M)
	require.NoError(t, err)

	verts, err := msh.RegionVerts("right")
	require.NoError(t, err)
	onEdge := make(map[int]bool)
	for _, vid := range verts {
		onEdge[vid] = true
	}

	d := M.CC().ToDense()
	sum := 0.0
	for i := range d {
		for j := range d[i] {
			sum += d[i][j]
			require.InDelta(t, d[j][i], d[i][j], 1e-14)
			if d[i][j] != 0 {
				require.True(t, onEdge[i] && onEdge[j])
			}
		}
	}
	require.InDelta(t, 1.0, sum, 1e-14)

	require.Error(t, NewBilinear(spc, Mul(Trial(), Test())).OnBoundary("ghost").Assemble(M))
}
