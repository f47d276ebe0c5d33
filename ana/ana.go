// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ana implements analytical solutions used to verify the finite
// element solver.
package ana

import "math"

// AxialBar holds the exact solution of a prismatic bar clamped at one end
// and pulled by a uniform axial traction T at the other
type AxialBar struct {
	Lam, Mu float64 // Lamé parameters
	T       float64 // axial traction
}

// Young returns Young's modulus E = μ(3λ+2μ)/(λ+μ)
func (o *AxialBar) Young() float64 {
	return o.Mu * (3*o.Lam + 2*o.Mu) / (o.Lam + o.Mu)
}

// Strain returns the uniform axial strain T/E
func (o *AxialBar) Strain() float64 {
	return o.T / o.Young()
}

// Ux returns the axial displacement at distance x from the clamped end
func (o *AxialBar) Ux(x float64) float64 {
	return o.Strain() * x
}

// SquarePoisson holds the series solution of −Δu = 1 on the unit square
// with u = 0 on the whole boundary:
//
//	u(x,y) = (16/π⁴) Σ_{m,n odd} sin(mπx)·sin(nπy) / (m·n·(m²+n²))
type SquarePoisson struct {
	Nterms int // odd-index terms per direction; 0 means 200
}

// U evaluates the series at (x, y)
func (o *SquarePoisson) U(x, y float64) (u float64) {
	nt := o.Nterms
	if nt < 1 {
		nt = 200
	}
	for i := 0; i < nt; i++ {
		m := float64(2*i + 1)
		for j := 0; j < nt; j++ {
			n := float64(2*j + 1)
			u += math.Sin(m*math.Pi*x) * math.Sin(n*math.Pi*y) / (m * n * (m*m + n*n))
		}
	}
	return u * 16 / (math.Pi * math.Pi * math.Pi * math.Pi)
}

// Max returns the maximum value, attained at the centre of the square
func (o *SquarePoisson) Max() float64 {
	return o.U(0.5, 0.5)
}
