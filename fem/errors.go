// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fem implements function spaces over meshes, grid functions,
// sparse system matrices, Dirichlet elimination and linear solvers.
package fem

import "errors"

var (
	// ErrInvalidOrder indicates a polynomial order the mesh cells cannot carry
	ErrInvalidOrder = errors.New("invalid polynomial order")

	// ErrSingularSystem indicates a linear system that cannot be solved
	// (failed factorization or conjugate-gradient breakdown)
	ErrSingularSystem = errors.New("singular linear system")
)
