// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build ignore
// +build ignore

// GenMesh generates structured meshes for the example problems.
// Usage: go run tools/GenMesh.go outfile kind nx ny order xb yb
// where kind is "rect", "tri" or "box" and the domain is [0,xb] x [0,yb]
// (unit depth in z for boxes).
package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cpmech/gosl/io"

	"github.com/JavierGatica/IPRE-Finite-Element-Method/inp"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("ERROR: %v\n", err)
		}
	}()

	// input data
	outfn := io.ArgToString(0, "mesh.msh")
	kind := io.ArgToString(1, "rect")
	nx := io.ArgToInt(2, 8)
	ny := io.ArgToInt(3, 4)
	order := io.ArgToInt(4, 1)
	xb := io.ArgToFloat(5, 2)
	yb := io.ArgToFloat(6, 1)
	io.Pf("\n%v\n", io.ArgsTable(
		"output filename", "outfn", outfn,
		"mesh kind", "kind", kind,
		"cells along x", "nx", nx,
		"cells along y", "ny", ny,
		"polynomial order", "order", order,
		"domain size x", "xb", xb,
		"domain size y", "yb", yb,
	))

	// generate
	var msh *inp.Mesh
	var err error
	switch kind {
	case "rect":
		msh, err = inp.Rectangle(0, xb, 0, yb, nx, ny, order)
	case "tri":
		msh, err = inp.RectangleTri(0, xb, 0, yb, nx, ny, order)
	case "box":
		msh, err = inp.Box(0, xb, 0, yb, 0, 1, nx, ny, ny)
	default:
		io.PfRed("unknown mesh kind %q\n", kind)
		return
	}
	if err != nil {
		io.PfRed("cannot generate mesh:\n%v\n", err)
		return
	}

	// write
	var b []byte
	switch filepath.Ext(outfn) {
	case ".yaml", ".yml":
		b, err = yaml.Marshal(msh)
	default:
		b, err = json.MarshalIndent(msh, "", " ")
	}
	if err != nil {
		io.PfRed("cannot encode mesh:\n%v\n", err)
		return
	}
	if err = os.WriteFile(outfn, b, 0644); err != nil {
		io.PfRed("cannot write mesh:\n%v\n", err)
		return
	}
	io.Pf("mesh with %d vertices and %d cells written to %s\n", len(msh.Verts), len(msh.Cells), outfn)
}
