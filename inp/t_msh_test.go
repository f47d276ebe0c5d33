// Copyright 2026 Javier Gatica. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func init() {
	io.Verbose = false
}

func verbose() bool {
	return io.Verbose
}

func Test_gen01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("gen01. interval generator")

	msh, err := Interval(0, 2, 4, 1)
	if err != nil {
		tst.Errorf("Interval failed: %v", err)
		return
	}
	if len(msh.Verts) != 5 || len(msh.Cells) != 1*4 {
		tst.Errorf("wrong sizes: nverts=%d ncells=%d", len(msh.Verts), len(msh.Cells))
		return
	}
	chk.Scalar(tst, "Xmin", 1e-17, msh.Xmin, 0)
	chk.Scalar(tst, "Xmax", 1e-17, msh.Xmax, 2)
	verts, err := msh.RegionVerts("right")
	if err != nil {
		tst.Errorf("RegionVerts failed: %v", err)
		return
	}
	if len(verts) != 1 || verts[0] != 4 {
		tst.Errorf("wrong right region verts: %v", verts)
	}

	// order 2: lin3 cells, twice the points
	msh2, err := Interval(0, 2, 4, 2)
	if err != nil {
		tst.Errorf("Interval order 2 failed: %v", err)
		return
	}
	if len(msh2.Verts) != 9 || msh2.Cells[0].Type != "lin3" {
		tst.Errorf("wrong order-2 interval: nverts=%d type=%s", len(msh2.Verts), msh2.Cells[0].Type)
	}
}

func Test_gen02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("gen02. rectangle generator")

	msh, err := Rectangle(0, 3, 0, 1, 3, 2, 1)
	if err != nil {
		tst.Errorf("Rectangle failed: %v", err)
		return
	}
	if len(msh.Verts) != 4*3 || len(msh.Cells) != 6 {
		tst.Errorf("wrong sizes: nverts=%d ncells=%d", len(msh.Verts), len(msh.Cells))
		return
	}
	if msh.Ndim != 2 {
		tst.Errorf("Ndim must be 2; got %d", msh.Ndim)
		return
	}

	// every "left" vertex must have x == 0, every "top" vertex y == 1
	left, _ := msh.RegionVerts("left")
	for _, v := range left {
		chk.Scalar(tst, io.Sf("x of left vert %d", v), 1e-17, msh.Verts[v].C[0], 0)
	}
	top, _ := msh.RegionVerts("top")
	for _, v := range top {
		chk.Scalar(tst, io.Sf("y of top vert %d", v), 1e-17, msh.Verts[v].C[1], 1)
	}
	if len(left) != 3 || len(top) != 4 {
		tst.Errorf("wrong region vert counts: left=%d top=%d", len(left), len(top))
	}

	// unknown region
	_, err = msh.RegionFacets("north")
	if !errors.Is(err, ErrUnknownRegion) {
		tst.Errorf("expected ErrUnknownRegion; got %v", err)
	}
}

func Test_gen03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("gen03. triangle and box generators")

	msh, err := RectangleTri(0, 1, 0, 1, 2, 2, 2)
	if err != nil {
		tst.Errorf("RectangleTri failed: %v", err)
		return
	}
	if len(msh.Cells) != 8 || msh.Cells[0].Type != "tri6" {
		tst.Errorf("wrong tri mesh: ncells=%d type=%s", len(msh.Cells), msh.Cells[0].Type)
		return
	}
	bottom, _ := msh.RegionVerts("bottom")
	for _, v := range bottom {
		chk.Scalar(tst, io.Sf("y of bottom vert %d", v), 1e-17, msh.Verts[v].C[1], 0)
	}
	if len(bottom) != 5 {
		tst.Errorf("wrong bottom vert count: %d", len(bottom))
	}

	box, err := Box(0, 2, 0, 1, 0, 1, 2, 1, 1)
	if err != nil {
		tst.Errorf("Box failed: %v", err)
		return
	}
	if len(box.Verts) != 3*2*2 || len(box.Cells) != 2 {
		tst.Errorf("wrong box sizes: nverts=%d ncells=%d", len(box.Verts), len(box.Cells))
		return
	}
	front, _ := box.RegionVerts("front")
	for _, v := range front {
		chk.Scalar(tst, io.Sf("y of front vert %d", v), 1e-17, box.Verts[v].C[1], 0)
	}
}

func Test_msh01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("msh01. read mesh from JSON and YAML")

	jdata := `{
  "verts": [
    {"id": 0, "c": [0, 0]},
    {"id": 1, "c": [1, 0]},
    {"id": 2, "c": [1, 1]},
    {"id": 3, "c": [0, 1]}
  ],
  "cells": [
    {"id": 0, "type": "qua4", "verts": [0, 1, 2, 3]}
  ],
  "regions": {
    "left": [{"cell": 0, "face": 3}]
  }
}`
	dir := tst.TempDir()
	fn := filepath.Join(dir, "square.msh")
	if err := os.WriteFile(fn, []byte(jdata), 0644); err != nil {
		tst.Fatalf("cannot write test mesh: %v", err)
	}
	msh, err := ReadMesh(fn)
	if err != nil {
		tst.Errorf("ReadMesh failed: %v", err)
		return
	}
	if msh.Ndim != 2 || len(msh.Cells) != 1 {
		tst.Errorf("wrong mesh: ndim=%d ncells=%d", msh.Ndim, len(msh.Cells))
		return
	}
	left, err := msh.RegionVerts("left")
	if err != nil {
		tst.Errorf("RegionVerts failed: %v", err)
		return
	}
	if len(left) != 2 {
		tst.Errorf("wrong left verts: %v", left)
	}

	ydata := `
verts:
  - {id: 0, c: [0, 0]}
  - {id: 1, c: [1, 0]}
  - {id: 2, c: [0, 1]}
cells:
  - {id: 0, type: tri3, verts: [0, 1, 2]}
regions:
  bottom:
    - {cell: 0, face: 0}
`
	fny := filepath.Join(dir, "tri.yaml")
	if err := os.WriteFile(fny, []byte(ydata), 0644); err != nil {
		tst.Fatalf("cannot write test mesh: %v", err)
	}
	mshy, err := ReadMesh(fny)
	if err != nil {
		tst.Errorf("ReadMesh yaml failed: %v", err)
		return
	}
	if mshy.Cells[0].Type != "tri3" {
		tst.Errorf("wrong yaml mesh cell type: %s", mshy.Cells[0].Type)
	}
}

func Test_msh02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("msh02. validation catches bad input")

	bad := &Mesh{
		Verts: []*Vert{
			{Id: 0, C: []float64{0, 0}},
			{Id: 1, C: []float64{1, 0}},
			{Id: 2, C: []float64{0, 1}},
		},
		Cells: []*Cell{
			{Id: 0, Type: "tri3", Verts: []int{0, 1, 7}},
		},
	}
	if err := bad.Init(); err == nil {
		tst.Errorf("Init must fail on invalid vertex reference")
	}

	bad2 := &Mesh{
		Verts: []*Vert{
			{Id: 0, C: []float64{0, 0}},
			{Id: 1, C: []float64{1, 0}},
			{Id: 2, C: []float64{0, 1}},
		},
		Cells: []*Cell{
			{Id: 0, Type: "tri3", Verts: []int{0, 1, 2}},
		},
		Regions: map[string][]Facet{"bottom": {{Cell: 0, Face: 5}}},
	}
	if err := bad2.Init(); err == nil {
		tst.Errorf("Init must fail on invalid face index")
	}
}

func Test_msh03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("msh03. deformed copy")

	msh, err := Rectangle(0, 1, 0, 1, 2, 2, 1)
	if err != nil {
		tst.Errorf("Rectangle failed: %v", err)
		return
	}
	disp := make([][]float64, len(msh.Verts))
	for i := range disp {
		disp[i] = []float64{0.5, 0}
	}
	def, err := msh.Deformed(disp)
	if err != nil {
		tst.Errorf("Deformed failed: %v", err)
		return
	}
	chk.Scalar(tst, "deformed Xmax", 1e-15, def.Xmax, 1.5)
	chk.Scalar(tst, "original Xmax untouched", 1e-17, msh.Xmax, 1)
	if def.Cells[0] != msh.Cells[0] {
		tst.Errorf("topology must be shared")
	}
}

func Test_sim01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim01. read sim file")

	sdata := `{
  "data": {"sim": "beam", "mesh": "beam.msh", "order": 1},
  "functions": [
    {"name": "pull", "type": "cte", "prms": {"c": -1.0}}
  ],
  "beam": {"lam": 1.25, "mu": 1.0, "fixed": "left", "loaded": "right", "traction": [0, -1], "loadfcn": "pull"},
  "linsol": {"name": "cg"},
  "opt": {"maxit": 20, "step": 0.05, "linesearch": true, "free": "top|bottom"}
}`
	dir := tst.TempDir()
	fn := filepath.Join(dir, "beam.sim")
	if err := os.WriteFile(fn, []byte(sdata), 0644); err != nil {
		tst.Fatalf("cannot write test sim: %v", err)
	}
	sim, err := ReadSim(fn)
	if err != nil {
		tst.Errorf("ReadSim failed: %v", err)
		return
	}
	chk.Scalar(tst, "lam", 1e-17, sim.Beam.Lam, 1.25)
	if sim.LinSol.MaxIt != 10000 {
		tst.Errorf("default MaxIt not applied: %d", sim.LinSol.MaxIt)
	}
	f, err := sim.GetFunction("pull")
	if err != nil {
		tst.Errorf("GetFunction failed: %v", err)
		return
	}
	chk.Scalar(tst, "pull fcn", 1e-17, f.F(0, nil), -1.0)
	chk.Vector(tst, "traction", 1e-17, sim.Beam.Traction, []float64{0, -1})
	if sim.MeshPath() != filepath.Join(dir, "beam.msh") {
		tst.Errorf("wrong mesh path: %s", sim.MeshPath())
	}
	names := SplitRegions(sim.Opt.Free)
	if len(names) != 2 || names[0] != "top" || names[1] != "bottom" {
		tst.Errorf("wrong region split: %v", names)
	}
}

func Test_sim02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim02. sim validation failures")

	write := func(body string) string {
		dir := tst.TempDir()
		fn := filepath.Join(dir, "bad.sim")
		if err := os.WriteFile(fn, []byte(body), 0644); err != nil {
			tst.Fatalf("cannot write test sim: %v", err)
		}
		return fn
	}

	// unknown linear solver
	if _, err := ReadSim(write(`{
  "data": {"sim": "bad", "mesh": "m.msh"},
  "beam": {"lam": 1, "mu": 1, "fixed": "left"},
  "linsol": {"name": "umfpack"}
}`)); err == nil {
		tst.Errorf("unknown solver name must fail Check")
	}

	// loaded region without a traction vector
	if _, err := ReadSim(write(`{
  "data": {"sim": "bad", "mesh": "m.msh"},
  "beam": {"lam": 1, "mu": 1, "fixed": "left", "loaded": "right"}
}`)); err == nil {
		tst.Errorf("loaded region without traction must fail Check")
	}

	// body function without a body vector
	if _, err := ReadSim(write(`{
  "data": {"sim": "bad", "mesh": "m.msh"},
  "functions": [{"name": "g", "type": "cte", "prms": {"c": 1}}],
  "beam": {"lam": 1, "mu": 1, "fixed": "left", "bodyfcn": "g"}
}`)); err == nil {
		tst.Errorf("body function without body vector must fail Check")
	}
}
