// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"image/color"

	"github.com/relabs-tech/orientation_widget/internal/geometry"
	"github.com/relabs-tech/orientation_widget/internal/orientation"
)

// Device body in stage units: x right, y down, z toward the viewer.
const (
	boxWidth  = 0.6
	boxHeight = 1.0
	boxDepth  = 0.12
)

type boxFace struct {
	name    string
	corners [4]int
	normal  geometry.Vector
	color   color.RGBA
}

// Corner i has x, y and z positive when bit 0, 1 and 2 are set.
var boxFaces = []boxFace{
	{"front", [4]int{4, 5, 7, 6}, geometry.Vector{Z: 1}, color.RGBA{R: 0x1f, G: 0x4e, B: 0x8c, A: 0xff}},
	{"back", [4]int{0, 1, 3, 2}, geometry.Vector{Z: -1}, color.RGBA{R: 0x70, G: 0x70, B: 0x78, A: 0xff}},
	{"top", [4]int{0, 1, 5, 4}, geometry.Vector{Y: -1}, color.RGBA{R: 0xc8, G: 0x8a, B: 0x2e, A: 0xff}},
	{"bottom", [4]int{2, 3, 7, 6}, geometry.Vector{Y: 1}, color.RGBA{R: 0x9a, G: 0x9a, B: 0xa4, A: 0xff}},
	{"left", [4]int{0, 4, 6, 2}, geometry.Vector{X: -1}, color.RGBA{R: 0xa8, G: 0xa8, B: 0xb4, A: 0xff}},
	{"right", [4]int{1, 3, 7, 5}, geometry.Vector{X: 1}, color.RGBA{R: 0xb8, G: 0xb8, B: 0xc4, A: 0xff}},
}

// cameraTilt leans the stage so a device lying flat still shows its
// edges.
var cameraTilt = geometry.RotationAxisAngle(1, 0, 0, -20).Multiply(geometry.RotationAxisAngle(0, 1, 0, 20))

type point2 struct{ X, Y float64 }

// projectedFace is a face facing the viewer, in output coordinates.
type projectedFace struct {
	name   string
	points [4]point2
	light  float64 // cosine between face normal and view direction
	color  color.RGBA
}

// layerMatrix is the rotation the stage layer applies for o, matching the
// CSS transform set by the widget.
func layerMatrix(o orientation.DeviceOrientation) geometry.Matrix {
	return geometry.RotationAxisAngle(0, 1, 0, o.Alpha).
		Multiply(geometry.RotationAxisAngle(1, 0, 0, -o.Beta)).
		Multiply(geometry.RotationAxisAngle(0, 0, 1, o.Gamma))
}

// projectBox returns the visible faces of the device body for o, centred
// on (cx, cy) with separate horizontal and vertical scales.
func projectBox(o orientation.DeviceOrientation, cx, cy, scaleX, scaleY float64) []projectedFace {
	m := cameraTilt.Multiply(layerMatrix(o))

	var corners [8]geometry.Vector
	for i := range corners {
		c := geometry.Vector{X: -boxWidth / 2, Y: -boxHeight / 2, Z: -boxDepth / 2}
		if i&1 != 0 {
			c.X = boxWidth / 2
		}
		if i&2 != 0 {
			c.Y = boxHeight / 2
		}
		if i&4 != 0 {
			c.Z = boxDepth / 2
		}
		corners[i] = m.Apply(c)
	}

	faces := make([]projectedFace, 0, 3)
	for _, f := range boxFaces {
		n := m.Apply(f.normal)
		if n.Z <= geometry.Eps {
			continue
		}
		pf := projectedFace{name: f.name, light: n.Z, color: f.color}
		for i, idx := range f.corners {
			pf.points[i] = point2{X: cx + corners[idx].X*scaleX, Y: cy + corners[idx].Y*scaleY}
		}
		faces = append(faces, pf)
	}
	return faces
}

// contains reports whether p lies inside the convex quad f.
func (f projectedFace) contains(p point2) bool {
	var pos, neg bool
	for i := range f.points {
		a, b := f.points[i], f.points[(i+1)%len(f.points)]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		if cross > 0 {
			pos = true
		} else if cross < 0 {
			neg = true
		}
		if pos && neg {
			return false
		}
	}
	return true
}

// shade darkens c by the face light, keeping a floor so edge-on faces
// stay visible.
func shade(c color.RGBA, light float64) color.RGBA {
	k := 0.45 + 0.55*light
	return color.RGBA{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: c.A,
	}
}
