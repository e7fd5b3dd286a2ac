// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package geometry holds the vector and rotation math behind the
// orientation widget: trackball vectors, DOMMatrix-style rotations and the
// device-orientation Euler decomposition.
package geometry

import "math"

// Eps is the tolerance used for near-zero lengths and matrix elements.
const Eps = 1e-5

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Vector is a 3-D vector.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Length returns the euclidean length of v.
func (v Vector) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize scales v to unit length in place. Vectors shorter than Eps are
// left untouched.
func (v *Vector) Normalize() {
	length := v.Length()
	if length <= Eps {
		return
	}
	v.X /= length
	v.Y /= length
	v.Z /= length
}

// Dot returns the scalar product of u and v.
func Dot(u, v Vector) float64 {
	return u.X*v.X + u.Y*v.Y + u.Z*v.Z
}

// Cross returns the vector product u × v.
func Cross(u, v Vector) Vector {
	return Vector{
		X: u.Y*v.Z - u.Z*v.Y,
		Y: u.Z*v.X - u.X*v.Z,
		Z: u.X*v.Y - u.Y*v.X,
	}
}

// AngleBetween returns the angle between u and v in degrees. Degenerate
// vectors and a cosine pushed outside [-1, 1] by rounding yield 0.
func AngleBetween(u, v Vector) float64 {
	uLength := u.Length()
	vLength := v.Length()
	if uLength <= Eps || vLength <= Eps {
		return 0
	}
	cos := Dot(u, v) / uLength / vLength
	if math.Abs(cos) > 1 {
		return 0
	}
	return RadToDeg(math.Acos(cos))
}
