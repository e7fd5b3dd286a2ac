// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geometry

import "math"

// Matrix is a 3x3 rotation matrix stored row-major: m[row][col].
//
// The DOMMatrix names used by the Euler decomposition address the same
// storage transposed: mIJ is column I, row J, so m12 == m[1][0].
type Matrix [3][3]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// RotationAxisAngle returns the rotation by deg degrees around the axis
// (x, y, z), following CSS rotate3d. A zero axis yields the identity.
func RotationAxisAngle(x, y, z, deg float64) Matrix {
	length := math.Sqrt(x*x + y*y + z*z)
	if length == 0 {
		return Identity()
	}
	x, y, z = x/length, y/length, z/length

	rad := DegToRad(deg)
	s, c := math.Sin(rad), math.Cos(rad)
	t := 1 - c

	return Matrix{
		{t*x*x + c, t*x*y - s*z, t*x*z + s*y},
		{t*x*y + s*z, t*y*y + c, t*y*z - s*x},
		{t*x*z - s*y, t*y*z + s*x, t*z*z + c},
	}
}

// Multiply returns m × o.
func (m Matrix) Multiply(o Matrix) Matrix {
	var r Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j]
		}
	}
	return r
}

// RotateAxisAngle post-multiplies a rotation around (x, y, z).
func (m Matrix) RotateAxisAngle(x, y, z, deg float64) Matrix {
	return m.Multiply(RotationAxisAngle(x, y, z, deg))
}

// Rotate mirrors DOMMatrix.rotate(rotX, rotY, rotZ): it post-multiplies a
// rotation around Z, then Y, then X.
func (m Matrix) Rotate(rotX, rotY, rotZ float64) Matrix {
	return m.
		Multiply(RotationAxisAngle(0, 0, 1, rotZ)).
		Multiply(RotationAxisAngle(0, 1, 0, rotY)).
		Multiply(RotationAxisAngle(1, 0, 0, rotX))
}

// Apply returns m · v.
func (m Matrix) Apply(v Vector) Vector {
	return Vector{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// FromDeviceOrientation builds the rotation for the given alpha/beta/gamma
// (degrees) in the device-orientation Z-X'-Y'' convention.
func FromDeviceOrientation(alpha, beta, gamma float64) Matrix {
	return Identity().
		Rotate(0, 0, alpha).
		Rotate(beta, 0, 0).
		Rotate(0, gamma, 0)
}
