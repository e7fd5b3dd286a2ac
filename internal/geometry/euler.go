// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package geometry

import "math"

// EulerAngles are device-orientation angles in degrees:
// alpha around Z in [0, 360), beta around X in [-180, 180],
// gamma around Y in [-90, 90).
type EulerAngles struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// EulerFromRotationMatrix decomposes a rotation matrix into device
// orientation angles, rounded to 6 decimal places.
//
// When m33 is zero the device is at gimbal lock (cos(beta) == 0) or on its
// side (cos(gamma) == 0) and the usual atan2 forms degenerate, hence the
// extra branches.
func EulerFromRotationMatrix(m Matrix) EulerAngles {
	m11, m12, m13 := m[0][0], m[1][0], m[2][0]
	m21, m22, m23 := m[0][1], m[1][1], m[2][1]
	m33 := m[2][2]

	var alpha, beta, gamma float64

	switch {
	case math.Abs(m33) < Eps:
		switch {
		case math.Abs(m13) < Eps:
			alpha = math.Atan2(m12, m11)
			beta = math.Pi / 2
			if m23 <= 0 {
				beta = -beta
			}
			gamma = 0
		case m13 > 0:
			// cos(gamma) == 0, cos(beta) > 0
			alpha = math.Atan2(-m21, m22)
			beta = math.Asin(m23)
			gamma = -math.Pi / 2
		default:
			// cos(gamma) == 0, cos(beta) < 0
			alpha = math.Atan2(m21, -m22)
			beta = wrapObtuse(-math.Asin(m23))
			gamma = -math.Pi / 2
		}
	case m33 > 0:
		alpha = math.Atan2(-m21, m22)
		beta = math.Asin(m23)
		gamma = math.Atan2(-m13, m33)
	default:
		alpha = math.Atan2(m21, -m22)
		beta = wrapObtuse(-math.Asin(m23))
		gamma = math.Atan2(m13, -m33)
	}

	// atan2 yields (-pi, pi]; alpha lives in [0, 2pi).
	if alpha < -Eps {
		alpha += 2 * math.Pi
	}

	return EulerAngles{
		Alpha: Round(RadToDeg(alpha), 6),
		Beta:  Round(RadToDeg(beta), 6),
		Gamma: Round(RadToDeg(gamma), 6),
	}
}

// wrapObtuse moves an asin result into [-pi, -pi/2) U (pi/2, pi].
func wrapObtuse(beta float64) float64 {
	if beta > 0 || math.Abs(beta) < Eps {
		return beta - math.Pi
	}
	return beta + math.Pi
}

// Round rounds x to the given number of decimal places, half away from
// zero. Negative zero comes back as 0.
func Round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	r := math.Round(x*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}
