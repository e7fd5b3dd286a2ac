// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// DeviceOrientation is the canonical orientation value of the widget, in
// degrees, following the DeviceOrientationEvent conventions.
type DeviceOrientation struct {
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Beta  float64 `json:"beta" yaml:"beta"`
	Gamma float64 `json:"gamma" yaml:"gamma"`
}

// Source tells SetDeviceOrientation where a new orientation came from.
type Source string

const (
	SourceUserInput    Source = "userInput"
	SourceUserDrag     Source = "userDrag"
	SourceResetButton  Source = "resetButton"
	SourceSelectPreset Source = "selectPreset"
	SourceHeadingFeed  Source = "headingFeed"
	SourceMockFeed     Source = "mockFeed"
)

// Provider is anything that can produce orientations over time, such as
// the mock source used by the producer.
type Provider interface {
	Next() (DeviceOrientation, error)
}

// Rounded returns o with every angle rounded to 4 decimal places, the
// precision handed to change listeners.
func (o DeviceOrientation) Rounded() DeviceOrientation {
	return DeviceOrientation{
		Alpha: roundAngle(o.Alpha),
		Beta:  roundAngle(o.Beta),
		Gamma: roundAngle(o.Gamma),
	}
}

// roundAngle rounds half up at the fourth decimal.
func roundAngle(angle float64) float64 {
	r := math.Floor(angle*10000+0.5) / 10000
	if r == 0 {
		return 0
	}
	return r
}

func (o DeviceOrientation) String() string {
	return fmt.Sprintf("[%s, %s, %s]", formatAngle(o.Alpha), formatAngle(o.Beta), formatAngle(o.Gamma))
}

// ToSetting serializes o for a host settings store.
func (o DeviceOrientation) ToSetting() string {
	b, _ := json.Marshal(o)
	return string(b)
}

// ParseSetting reads a value written by ToSetting. An empty value is the
// zero orientation.
func ParseSetting(value string) (DeviceOrientation, error) {
	if value == "" {
		return DeviceOrientation{}, nil
	}
	var o DeviceOrientation
	if err := json.Unmarshal([]byte(value), &o); err != nil {
		return DeviceOrientation{}, fmt.Errorf("parse orientation setting: %w", err)
	}
	return o, nil
}

var angleRe = regexp.MustCompile(`^([+-]?\d+(\.\d+)?|[+-]?\.\d+)$`)

// angleInRange reports whether value is a plain decimal number in
// [minimum, maximum).
func angleInRange(value string, minimum, maximum float64) bool {
	if !angleRe.MatchString(value) {
		return false
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return false
	}
	return n >= minimum && n < maximum
}

func ValidAlpha(value string) bool { return angleInRange(value, -180, 180) }
func ValidBeta(value string) bool  { return angleInRange(value, -180, 180) }
func ValidGamma(value string) bool { return angleInRange(value, -90, 90) }

// ParseUserInput builds an orientation from three text fields. It returns
// nil when every field is empty or every field is invalid; individual
// invalid fields become -1.
func ParseUserInput(alpha, beta, gamma string) *DeviceOrientation {
	if alpha == "" && beta == "" && gamma == "" {
		return nil
	}

	alphaOK, betaOK, gammaOK := ValidAlpha(alpha), ValidBeta(beta), ValidGamma(gamma)
	if !alphaOK && !betaOK && !gammaOK {
		return nil
	}

	o := &DeviceOrientation{Alpha: -1, Beta: -1, Gamma: -1}
	if alphaOK {
		o.Alpha, _ = strconv.ParseFloat(alpha, 64)
	}
	if betaOK {
		o.Beta, _ = strconv.ParseFloat(beta, 64)
	}
	if gammaOK {
		o.Gamma, _ = strconv.ParseFloat(gamma, 64)
	}
	return o
}

// formatAngle prints an angle the way CSS and JSON numbers read: no
// trailing zeros and never "-0".
func formatAngle(angle float64) string {
	if angle == 0 {
		return "0"
	}
	return strconv.FormatFloat(angle, 'f', -1, 64)
}
