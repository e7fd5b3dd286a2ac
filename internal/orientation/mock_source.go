// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"
)

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock provider that sweeps the device slowly
// around all three axes.
func NewMockSource() Provider {
	return &mockSource{start: time.Now(), now: time.Now}
}

func (m *mockSource) Next() (DeviceOrientation, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	return DeviceOrientation{
		Alpha: math.Mod(elapsed*30, 360),
		Beta:  60 * math.Sin(elapsed*0.5),
		Gamma: 45 * math.Cos(elapsed*0.7),
	}, nil
}
