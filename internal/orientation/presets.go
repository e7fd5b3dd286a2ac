// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named orientation offered next to the stage.
type Preset struct {
	Name        string            `json:"name" yaml:"name"`
	Orientation DeviceOrientation `json:"orientation" yaml:"orientation"`
}

// Presets is an ordered preset list with lookup by name.
type Presets struct {
	list  []Preset
	index map[string]int
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// DefaultPresets returns the built-in device poses.
func DefaultPresets() *Presets {
	p := &Presets{}
	p.set(Preset{Name: "Portrait", Orientation: DeviceOrientation{Alpha: 0, Beta: 90, Gamma: 0}})
	p.set(Preset{Name: "Portrait upside down", Orientation: DeviceOrientation{Alpha: 180, Beta: -90, Gamma: 0}})
	p.set(Preset{Name: "Landscape left", Orientation: DeviceOrientation{Alpha: 90, Beta: 0, Gamma: -90}})
	p.set(Preset{Name: "Landscape right", Orientation: DeviceOrientation{Alpha: 90, Beta: -180, Gamma: -90}})
	p.set(Preset{Name: "Display up", Orientation: DeviceOrientation{Alpha: 0, Beta: 0, Gamma: 0}})
	p.set(Preset{Name: "Display down", Orientation: DeviceOrientation{Alpha: 0, Beta: 180, Gamma: 0}})
	return p
}

// set appends p, or replaces the preset of the same name in place.
func (ps *Presets) set(p Preset) {
	if ps.index == nil {
		ps.index = make(map[string]int)
	}
	if i, ok := ps.index[p.Name]; ok {
		ps.list[i] = p
		return
	}
	ps.index[p.Name] = len(ps.list)
	ps.list = append(ps.list, p)
}

func (ps *Presets) Lookup(name string) (Preset, bool) {
	if ps == nil {
		return Preset{}, false
	}
	i, ok := ps.index[name]
	if !ok {
		return Preset{}, false
	}
	return ps.list[i], true
}

// List returns the presets in display order.
func (ps *Presets) List() []Preset {
	if ps == nil {
		return nil
	}
	out := make([]Preset, len(ps.list))
	copy(out, ps.list)
	return out
}

// DecodePresets reads a YAML preset list:
//
//	presets:
//	  - name: Lying on the table
//	    orientation: {alpha: 0, beta: 0, gamma: 0}
//
// Entries extend the built-in presets; an entry reusing a built-in name
// replaces it.
func DecodePresets(r io.Reader) (*Presets, error) {
	var f presetFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	ps := DefaultPresets()
	for i, p := range f.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d: name is required", i)
		}
		if err := validateOrientation(p.Orientation); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		ps.set(p)
	}
	return ps, nil
}

// LoadPresets reads a preset file. An empty path gives the built-in
// presets.
func LoadPresets(path string) (*Presets, error) {
	if path == "" {
		return DefaultPresets(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open presets: %w", err)
	}
	defer f.Close()
	return DecodePresets(f)
}

func validateOrientation(o DeviceOrientation) error {
	if o.Alpha < -360 || o.Alpha > 360 {
		return fmt.Errorf("alpha %v out of range [-360, 360]", o.Alpha)
	}
	if o.Beta < -180 || o.Beta > 180 {
		return fmt.Errorf("beta %v out of range [-180, 180]", o.Beta)
	}
	if o.Gamma < -90 || o.Gamma > 90 {
		return fmt.Errorf("gamma %v out of range [-90, 90]", o.Gamma)
	}
	return nil
}
