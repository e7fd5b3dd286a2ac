// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/relabs-tech/orientation_widget/internal/orientation"
)

var (
	snapshotBackground = color.RGBA{R: 0xf4, G: 0xf4, B: 0xf6, A: 0xff}
	snapshotText       = color.RGBA{R: 0x20, G: 0x20, B: 0x28, A: 0xff}
)

// readout height reserved above the stage, three lines of Face7x13
const snapshotHeader = 3 * 13

// snapshotCenter is where the device body is centred.
func snapshotCenter(width, height int) point2 {
	return point2{X: float64(width) / 2, Y: float64(snapshotHeader) + float64(height-snapshotHeader)/2}
}

// RenderSnapshot draws the device body for o with an angle readout.
func RenderSnapshot(o orientation.DeviceOrientation, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(snapshotBackground), image.Point{}, draw.Src)

	c := snapshotCenter(width, height)
	scale := 0.6 * float64(min(width, height-snapshotHeader))
	for _, f := range projectBox(o, c.X, c.Y, scale, scale) {
		r := vector.NewRasterizer(width, height)
		r.MoveTo(float32(f.points[0].X), float32(f.points[0].Y))
		for _, p := range f.points[1:] {
			r.LineTo(float32(p.X), float32(p.Y))
		}
		r.ClosePath()
		r.Draw(img, img.Bounds(), image.NewUniform(shade(f.color, f.light)), image.Point{})
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(snapshotText),
		Face: basicfont.Face7x13,
	}
	drawer.Dot = fixed.P(4, 11)
	drawer.DrawString(fmt.Sprintf("alpha %8.2f", o.Alpha))
	drawer.Dot = fixed.P(4, 24)
	drawer.DrawString(fmt.Sprintf("beta  %8.2f", o.Beta))
	drawer.Dot = fixed.P(4, 37)
	drawer.DrawString(fmt.Sprintf("gamma %8.2f", o.Gamma))

	return img
}

// EncodeSnapshot writes RenderSnapshot as PNG.
func EncodeSnapshot(w io.Writer, o orientation.DeviceOrientation, width, height int) error {
	if err := png.Encode(w, RenderSnapshot(o, width, height)); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
