// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/orientation_widget/internal/dom"
	"github.com/relabs-tech/orientation_widget/internal/drag"
	"github.com/relabs-tech/orientation_widget/internal/geometry"
	"github.com/relabs-tech/orientation_widget/internal/logging"
	"github.com/relabs-tech/orientation_widget/internal/platform"
)

const (
	// ShiftDragOrientationSpeed is degrees of alpha per unit of sphere
	// travel while shift is held.
	ShiftDragOrientationSpeed = 16

	AnimatingClass = "is-animating"

	DefaultDragCursor  = "-webkit-grabbing"
	DefaultHoverCursor = "-webkit-grab"
)

// ResetOrientation is the pose restored by the reset button: the device
// standing upright facing the viewer.
var ResetOrientation = DeviceOrientation{Alpha: 0, Beta: 90, Gamma: 0}

// View is the orientation widget mounted on a container element.
type View struct {
	container *dom.Element
	content   *dom.Element
	stage     *dom.Element
	layer     *dom.Element
	box       *dom.Element
	handle    *drag.Handle

	overrideEnabled bool
	orientation     DeviceOrientation
	lastSource      Source
	boxMatrix       geometry.Matrix

	// drag state
	originalBoxMatrix geometry.Matrix
	mouseDownVector   *geometry.Vector

	onChange func(DeviceOrientation)

	presets     *Presets
	registry    *drag.Registry
	platform    platform.Platform
	startDelay  time.Duration
	cursor      string
	hoverCursor string
	logger      *zap.Logger
}

// Option customizes a View at registration.
type Option func(*View)

func WithLogger(l *zap.Logger) Option { return func(v *View) { v.logger = logging.OrNop(l) } }

// WithRegistry shares drag bookkeeping between views; drag.DefaultRegistry
// is used otherwise.
func WithRegistry(r *drag.Registry) Option { return func(v *View) { v.registry = r } }

func WithPlatform(p platform.Platform) Option { return func(v *View) { v.platform = p } }

func WithStartDelay(d time.Duration) Option { return func(v *View) { v.startDelay = d } }

// WithCursors overrides the grabbing and hover cursors. Empty values keep
// the defaults.
func WithCursors(dragCursor, hoverCursor string) Option {
	return func(v *View) {
		if dragCursor != "" {
			v.cursor = dragCursor
		}
		if hoverCursor != "" {
			v.hoverCursor = hoverCursor
		}
	}
}

func WithPresets(p *Presets) Option { return func(v *View) { v.presets = p } }

// Register attaches a widget to container. The element tree is built by
// CreateDeviceOrientation. A nil container gives a headless view that
// still tracks and publishes orientations.
func Register(container *dom.Element, opts ...Option) *View {
	v := &View{
		container:       container,
		overrideEnabled: true,
		boxMatrix:       geometry.Identity(),
		presets:         DefaultPresets(),
		cursor:          DefaultDragCursor,
		hoverCursor:     DefaultHoverCursor,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// CreateDeviceOrientation builds content › stage › layer › box with its six
// faces and makes the stage draggable. Calling it again is a no-op.
func (v *View) CreateDeviceOrientation() {
	if v.content != nil || v.container == nil {
		return
	}

	v.content = v.container.OwnerDocument().CreateElement("div", "orientation-content")
	v.stage = v.content.CreateChild("div", "orientation-stage")
	v.layer = v.stage.CreateChild("div", "orientation-layer")
	v.box = v.layer.CreateChild("section", "orientation-box orientation-element")
	for _, face := range []string{"front", "top", "back", "left", "right", "bottom"} {
		v.box.CreateChild("section", "orientation-"+face+" orientation-element")
	}
	v.container.AppendChild(v.content)

	v.handle = drag.Install(v.stage, drag.Options{
		Start:       v.onBoxDragStart,
		Move:        v.onBoxDrag,
		Cursor:      v.cursor,
		HoverCursor: v.hoverCursor,
		StartDelay:  v.startDelay,
		Platform:    v.platform,
		Registry:    v.registry,
		Logger:      v.logger,
	})

	v.applyTransform(v.orientation)
	v.logger.Debug("orientation widget created")
}

// Destroy removes the drag handle. The element tree stays in place.
func (v *View) Destroy() {
	if v.handle != nil {
		v.handle.Uninstall()
		v.handle = nil
	}
}

func (v *View) Content() *dom.Element { return v.content }
func (v *View) Stage() *dom.Element   { return v.stage }
func (v *View) Layer() *dom.Element   { return v.layer }

// Matrix is the rotation of the box for the current orientation.
func (v *View) Matrix() geometry.Matrix { return v.boxMatrix }

// DeviceOrientation returns the last orientation set, unrounded.
func (v *View) DeviceOrientation() DeviceOrientation { return v.orientation }

// LastSource is the source of the last orientation set; change listeners
// may read it.
func (v *View) LastSource() Source { return v.lastSource }

func (v *View) Presets() *Presets { return v.presets }

func (v *View) Dragging() bool { return v.handle != nil && v.handle.Dragging() }

// OnChangeDeviceOrientation sets the single change listener; a later call
// replaces the earlier one.
func (v *View) OnChangeDeviceOrientation(cb func(DeviceOrientation)) {
	v.onChange = cb
}

// SetOverrideEnabled toggles whether dragging may change the orientation.
func (v *View) SetOverrideEnabled(enabled bool) {
	v.overrideEnabled = enabled
	if v.stage != nil {
		v.stage.ToggleClass("is-disabled", !enabled)
	}
}

func (v *View) OverrideEnabled() bool { return v.overrideEnabled }

// ResetDeviceOrientation returns the device to ResetOrientation.
func (v *View) ResetDeviceOrientation() {
	o := ResetOrientation
	v.SetDeviceOrientation(&o, SourceResetButton)
}

// SelectPreset applies the named preset.
func (v *View) SelectPreset(name string) error {
	p, ok := v.presets.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	o := p.Orientation
	v.SetDeviceOrientation(&o, SourceSelectPreset)
	return nil
}

// SetFromUserInput applies three text fields. It reports false when the
// input was rejected as a whole.
func (v *View) SetFromUserInput(alpha, beta, gamma string) bool {
	o := ParseUserInput(alpha, beta, gamma)
	if o == nil {
		return false
	}
	v.SetDeviceOrientation(o, SourceUserInput)
	return true
}

// SetDeviceOrientation makes o the current orientation and notifies the
// change listener. Every source except dragging animates the transition.
func (v *View) SetDeviceOrientation(o *DeviceOrientation, src Source) {
	if o == nil {
		return
	}

	if v.stage != nil {
		v.stage.ToggleClass(AnimatingClass, src != SourceUserDrag)
	}
	v.applyTransform(*o)
	v.boxMatrix = geometry.FromDeviceOrientation(o.Alpha, o.Beta, o.Gamma)
	v.orientation = *o
	v.lastSource = src

	if v.onChange != nil {
		v.onChange(o.Rounded())
	}
	v.logger.Debug("orientation changed", zap.String("source", string(src)), zap.Stringer("orientation", *o))
}

func (v *View) applyTransform(o DeviceOrientation) {
	if v.layer == nil {
		return
	}
	v.layer.SetStyle("transform", LayerTransform(o))
}

// LayerTransform is the CSS transform showing o on the layer element.
func LayerTransform(o DeviceOrientation) string {
	return fmt.Sprintf("rotateY(%sdeg) rotateX(%sdeg) rotateZ(%sdeg)",
		formatAngle(o.Alpha), formatAngle(-o.Beta), formatAngle(o.Gamma))
}

func (v *View) onBoxDragStart(ev *dom.Event) bool {
	if !v.overrideEnabled {
		return false
	}
	v.mouseDownVector = v.calculateRadiusVector(ev.X, ev.Y)
	v.originalBoxMatrix = v.boxMatrix
	if v.mouseDownVector == nil {
		return false
	}
	dom.Consume(ev, true)
	return true
}

func (v *View) onBoxDrag(ev *dom.Event) bool {
	mouseMoveVector := v.calculateRadiusVector(ev.X, ev.Y)
	if mouseMoveVector == nil || v.mouseDownVector == nil {
		return false
	}
	dom.Consume(ev, true)

	var rotation geometry.Matrix
	if ev.ShiftKey {
		angle := (mouseMoveVector.X - v.mouseDownVector.X) * ShiftDragOrientationSpeed
		rotation = geometry.RotationAxisAngle(0, 0, 1, angle)
	} else {
		axis := geometry.Cross(*v.mouseDownVector, *mouseMoveVector)
		angle := geometry.AngleBetween(*v.mouseDownVector, *mouseMoveVector)
		// Screen x/y/z map to device -x/z/y.
		rotation = geometry.RotationAxisAngle(-axis.X, axis.Z, axis.Y, angle)
	}
	current := rotation.Multiply(v.originalBoxMatrix)

	e := geometry.EulerFromRotationMatrix(current)
	v.SetDeviceOrientation(&DeviceOrientation{Alpha: e.Alpha, Beta: e.Beta, Gamma: e.Gamma}, SourceUserDrag)
	return false
}

// calculateRadiusVector projects a client point onto the unit trackball
// inscribed in the stage, nil when the stage has no size.
func (v *View) calculateRadiusVector(x, y float64) *geometry.Vector {
	if v.stage == nil {
		return nil
	}
	rect := v.stage.BoundingClientRect()
	radius := math.Max(rect.Width, rect.Height) / 2
	if radius <= 0 {
		return nil
	}
	sphereX := (x - rect.Left - rect.Width/2) / radius
	sphereY := (y - rect.Top - rect.Height/2) / radius
	sqrSum := sphereX*sphereX + sphereY*sphereY
	if sqrSum > 0.5 {
		return &geometry.Vector{X: sphereX, Y: sphereY, Z: 0.5 / math.Sqrt(sqrSum)}
	}
	return &geometry.Vector{X: sphereX, Y: sphereY, Z: math.Sqrt(1 - sqrSum)}
}
