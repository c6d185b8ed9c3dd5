package stage

import (
	"image/color"

	"github.com/iburimskiy/boot-sequence/internal/surface"
)

// Button is a call-to-action rectangle in screen space.
type Button struct {
	Label      string
	X, Y, W, H float64

	hovered bool
	focused bool
	pressed bool
}

func (b *Button) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.W && y >= b.Y && y <= b.Y+b.H
}

func (b *Button) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Active reports hover or keyboard focus.
func (b *Button) Active() bool { return b.hovered || b.focused }

// Menu is a row of buttons with pointer hover and Tab focus. Hover and focus
// changes are reported once, on entry, so a resting pointer does not keep
// firing.
type Menu struct {
	Buttons []*Button
	focus   int
}

func NewMenu(labels ...string) *Menu {
	m := &Menu{focus: -1}
	for _, l := range labels {
		m.Buttons = append(m.Buttons, &Button{Label: l})
	}
	return m
}

// Layout centers the row horizontally at the given vertical fraction.
func (m *Menu) Layout(viewW, viewH int, bw, bh, gap, yFrac float64) {
	n := float64(len(m.Buttons))
	if n == 0 {
		return
	}
	total := n*bw + (n-1)*gap
	x := (float64(viewW) - total) / 2
	y := float64(viewH)*yFrac - bh/2
	for _, b := range m.Buttons {
		b.X, b.Y, b.W, b.H = x, y, bw, bh
		x += bw + gap
	}
}

// Hover updates hover state and returns the buttons the pointer just entered.
func (m *Menu) Hover(x, y float64) []*Button {
	var entered []*Button
	for _, b := range m.Buttons {
		in := b.Contains(x, y)
		if in && !b.hovered {
			entered = append(entered, b)
		}
		b.hovered = in
	}
	return entered
}

// FocusNext moves keyboard focus to the next button, wrapping around.
func (m *Menu) FocusNext() *Button {
	if len(m.Buttons) == 0 {
		return nil
	}
	if m.focus >= 0 {
		m.Buttons[m.focus].focused = false
	}
	m.focus = (m.focus + 1) % len(m.Buttons)
	b := m.Buttons[m.focus]
	b.focused = true
	return b
}

func (m *Menu) Focused() *Button {
	if m.focus < 0 || m.focus >= len(m.Buttons) {
		return nil
	}
	return m.Buttons[m.focus]
}

// Press marks the hovered button pressed.
func (m *Menu) Press(x, y float64) {
	for _, b := range m.Buttons {
		b.pressed = b.Contains(x, y)
	}
}

// Release returns the button clicked by a press-release pair over it.
func (m *Menu) Release(x, y float64) *Button {
	var clicked *Button
	for _, b := range m.Buttons {
		if b.pressed && b.Contains(x, y) {
			clicked = b
		}
		b.pressed = false
	}
	return clicked
}

var (
	buttonNormal  = color.NRGBA{R: 100, G: 120, B: 160, A: 140}
	buttonHovered = color.NRGBA{R: 80, G: 100, B: 140, A: 200}
	buttonPressed = color.NRGBA{R: 60, G: 80, B: 120, A: 230}
	buttonBorder  = color.NRGBA{R: 150, G: 170, B: 200, A: 255}
	buttonFocus   = color.NRGBA{R: 250, G: 195, B: 66, A: 255}
)

// Draw paints the button frames. Labels are the host's job.
func (m *Menu) Draw(s surface.Surface) {
	if s == nil {
		return
	}
	for _, b := range m.Buttons {
		bg := buttonNormal
		switch {
		case b.pressed:
			bg = buttonPressed
		case b.Active():
			bg = buttonHovered
		}
		s.FillRect(b.X, b.Y, b.W, b.H, bg)
		border := buttonBorder
		if b.focused {
			border = buttonFocus
		}
		s.StrokePolygon([]surface.Point{
			{X: b.X, Y: b.Y}, {X: b.X + b.W, Y: b.Y},
			{X: b.X + b.W, Y: b.Y + b.H}, {X: b.X, Y: b.Y + b.H},
		}, 2, border)
	}
}
