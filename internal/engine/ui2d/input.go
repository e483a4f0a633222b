package ui2d

// InputState holds per-frame mouse state for the overlay and panels.
type InputState struct {
	MouseX      float32
	MouseY      float32
	MouseDeltaX float32
	MouseDeltaY float32

	MouseLeftDown   bool
	MouseRightDown  bool
	MouseMiddleDown bool

	MouseLeftPressed  bool
	MouseRightPressed bool

	MouseLeftReleased  bool
	MouseRightReleased bool

	ScrollY float32

	KeyShift bool

	// Previous frame state for edge detection
	prevMouseLeft  bool
	prevMouseRight bool
	prevMouseX     float32
	prevMouseY     float32
}

// Update computes deltas and press/release edges. Call at the start of
// each frame after feeding raw input values.
func (i *InputState) Update() {
	i.MouseDeltaX = i.MouseX - i.prevMouseX
	i.MouseDeltaY = i.MouseY - i.prevMouseY

	i.MouseLeftPressed = i.MouseLeftDown && !i.prevMouseLeft
	i.MouseRightPressed = i.MouseRightDown && !i.prevMouseRight

	i.MouseLeftReleased = !i.MouseLeftDown && i.prevMouseLeft
	i.MouseRightReleased = !i.MouseRightDown && i.prevMouseRight

	i.prevMouseLeft = i.MouseLeftDown
	i.prevMouseRight = i.MouseRightDown
	i.prevMouseX = i.MouseX
	i.prevMouseY = i.MouseY
}

// EndFrame clears per-frame input state.
func (i *InputState) EndFrame() {
	i.ScrollY = 0
}

// IsMouseInRect checks if the mouse is within a rectangle.
func (i *InputState) IsMouseInRect(x, y, w, h float32) bool {
	return i.MouseX >= x && i.MouseX < x+w &&
		i.MouseY >= y && i.MouseY < y+h
}
