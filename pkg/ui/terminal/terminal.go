// Package terminal provides the terminal input events the host loop consumes.
package terminal

// Event represents a terminal input event.
type Event interface {
	eventMarker()
}

// KeyEvent represents a key press.
type KeyEvent struct {
	Key  Key
	Rune rune
	Alt  bool
	Ctrl bool
}

func (KeyEvent) eventMarker() {}

// ResizeEvent indicates terminal size changed.
type ResizeEvent struct {
	Width  int
	Height int
}

func (ResizeEvent) eventMarker() {}

// MouseEvent represents a pointer sample. Terminals report motion without buttons the same
// way as a release, so both arrive as MouseRelease with MouseNone.
type MouseEvent struct {
	X, Y   int
	Button MouseButton
	Action MouseAction
}

func (MouseEvent) eventMarker() {}

// Pressed reports whether the primary button is held in this sample.
func (e MouseEvent) Pressed() bool {
	return e.Button == MouseLeft && e.Action == MousePress
}

// WakeEvent is posted by the host to break out of a blocking poll. Reason is opaque.
type WakeEvent struct {
	Reason string
}

func (WakeEvent) eventMarker() {}

// MouseButton identifies which mouse button was involved.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// MouseAction identifies what happened with the mouse.
type MouseAction int

const (
	MousePress MouseAction = iota
	MouseRelease
)

// Key represents special keys.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // Regular character
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
	KeyCtrlL
)

// IsQuit reports whether the key asks the host to exit.
func (e KeyEvent) IsQuit() bool {
	switch e.Key {
	case KeyCtrlC, KeyEscape:
		return true
	case KeyRune:
		return e.Rune == 'q' && !e.Alt && !e.Ctrl
	}
	return false
}
