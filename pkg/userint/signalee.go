package userint

// Signalee is anything that can become the signal during signal testing. Widgets and parts
// are signalees; range items are signaled through Range.SignalItem.
type Signalee interface {
	// Signal makes the receiver the current signal. It fails outside signal testing.
	Signal() error
	IsEntered() bool
	IsGrabbed() bool
	IsSignaled() bool
	State() *State
	SetContext(ctx any)
	Context() any
}

var (
	_ Signalee = (*Widget)(nil)
	_ Signalee = (*Part)(nil)
)
