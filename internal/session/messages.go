package session

// Msg is an inbox message. Capture, input and playback sources post messages;
// the host drains them in order on its own loop.
type Msg interface {
	isMsg()
}

// KeyDown is a physical key press. At is seconds since recording start.
type KeyDown struct {
	Code   string
	Label  string
	Repeat bool
	At     float64
}

// KeyUp releases a key so its next press is recorded.
type KeyUp struct {
	Code string
}

// PlayheadTick carries a polled playback position in seconds.
type PlayheadTick struct {
	Position float64
}

// PlaybackEnded is posted once when the position source reports it finished.
type PlaybackEnded struct{}

func (KeyDown) isMsg()       {}
func (KeyUp) isMsg()         {}
func (PlayheadTick) isMsg()  {}
func (PlaybackEnded) isMsg() {}

// PositionSource reports the playback position of an external player.
type PositionSource interface {
	Position() (seconds float64, finished bool)
}

// PositionFunc adapts a function to PositionSource.
type PositionFunc func() (float64, bool)

// Position implements PositionSource.
func (f PositionFunc) Position() (float64, bool) {
	return f()
}
