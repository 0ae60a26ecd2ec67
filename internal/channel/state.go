package channel

// State is the local lifecycle state of the channel. It is distinct from the
// backend's own listening flag, which arrives in status frames.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}
