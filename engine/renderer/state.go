package renderer

// State is a renderer lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateResizing
	StateDestroyed
)

var stateNames = map[State]string{
	StateUninitialized: "uninitialized",
	StateReady:         "ready",
	StateResizing:      "resizing",
	StateDestroyed:     "destroyed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}
