package watch

// State is the lifecycle state of a Watcher.
type State int32

const (
	// StateIdle means no merge is running and the watcher waits for changes.
	StateIdle State = iota
	// StateMerging means the merge command is running.
	StateMerging
	// StateStopped is terminal: the watch handle is closed and no merge starts.
	StateStopped
)

// String returns the lower-case state name, "unknown" for values outside the enum.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMerging:
		return "merging"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}
