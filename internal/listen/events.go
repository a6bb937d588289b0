package listen

// State is the playback state of a Scheduler.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	}
	return "idle"
}

// EventKind identifies a progress notification.
type EventKind int

const (
	EventStarted EventKind = iota + 1
	EventWordStarted
	EventWordDone
	EventPaused
	EventResumed
	EventStopped
	EventFinished
	EventSpoken
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventWordStarted:
		return "word-started"
	case EventWordDone:
		return "word-done"
	case EventPaused:
		return "paused"
	case EventResumed:
		return "resumed"
	case EventStopped:
		return "stopped"
	case EventFinished:
		return "finished"
	case EventSpoken:
		return "spoken"
	}
	return "unknown"
}

// Event reports scheduler progress to the observer.
type Event struct {
	Kind EventKind

	// Index is the queue position of Word, or -1 for words spoken with Say.
	Index int
	Word  string
	Total int

	// Generation is the scheduler generation the event belongs to.
	Generation uint64

	// Err is the synthesis error for EventWordDone and EventSpoken.
	Err error
}

// Progress is a point-in-time view of the queue.
type Progress struct {
	State      State
	Cursor     int
	Total      int
	Word       string
	Words      []string
	Generation uint64
}
