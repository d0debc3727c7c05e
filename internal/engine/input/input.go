// Package input defines host-independent input events and a per-frame
// event queue.
package input

// EventType identifies an input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventResize
	EventKeyDown
	EventPointerDown
	EventPointerMove
	EventPointerUp
	EventPointerLeave
)

func (t EventType) String() string {
	switch t {
	case EventNone:
		return "none"
	case EventQuit:
		return "quit"
	case EventResize:
		return "resize"
	case EventKeyDown:
		return "key_down"
	case EventPointerDown:
		return "pointer_down"
	case EventPointerMove:
		return "pointer_move"
	case EventPointerUp:
		return "pointer_up"
	case EventPointerLeave:
		return "pointer_leave"
	default:
		return "unknown"
	}
}

// Key is a keyboard key the viewer reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyF3
	KeyF12
)

// Event represents a processed input event.
//
// Pointer coordinates are window coordinates with the origin at the top
// left. Resize carries both the window size, which pointer coordinates are
// measured in, and the drawable size in pixels.
type Event struct {
	Type        EventType
	Key         Key
	X, Y        float32
	Width       int
	Height      int
	PixelWidth  int
	PixelHeight int
}

// Input collects the events of one frame.
type Input struct {
	events []Event
	quit   bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Begin clears the events of the previous frame.
func (i *Input) Begin() {
	i.events = i.events[:0]
}

// Push queues an event for this frame.
func (i *Input) Push(e Event) {
	if e.Type == EventQuit {
		i.quit = true
	}
	i.events = append(i.events, e)
}

// Events returns the events queued since Begin.
func (i *Input) Events() []Event {
	return i.events
}

// QuitRequested reports whether a quit event has ever been pushed.
func (i *Input) QuitRequested() bool {
	return i.quit
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(key Key) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == key {
			return true
		}
	}
	return false
}
