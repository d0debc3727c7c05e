package input

import "testing"

func TestInputFrame(t *testing.T) {
	in := New()
	in.Push(Event{Type: EventPointerDown, X: 10, Y: 20})
	in.Push(Event{Type: EventKeyDown, Key: KeyF12})

	if got := len(in.Events()); got != 2 {
		t.Fatalf("events = %d, want 2", got)
	}
	if !in.IsKeyPressed(KeyF12) {
		t.Error("F12 should be pressed")
	}
	if in.IsKeyPressed(KeyEscape) {
		t.Error("Escape should not be pressed")
	}

	in.Begin()
	if len(in.Events()) != 0 {
		t.Error("Begin should clear events")
	}
	if in.IsKeyPressed(KeyF12) {
		t.Error("key press must not survive Begin")
	}
}

func TestInputQuitSticks(t *testing.T) {
	in := New()
	if in.QuitRequested() {
		t.Fatal("quit before any event")
	}
	in.Push(Event{Type: EventQuit})
	in.Begin()
	if !in.QuitRequested() {
		t.Error("quit must survive Begin")
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		typ  EventType
		want string
	}{
		{EventNone, "none"},
		{EventQuit, "quit"},
		{EventResize, "resize"},
		{EventKeyDown, "key_down"},
		{EventPointerDown, "pointer_down"},
		{EventPointerMove, "pointer_move"},
		{EventPointerUp, "pointer_up"},
		{EventPointerLeave, "pointer_leave"},
		{EventType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
