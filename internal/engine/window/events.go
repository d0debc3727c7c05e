package window

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/icebead/internal/engine/input"
)

// PollEvents drains the SDL queue into in. Only the left mouse button
// drives the pointer.
func (w *Window) PollEvents(in *input.Input) {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			in.Push(input.Event{Type: input.EventQuit})

		case *sdl.WindowEvent:
			switch e.Event {
			case sdl.WINDOWEVENT_SIZE_CHANGED:
				pw, ph := w.DrawableSize()
				in.Push(input.Event{
					Type:        input.EventResize,
					Width:       int(e.Data1),
					Height:      int(e.Data2),
					PixelWidth:  pw,
					PixelHeight: ph,
				})
			case sdl.WINDOWEVENT_LEAVE:
				in.Push(input.Event{Type: input.EventPointerLeave})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				in.Push(input.Event{Type: input.EventKeyDown, Key: translateKey(e.Keysym.Scancode)})
			}

		case *sdl.MouseMotionEvent:
			in.Push(input.Event{
				Type: input.EventPointerMove,
				X:    float32(e.X),
				Y:    float32(e.Y),
			})

		case *sdl.MouseButtonEvent:
			if e.Button != sdl.BUTTON_LEFT {
				continue
			}
			typ := input.EventPointerUp
			if e.Type == sdl.MOUSEBUTTONDOWN {
				typ = input.EventPointerDown
			}
			in.Push(input.Event{
				Type: typ,
				X:    float32(e.X),
				Y:    float32(e.Y),
			})
		}
	}
}

func translateKey(sc sdl.Scancode) input.Key {
	switch sc {
	case sdl.SCANCODE_ESCAPE:
		return input.KeyEscape
	case sdl.SCANCODE_F3:
		return input.KeyF3
	case sdl.SCANCODE_F12:
		return input.KeyF12
	default:
		return input.KeyUnknown
	}
}
