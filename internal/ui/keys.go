package ui

import (
	"github.com/0xlemi/fretnote/internal/app"
	"github.com/0xlemi/fretnote/internal/fretboard"
)

// keyEvents maps keys to the two-button events of the practice board.
var keyEvents = map[string]fretboard.Event{
	"m": fretboard.ModeShortPress,
	"M": fretboard.ModeLongPress,
	"n": fretboard.MenuShortPress,
	"N": fretboard.MenuLongPress,
	"b": fretboard.BothPressed,
}

// keyCommand returns the board command bound to key, or nil.
func keyCommand(key string) app.Command {
	if e, ok := keyEvents[key]; ok {
		return func(b *fretboard.Model) { b.HandleEvent(e) }
	}
	switch key {
	case "left", "h":
		return scroll(-1)
	case "right", "l":
		return scroll(1)
	}
	return nil
}

// scroll moves the visible window by delta frets through the control input.
func scroll(delta int) app.Command {
	return func(b *fretboard.Model) {
		b.SetControl(b.ControlForStart(b.State().Frets().Start + delta))
	}
}
