package input

import (
	gameinput "github.com/cbodonnell/blockfall/pkg/input"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ButtonKeys maps the keyboard keys that behave like the game buttons.
// They are held, so they repeat.
var ButtonKeys = map[ebiten.Key]gameinput.Action{
	ebiten.KeyRight: gameinput.ActionRight,
	ebiten.KeyDown:  gameinput.ActionDrop,
	ebiten.KeyUp:    gameinput.ActionRotate,
	ebiten.KeyLeft:  gameinput.ActionLeft,
	ebiten.KeySpace: gameinput.ActionDrop,
}

// GamepadButtons maps standard gamepad buttons to the game buttons.
var GamepadButtons = map[ebiten.StandardGamepadButton]gameinput.Action{
	ebiten.StandardGamepadButtonLeftRight:   gameinput.ActionRight,
	ebiten.StandardGamepadButtonLeftBottom:  gameinput.ActionDrop,
	ebiten.StandardGamepadButtonRightBottom: gameinput.ActionRotate,
	ebiten.StandardGamepadButtonLeftLeft:    gameinput.ActionLeft,
	ebiten.StandardGamepadButtonCenterRight: gameinput.ActionPause,
}

// Devices feeds ebiten's input state to the game's input sources once per update.
type Devices struct {
	Buttons  *gameinput.Buttons
	Joystick *gameinput.Joystick
	Keys     *gameinput.Keys

	chars []rune
}

func (d *Devices) Update() {
	for key, action := range ButtonKeys {
		if inpututil.IsKeyJustPressed(key) {
			d.Buttons.Press(action)
		}
		if inpututil.IsKeyJustReleased(key) {
			d.Buttons.Release(action)
		}
	}

	d.updateGamepad()

	d.chars = ebiten.AppendInputChars(d.chars[:0])
	for _, r := range d.chars {
		d.Keys.PushRune(r)
	}
}

// updateGamepad reads the first gamepad with the standard layout, if any.
func (d *Devices) updateGamepad() {
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		d.Joystick.SetAxes(
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal),
			ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical),
		)
		for button, action := range GamepadButtons {
			if inpututil.IsStandardGamepadButtonJustPressed(id, button) {
				d.Buttons.Press(action)
			}
			if inpututil.IsStandardGamepadButtonJustReleased(id, button) {
				d.Buttons.Release(action)
			}
		}
		return
	}
	d.Joystick.SetAxes(0, 0)
}

// IsQuitJustPressed reports whether the player asked to close the window.
func IsQuitJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}
