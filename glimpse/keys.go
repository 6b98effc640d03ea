package glimpse

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type Key uint16

const (
	KeyUnknown Key = iota
	KeySpace
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyShift
	KeyControl
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

var keyNames = map[Key]string{
	KeySpace:     "Space",
	KeyEscape:    "Escape",
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyBackspace: "Backspace",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyShift:     "Shift",
	KeyControl:   "Control",
}

func (k Key) String() string {
	switch {
	case k >= Key0 && k <= Key9:
		return string(rune('0' + k - Key0))
	case k >= KeyA && k <= KeyZ:
		return string(rune('A' + k - KeyA))
	case k >= KeyF1 && k <= KeyF12:
		return fmt.Sprintf("F%d", k-KeyF1+1)
	}

	if name, ok := keyNames[k]; ok {
		return name
	}

	return "Unknown"
}

var glfwToKey = buildKeyMap()

func buildKeyMap() map[glfw.Key]Key {
	keys := map[glfw.Key]Key{
		glfw.KeySpace:        KeySpace,
		glfw.KeyEscape:       KeyEscape,
		glfw.KeyEnter:        KeyEnter,
		glfw.KeyTab:          KeyTab,
		glfw.KeyBackspace:    KeyBackspace,
		glfw.KeyLeft:         KeyLeft,
		glfw.KeyRight:        KeyRight,
		glfw.KeyUp:           KeyUp,
		glfw.KeyDown:         KeyDown,
		glfw.KeyLeftShift:    KeyShift,
		glfw.KeyRightShift:   KeyShift,
		glfw.KeyLeftControl:  KeyControl,
		glfw.KeyRightControl: KeyControl,
	}

	// glfw key codes of digits, letters and function keys are consecutive
	for idx := range 10 {
		keys[glfw.Key0+glfw.Key(idx)] = Key0 + Key(idx)
	}

	for idx := range 26 {
		keys[glfw.KeyA+glfw.Key(idx)] = KeyA + Key(idx)
	}

	for idx := range 12 {
		keys[glfw.KeyF1+glfw.Key(idx)] = KeyF1 + Key(idx)
	}

	return keys
}
