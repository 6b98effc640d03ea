package orion

import (
	"github.com/oliverbestmann/postfx/glimpse"
	"github.com/oliverbestmann/postfx/glm"
)

type KeyCode = glimpse.Key
type MouseButton = glimpse.MouseButton

// MousePosition returns the cursor position in window coordinates.
func MousePosition() glm.Vec2f {
	inputState := currentInputState.Get()

	return glm.Vec2f{
		inputState.Mouse.CursorX,
		inputState.Mouse.CursorY,
	}
}

// MouseDelta returns the distance the cursor moved during the last frame.
func MouseDelta() glm.Vec2f {
	inputState := currentInputState.Get()

	return glm.Vec2f{
		inputState.Mouse.DeltaX,
		inputState.Mouse.DeltaY,
	}
}

func IsKeyPressed(key KeyCode) bool {
	inputState := currentInputState.Get()
	return inputState.Keys.Pressed[key]
}

func IsKeyJustPressed(key KeyCode) bool {
	inputState := currentInputState.Get()
	return inputState.Keys.JustPressed[key]
}

func IsKeyJustReleased(key KeyCode) bool {
	inputState := currentInputState.Get()
	return inputState.Keys.JustReleased[key]
}

func IsMouseButtonPressed(button MouseButton) bool {
	inputState := currentInputState.Get()
	return inputState.Mouse.Pressed[button]
}

func IsMouseButtonJustPressed(button MouseButton) bool {
	inputState := currentInputState.Get()
	return inputState.Mouse.JustPressed[button]
}

func IsMouseButtonJustReleased(button MouseButton) bool {
	inputState := currentInputState.Get()
	return inputState.Mouse.JustReleased[button]
}
