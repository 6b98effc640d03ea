package glimpse

type UpdateInputState func() InputState

type MouseButton uint32

// ButtonState tracks buttons of a single device between two ticks.
type ButtonState[K comparable] struct {
	// buttons that are currently held down
	Pressed map[K]bool

	// buttons that went down since the last tick
	JustPressed map[K]bool

	// buttons that went up since the last tick
	JustReleased map[K]bool
}

func (b *ButtonState[K]) press(key K) {
	set(&b.Pressed, key, true)
	set(&b.JustPressed, key, true)
}

func (b *ButtonState[K]) release(key K) {
	set(&b.Pressed, key, false)
	set(&b.JustReleased, key, true)
}

func (b *ButtonState[K]) nextTick() {
	clear(b.JustPressed)
	clear(b.JustReleased)
}

type KeysState = ButtonState[Key]

type MouseState struct {
	ButtonState[MouseButton]

	CursorX, CursorY float32

	// movement accumulated since the last tick
	DeltaX, DeltaY float32

	// false until the first cursor event
	hasPosition bool
}

func (m *MouseState) position(x, y float32) {
	if m.hasPosition {
		m.DeltaX += x - m.CursorX
		m.DeltaY += y - m.CursorY
	}

	m.CursorX = x
	m.CursorY = y
	m.hasPosition = true
}

func (m *MouseState) nextTick() {
	m.ButtonState.nextTick()

	m.DeltaX = 0
	m.DeltaY = 0
}

type InputState struct {
	Keys  KeysState
	Mouse MouseState
}

func (s *InputState) nextTick() {
	s.Keys.nextTick()
	s.Mouse.nextTick()
}

func set[K comparable](m *map[K]bool, key K, value bool) {
	if *m == nil {
		*m = map[K]bool{}
	}

	(*m)[key] = value
}
