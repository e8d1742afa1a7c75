package core

// Key follows the GLFW key numbering so platforms can convert directly.
type Key uint16

const KeySpace Key = 32

// Letters match their upper case ASCII code.
const (
	KeyA Key = iota + 'A'
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
)

const (
	KeyEscape    Key = 256
	KeyEnter     Key = 257
	KeyTab       Key = 258
	KeyBackspace Key = 259
	KeyRight     Key = 262
	KeyLeft      Key = 263
	KeyDown      Key = 264
	KeyUp        Key = 265

	KeyF1  Key = 290
	KeyF2  Key = 291
	KeyF3  Key = 292
	KeyF4  Key = 293
	KeyF5  Key = 294
	KeyF6  Key = 295
	KeyF7  Key = 296
	KeyF8  Key = 297
	KeyF9  Key = 298
	KeyF10 Key = 299
	KeyF11 Key = 300
	KeyF12 Key = 301

	KeyLeftShift    Key = 340
	KeyLeftControl  Key = 341
	KeyLeftAlt      Key = 342
	KeyRightShift   Key = 344
	KeyRightControl Key = 345
	KeyRightAlt     Key = 346

	KeyLast Key = 348
)

type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
	maxButtons
)

type KeyEvent struct {
	Key Key
}

type MouseEvent struct {
	Button Button
	X, Y   int32
	Scroll int8
}

type keyboardState struct {
	keys [KeyLast + 1]bool
}

type mouseState struct {
	x, y    int32
	buttons [maxButtons]bool
}

// Input keeps the keyboard and mouse state of the current and the previous
// frame. Platforms feed it through the Process methods, which fire the
// matching events on the bus when the state changes.
type Input struct {
	bus              *EventBus
	keyboardCurrent  keyboardState
	keyboardPrevious keyboardState
	mouseCurrent     mouseState
	mousePrevious    mouseState
}

func NewInput(bus *EventBus) *Input {
	return &Input{bus: bus}
}

// Update ends the frame: the current state becomes the previous one.
func (in *Input) Update() {
	in.keyboardPrevious = in.keyboardCurrent
	in.mousePrevious = in.mouseCurrent
}

// keyboard input
func (in *Input) IsKeyDown(key Key) bool {
	return key <= KeyLast && in.keyboardCurrent.keys[key]
}

func (in *Input) IsKeyUp(key Key) bool {
	return !in.IsKeyDown(key)
}

func (in *Input) WasKeyDown(key Key) bool {
	return key <= KeyLast && in.keyboardPrevious.keys[key]
}

func (in *Input) WasKeyUp(key Key) bool {
	return !in.WasKeyDown(key)
}

// KeyPressed is true only on the frame the key went down.
func (in *Input) KeyPressed(key Key) bool {
	return in.IsKeyDown(key) && in.WasKeyUp(key)
}

func (in *Input) ProcessKey(key Key, pressed bool) {
	if key > KeyLast {
		return
	}
	// Only handle this if the state actually changed.
	if in.keyboardCurrent.keys[key] == pressed {
		return
	}
	in.keyboardCurrent.keys[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	in.fire(code, &KeyEvent{Key: key})
}

// mouse input
func (in *Input) IsButtonDown(button Button) bool {
	return button < maxButtons && in.mouseCurrent.buttons[button]
}

func (in *Input) WasButtonDown(button Button) bool {
	return button < maxButtons && in.mousePrevious.buttons[button]
}

func (in *Input) MousePosition() (int32, int32) {
	return in.mouseCurrent.x, in.mouseCurrent.y
}

func (in *Input) PreviousMousePosition() (int32, int32) {
	return in.mousePrevious.x, in.mousePrevious.y
}

func (in *Input) ProcessButton(button Button, pressed bool) {
	if button >= maxButtons || in.mouseCurrent.buttons[button] == pressed {
		return
	}
	in.mouseCurrent.buttons[button] = pressed

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	in.fire(code, &MouseEvent{Button: button, X: in.mouseCurrent.x, Y: in.mouseCurrent.y})
}

func (in *Input) ProcessMouseMove(x, y int32) {
	if in.mouseCurrent.x == x && in.mouseCurrent.y == y {
		return
	}
	in.mouseCurrent.x, in.mouseCurrent.y = x, y
	in.fire(EVENT_CODE_MOUSE_MOVED, &MouseEvent{X: x, Y: y})
}

func (in *Input) ProcessMouseWheel(delta int8) {
	in.fire(EVENT_CODE_MOUSE_WHEEL, &MouseEvent{Scroll: delta})
}

func (in *Input) fire(code SystemEventCode, data interface{}) {
	if in.bus == nil {
		return
	}
	in.bus.Fire(EventContext{Type: code, Sender: in, Data: data})
}
