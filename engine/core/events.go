package core

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed.
	// Data: *KeyEvent.
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released.
	// Data: *KeyEvent.
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Mouse button pressed.
	// Data: *MouseEvent with Button and the cursor position.
	EVENT_CODE_BUTTON_PRESSED SystemEventCode = 0x04

	// Mouse button released.
	// Data: *MouseEvent with Button and the cursor position.
	EVENT_CODE_BUTTON_RELEASED SystemEventCode = 0x05

	// Mouse moved.
	// Data: *MouseEvent with X/Y.
	EVENT_CODE_MOUSE_MOVED SystemEventCode = 0x06

	// Mouse wheel scrolled.
	// Data: *MouseEvent with Scroll.
	EVENT_CODE_MOUSE_WHEEL SystemEventCode = 0x07

	// Resized/resolution changed from the OS.
	// Data: *SystemEvent with WindowWidth/WindowHeight.
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	// An asset was reloaded from disk and its version bumped.
	// Data: *AssetEvent.
	EVENT_CODE_ASSET_RELOADED SystemEventCode = 0x09

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventContext struct {
	Type   SystemEventCode
	Sender interface{}
	Data   interface{}
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type AssetEvent struct {
	Path    string
	Version uint64
}

// Should return true if handled.
type FnOnEvent func(ctx EventContext) bool

type registeredEvent struct {
	id       uint64
	callback FnOnEvent
}

// EventBus dispatches events synchronously on the calling goroutine.
// It is only used from the frame loop; producers on other goroutines post
// through a TaskQueue first.
type EventBus struct {
	registered map[SystemEventCode][]registeredEvent
	ids        *HandleAllocator
}

func NewEventBus() *EventBus {
	return &EventBus{
		registered: make(map[SystemEventCode][]registeredEvent),
		ids:        NewHandleAllocator(),
	}
}

// Register adds a listener for code and returns an id usable with Unregister.
func (b *EventBus) Register(code SystemEventCode, onEvent FnOnEvent) uint64 {
	id := b.ids.Next()
	b.registered[code] = append(b.registered[code], registeredEvent{id: id, callback: onEvent})
	return id
}

// Unregister removes the listener with the given id, reporting whether it was found.
func (b *EventBus) Unregister(code SystemEventCode, id uint64) bool {
	events := b.registered[code]
	for i, e := range events {
		if e.id == id {
			b.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// Fire delivers ctx to listeners in registration order. If a handler returns
// true the event is considered handled and is not passed on.
func (b *EventBus) Fire(ctx EventContext) bool {
	for _, e := range b.registered[ctx.Type] {
		if e.callback(ctx) {
			return true
		}
	}
	return false
}

func (b *EventBus) Shutdown() {
	b.registered = make(map[SystemEventCode][]registeredEvent)
}
