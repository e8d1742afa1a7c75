package platform

import (
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/vista/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform is the window the engine runs in. Window events become engine
// events on the bus and keyboard or mouse state in the input.
//
// The window has no client API: frames are rendered off screen and are only
// visible through screenshots.
type Platform struct {
	Window    *glfw.Window
	bus       *core.EventBus
	input     *core.Input
	startTime float64
}

func New(bus *core.EventBus, input *core.Input) (*Platform, error) {
	if bus == nil || input == nil {
		return nil, core.Errorf(core.ErrInvalidConfig, "platform requires an event bus and an input")
	}
	return &Platform{bus: bus, input: input}, nil
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	// The window carries no GL context; drawing goes through a gpu.Device.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetScrollCallback(p.scrollCallback)
	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	p.startTime = glfw.GetTime()
	core.LogInfo("window '%s' opened at %dx%d", applicationName, width, height)
	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events, firing their callbacks.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

// AbsoluteTime is the number of seconds since Startup.
func (p *Platform) AbsoluteTime() float64 {
	return glfw.GetTime() - p.startTime
}

func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// VulkanLoader returns the loader entry point and the instance extensions
// the window needs, or false when the system has no Vulkan loader.
func (p *Platform) VulkanLoader() (unsafe.Pointer, []string, bool) {
	if !glfw.VulkanSupported() {
		return nil, nil, false
	}
	return glfw.GetVulkanGetInstanceProcAddress(), p.Window.GetRequiredInstanceExtensions(), true
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		p.bus.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT, Sender: p})
	}
	if key < 0 {
		return
	}
	p.input.ProcessKey(core.Key(key), action != glfw.Release)
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	var b core.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = core.ButtonLeft
	case glfw.MouseButtonRight:
		b = core.ButtonRight
	case glfw.MouseButtonMiddle:
		b = core.ButtonMiddle
	default:
		return
	}
	p.input.ProcessButton(b, action == glfw.Press)
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	p.input.ProcessMouseMove(int32(xpos), int32(ypos))
}

func (p *Platform) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	var delta int8
	switch {
	case yoff > 0:
		delta = 1
	case yoff < 0:
		delta = -1
	default:
		return
	}
	p.input.ProcessMouseWheel(delta)
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.bus.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT, Sender: p})
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.bus.Fire(core.EventContext{
		Type:   core.EVENT_CODE_RESIZED,
		Sender: p,
		Data:   &core.SystemEvent{WindowWidth: uint32(width), WindowHeight: uint32(height)},
	})
}
