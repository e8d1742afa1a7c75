package scene

import (
	"github.com/spaghettifunk/vista/engine/core"
)

// Scene is the root of a node tree. It owns the renderer its renderable
// nodes register with and decides when the tree is live.
type Scene struct {
	NodeGroup
	renderer Renderer
	context  Context
}

// NewScene takes ownership of r: destroying the scene destroys it.
func NewScene(name string, r Renderer) *Scene {
	if r == nil {
		core.Violation("NewScene", "scene %q has no renderer", name)
	}
	s := &Scene{renderer: r}
	s.init(&s.NodeGroup, name)
	s.root = true
	s.context = Context{Scene: s, Renderer: r}
	return s
}

func (s *Scene) Renderer() Renderer {
	return s.renderer
}

// Activate makes the tree live: every node below registers with the
// renderer.
func (s *Scene) Activate() {
	if s.destroyed {
		core.Violation("Scene.Activate", "scene %q is destroyed", s.name)
	}
	s.NodeGroup.Activate(&s.context)
	core.LogDebug("scene '%s' activated with %d children", s.name, len(s.children))
}

// Deactivate unregisters every node below, in reverse order.
func (s *Scene) Deactivate() {
	s.NodeGroup.Deactivate()
	core.LogDebug("scene '%s' deactivated", s.name)
}

// Render executes the renderer once.
func (s *Scene) Render() error {
	if s.destroyed {
		core.Violation("Scene.Render", "scene %q is destroyed", s.name)
	}
	return s.renderer.Execute()
}

// Destroy deactivates the tree, destroys owned nodes and then the renderer.
func (s *Scene) Destroy() {
	if s.destroyed {
		return
	}
	s.NodeGroup.Destroy()
	s.renderer.Destroy()
	core.LogDebug("scene '%s' destroyed", s.name)
}
