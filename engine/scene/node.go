// Package scene is the spatial hierarchy. Nodes carry a local transform and
// compose their world transform from their ancestors on demand. Renderable
// nodes register themselves with the Scene's renderer while the tree they
// belong to is live.
//
// The scene graph must only be used from the render thread.
package scene

import (
	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/math"
	"github.com/spaghettifunk/vista/engine/renderer"
)

type State uint8

const (
	StateDetached State = iota
	StateAttachedInactive
	StateAttachedActive
)

func (s State) String() string {
	switch s {
	case StateDetached:
		return "detached"
	case StateAttachedInactive:
		return "attached-inactive"
	case StateAttachedActive:
		return "attached-active"
	}
	return "unknown"
}

// Ownership tags a child reference. Owned children are destroyed with their
// group; borrowed children are only detached.
type Ownership uint8

const (
	Owned Ownership = iota
	Borrowed
)

func (o Ownership) String() string {
	if o == Borrowed {
		return "borrowed"
	}
	return "owned"
}

// Renderer is the part of a renderer the scene graph drives.
type Renderer interface {
	AddCamera(renderer.CameraParams) renderer.Handle
	UpdateCamera(renderer.Handle, renderer.CameraParams)
	RemoveCamera(renderer.Handle)
	AddLight(renderer.LightParams) renderer.Handle
	UpdateLight(renderer.Handle, renderer.LightParams)
	RemoveLight(renderer.Handle)
	AddGeometry(renderer.GeometryParams) renderer.Handle
	UpdateGeometry(renderer.Handle, renderer.GeometryParams)
	RemoveGeometry(renderer.Handle)
	Execute() error
	Destroy()
}

// Context is handed down the tree on activation. Every active node holds the
// context of its root.
type Context struct {
	Scene    *Scene
	Renderer Renderer
}

// Node is implemented by SpatialNode and every type embedding it.
type Node interface {
	Spatial() *SpatialNode
	// Activate is called when the node joins a live tree.
	Activate(ctx *Context)
	// Deactivate is called before the node leaves a live tree.
	Deactivate()
	// TransformChanged is called on active nodes whose world transform moved.
	TransformChanged()
	Update(dt float64)
	// Bounds returns the world space extents, if the node has any.
	Bounds() (math.Extents3D, bool)
	Destroy()
}

// SpatialNode is a node with a local transform and no content. Types
// embedding it must call init with themselves so notifications reach the
// outer type.
type SpatialNode struct {
	name      string
	self      Node
	parent    *NodeGroup
	local     math.Mat4
	ctx       *Context
	root      bool
	destroyed bool

	// OnUpdate, when set, runs on every Update.
	OnUpdate func(n Node, dt float64)
}

func NewSpatialNode(name string) *SpatialNode {
	n := &SpatialNode{}
	n.init(n, name)
	return n
}

func (n *SpatialNode) init(self Node, name string) {
	n.self = self
	n.name = name
	n.local = math.NewMat4Identity()
}

func (n *SpatialNode) Spatial() *SpatialNode {
	return n
}

func (n *SpatialNode) Name() string {
	return n.name
}

func (n *SpatialNode) Transform() math.Mat4 {
	return n.local
}

// SetTransform replaces the local transform. Active nodes are notified so
// they can push their new world state.
func (n *SpatialNode) SetTransform(m math.Mat4) {
	n.local = m
	if n.ctx != nil {
		n.self.TransformChanged()
	}
}

// WorldTransform composes the local transform with every ancestor. It is
// computed on each call.
func (n *SpatialNode) WorldTransform() math.Mat4 {
	if n.parent == nil {
		return n.local
	}
	return n.local.Mul(n.parent.WorldTransform())
}

func (n *SpatialNode) Parent() *NodeGroup {
	return n.parent
}

func (n *SpatialNode) IsActive() bool {
	return n.ctx != nil
}

func (n *SpatialNode) IsDestroyed() bool {
	return n.destroyed
}

func (n *SpatialNode) State() State {
	switch {
	case n.ctx != nil:
		return StateAttachedActive
	case n.parent != nil:
		return StateAttachedInactive
	}
	return StateDetached
}

// Context returns the root context while the node is active.
func (n *SpatialNode) Context() *Context {
	return n.ctx
}

func (n *SpatialNode) Activate(ctx *Context) {
	if ctx == nil {
		core.Violation("SpatialNode.Activate", "node %q activated without a context", n.name)
	}
	if n.ctx != nil {
		core.Violation("SpatialNode.Activate", "node %q is already active", n.name)
	}
	n.ctx = ctx
}

func (n *SpatialNode) Deactivate() {
	if n.ctx == nil {
		core.Violation("SpatialNode.Deactivate", "node %q is not active", n.name)
	}
	n.ctx = nil
}

func (n *SpatialNode) TransformChanged() {}

func (n *SpatialNode) Update(dt float64) {
	if n.OnUpdate != nil {
		n.OnUpdate(n.self, dt)
	}
}

func (n *SpatialNode) Bounds() (math.Extents3D, bool) {
	return math.Extents3D{}, false
}

// Destroy detaches the node from its parent, deactivating it first when
// needed. Destroying twice is a no-op.
func (n *SpatialNode) Destroy() {
	if n.destroyed {
		return
	}
	if n.parent != nil {
		n.parent.RemoveChild(n.self)
	}
	n.destroyed = true
}
