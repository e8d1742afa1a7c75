package scene

import (
	"slices"

	"github.com/spaghettifunk/vista/engine/core"
	"github.com/spaghettifunk/vista/engine/math"
)

type child struct {
	node      Node
	ownership Ownership
}

// NodeGroup is a node with children. Activation reaches children in
// insertion order and deactivation in reverse order.
type NodeGroup struct {
	SpatialNode
	children []child
}

func NewNodeGroup(name string) *NodeGroup {
	g := &NodeGroup{}
	g.init(g, name)
	return g
}

// AddChild attaches node and takes ownership of it.
func (g *NodeGroup) AddChild(node Node) {
	g.attach("NodeGroup.AddChild", node, Owned)
}

// AttachChild attaches node without taking ownership: destroying the group
// detaches it but leaves it alive.
func (g *NodeGroup) AttachChild(node Node) {
	g.attach("NodeGroup.AttachChild", node, Borrowed)
}

func (g *NodeGroup) attach(op string, node Node, ownership Ownership) {
	if node == nil || node.Spatial() == nil {
		core.Violation(op, "nil node")
	}
	s := node.Spatial()
	switch {
	case g.destroyed:
		core.Violation(op, "group %q is destroyed", g.name)
	case s.destroyed:
		core.Violation(op, "node %q is destroyed", s.name)
	case s.root:
		core.Violation(op, "scene %q cannot be a child", s.name)
	case s.parent != nil:
		core.Violation(op, "node %q already has parent %q", s.name, s.parent.name)
	}
	for p := g; p != nil; p = p.parent {
		if &p.SpatialNode == s {
			core.Violation(op, "node %q is %q or one of its ancestors", s.name, g.name)
		}
	}

	s.parent = g
	g.children = append(g.children, child{node: node, ownership: ownership})
	if g.ctx != nil {
		node.Activate(g.ctx)
	}
}

// RemoveChild deactivates node when needed and unlinks it. Ownership passes
// back to the caller.
func (g *NodeGroup) RemoveChild(node Node) {
	if node == nil || node.Spatial() == nil {
		core.Violation("NodeGroup.RemoveChild", "nil node")
	}
	s := node.Spatial()
	if s.parent != g {
		core.Violation("NodeGroup.RemoveChild", "node %q is not a child of %q", s.name, g.name)
	}
	if s.ctx != nil {
		node.Deactivate()
	}
	g.children = slices.DeleteFunc(g.children, func(c child) bool {
		return c.node.Spatial() == s
	})
	s.parent = nil
}

func (g *NodeGroup) Children() []Node {
	out := make([]Node, len(g.children))
	for i, c := range g.children {
		out[i] = c.node
	}
	return out
}

// Ownership reports how the group holds node.
func (g *NodeGroup) Ownership(node Node) (Ownership, bool) {
	for _, c := range g.children {
		if c.node.Spatial() == node.Spatial() {
			return c.ownership, true
		}
	}
	return 0, false
}

func (g *NodeGroup) Activate(ctx *Context) {
	g.SpatialNode.Activate(ctx)
	for _, c := range g.children {
		c.node.Activate(ctx)
	}
}

func (g *NodeGroup) Deactivate() {
	for i := len(g.children) - 1; i >= 0; i-- {
		g.children[i].node.Deactivate()
	}
	g.SpatialNode.Deactivate()
}

// TransformChanged forwards to every child, whose world transforms moved
// with this group.
func (g *NodeGroup) TransformChanged() {
	for _, c := range g.children {
		c.node.TransformChanged()
	}
}

func (g *NodeGroup) Update(dt float64) {
	g.SpatialNode.Update(dt)
	for _, c := range g.children {
		c.node.Update(dt)
	}
}

// Bounds is the union of the children's bounds.
func (g *NodeGroup) Bounds() (math.Extents3D, bool) {
	out := math.NewExtentsEmpty()
	found := false
	for _, c := range g.children {
		if b, ok := c.node.Bounds(); ok {
			out = out.Union(b)
			found = true
		}
	}
	return out, found
}

// Destroy detaches the group, destroys owned children and detaches borrowed
// ones.
func (g *NodeGroup) Destroy() {
	if g.destroyed {
		return
	}
	if g.parent != nil {
		g.parent.RemoveChild(g.self)
	} else if g.ctx != nil {
		g.Deactivate()
	}
	for i := len(g.children) - 1; i >= 0; i-- {
		c := g.children[i]
		c.node.Spatial().parent = nil
		if c.ownership == Owned {
			c.node.Destroy()
		}
	}
	g.children = nil
	g.destroyed = true
}
