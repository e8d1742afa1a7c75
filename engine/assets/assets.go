// Package assets holds the in-memory representations the renderer consumes:
// meshes, images and materials. Every asset carries a stable identity and a
// version that increases on each mutation.
package assets

import "github.com/google/uuid"

// ID is the stable identity of an asset.
type ID = uuid.UUID

type Kind uint8

const (
	KindMesh Kind = iota + 1
	KindImage
	KindMaterial
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindImage:
		return "image"
	case KindMaterial:
		return "material"
	}
	return "unknown"
}

type Asset interface {
	ID() ID
	Name() string
	Kind() Kind
	Version() uint64
}

type header struct {
	id      ID
	name    string
	version uint64
}

func newHeader(id ID, name string) header {
	return header{id: id, name: name, version: 1}
}

func (h *header) ID() ID {
	return h.id
}

func (h *header) Name() string {
	return h.name
}

func (h *header) Version() uint64 {
	return h.version
}

func (h *header) bump() {
	h.version++
}
