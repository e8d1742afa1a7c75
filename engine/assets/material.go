package assets

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/vista/engine/math"
)

const DefaultMaterialName = "default"

// Material holds Phong style surface parameters. Texture slots are optional;
// the renderer substitutes fallback textures for the empty ones.
type Material struct {
	header
	diffuseColour math.Vec4
	shininess     float32
	diffuseMap    *Image
	specularMap   *Image
	normalMap     *Image
}

func NewMaterial(name string) *Material {
	return &Material{
		header:        newHeader(uuid.New(), name),
		diffuseColour: math.NewVec4One(),
		shininess:     8.0,
	}
}

// NewDefaultMaterial returns a white material with no texture maps.
func NewDefaultMaterial() *Material {
	return NewMaterial(DefaultMaterialName)
}

func (m *Material) Kind() Kind {
	return KindMaterial
}

func (m *Material) DiffuseColour() math.Vec4 {
	return m.diffuseColour
}

func (m *Material) Shininess() float32 {
	return m.shininess
}

func (m *Material) DiffuseMap() *Image {
	return m.diffuseMap
}

func (m *Material) SpecularMap() *Image {
	return m.specularMap
}

func (m *Material) NormalMap() *Image {
	return m.normalMap
}

func (m *Material) SetDiffuseColour(c math.Vec4) {
	m.diffuseColour = c
	m.bump()
}

func (m *Material) SetShininess(s float32) {
	m.shininess = s
	m.bump()
}

func (m *Material) SetDiffuseMap(img *Image) {
	m.diffuseMap = img
	m.bump()
}

func (m *Material) SetSpecularMap(img *Image) {
	m.specularMap = img
	m.bump()
}

func (m *Material) SetNormalMap(img *Image) {
	m.normalMap = img
	m.bump()
}

// CopyFrom takes every parameter of other and bumps the version once.
func (m *Material) CopyFrom(other *Material) {
	m.diffuseColour = other.diffuseColour
	m.shininess = other.shininess
	m.diffuseMap = other.diffuseMap
	m.specularMap = other.specularMap
	m.normalMap = other.normalMap
	m.bump()
}
