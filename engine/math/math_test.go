package math

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-5

func TestVerticalFOVFromHorizontal(t *testing.T) {
	hfov := DegToRad(90)
	aspect := float32(16.0 / 9.0)

	want := gomath.Atan(gomath.Tan(gomath.Pi/4) / (16.0 / 9.0))
	assert.InDelta(t, want, float64(VerticalFOV(hfov, aspect)), 1e-5)
}

func TestMat4MulIdentity(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3)).Mul(NewMat4EulerY(0.3))
	assert.True(t, m.Mul(NewMat4Identity()).Compare(m, tolerance))
	assert.True(t, NewMat4Identity().Mul(m).Compare(m, tolerance))
}

func TestMat4MulAppliesLeftOperandFirst(t *testing.T) {
	scale := NewMat4Scale(NewVec3(2, 2, 2))
	move := NewMat4Translation(NewVec3(10, 0, 0))

	p := NewVec3(1, 0, 0)
	assert.True(t, p.Transform(scale.Mul(move)).Compare(NewVec3(12, 0, 0), tolerance))
	assert.True(t, p.Transform(move.Mul(scale)).Compare(NewVec3(22, 0, 0), tolerance))
}

func TestMat4Inverse(t *testing.T) {
	tr := TransformFromPositionRotationScale(
		NewVec3(3, -2, 5),
		NewQuatFromAxisAngle(NewVec3(0, 1, 0), 0.7, true),
		NewVec3(2, 1, 0.5))
	m := tr.Local()
	assert.True(t, m.Mul(m.Inverse()).Compare(NewMat4Identity(), 1e-4))
}

func TestQuaternionMatchesEuler(t *testing.T) {
	angle := float32(0.5)
	q := NewQuatFromAxisAngle(NewVec3(0, 0, 1), angle, true)
	assert.True(t, q.ToMat4().Compare(NewMat4EulerZ(angle), tolerance))

	q = NewQuatFromAxisAngle(NewVec3(1, 0, 0), angle, true)
	assert.True(t, q.ToMat4().Compare(NewMat4EulerX(angle), tolerance))
}

func TestTransformLocalOrder(t *testing.T) {
	tr := TransformFromPositionRotationScale(
		NewVec3(0, 0, 5),
		NewQuatFromAxisAngle(NewVec3(0, 0, 1), K_HALF_PI, true),
		NewVec3(2, 2, 2))

	// scale (2,0,0), rotate to (0,2,0), translate to (0,2,5)
	got := NewVec3(1, 0, 0).Transform(tr.Local())
	assert.True(t, got.Compare(NewVec3(0, 2, 5), tolerance), "%v", got)

	tr.SetPosition(NewVec3(1, 1, 1))
	assert.True(t, tr.Local().Position().Compare(NewVec3(1, 1, 1), tolerance))
}

func TestLookAtMovesTargetOntoNegativeZ(t *testing.T) {
	view := NewMat4LookAt(NewVec3(0, 0, 10), NewVec3Zero(), NewVec3Up())
	p := NewVec3Zero().Transform(view)
	assert.True(t, p.Compare(NewVec3(0, 0, -10), tolerance), "%v", p)
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := NewMat4Perspective(DegToRad(60), 1, 1, 100)

	near := NewVec4(0, 0, -1, 1).Transform(proj)
	far := NewVec4(0, 0, -100, 1).Transform(proj)
	assert.InDelta(t, -1.0, float64(near.Z/near.W), 1e-4)
	assert.InDelta(t, 1.0, float64(far.Z/far.W), 1e-4)
}

func TestExtentsTransformAndUnion(t *testing.T) {
	unit := Extents3D{Min: NewVec3(-1, -1, -1), Max: NewVec3(1, 1, 1)}
	moved := unit.Transform(NewMat4Translation(NewVec3(5, 0, 0)))
	assert.True(t, moved.Min.Compare(NewVec3(4, -1, -1), tolerance))
	assert.True(t, moved.Max.Compare(NewVec3(6, 1, 1), tolerance))

	u := unit.Union(moved)
	assert.True(t, u.Min.Compare(NewVec3(-1, -1, -1), tolerance))
	assert.True(t, u.Max.Compare(NewVec3(6, 1, 1), tolerance))

	assert.True(t, NewExtentsEmpty().IsEmpty())
	assert.Equal(t, unit, NewExtentsEmpty().Union(unit))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, Clamp(7, 0, 3))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
	assert.Equal(t, -1.0, Clamp(-4.0, -1, 1))
}
