// 指示: miu200521358
package mmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestTransformMulAppliesParentRotationAndScale(t *testing.T) {
	parent := NewTransform(
		mgl64.Vec3{1, 2, 3},
		mgl64.QuatRotate(math.Pi/2, UnitZ),
		mgl64.Vec3{2, 2, 2},
	)
	child := TranslationTransform(1, 0, 0)

	got := child.Mul(parent)
	want := mgl64.Vec3{1, 4, 3}
	if !NearEqualsVec3(got.Translation, want, 1e-9) {
		t.Fatalf("translation mismatch: got=%v want=%v", got.Translation, want)
	}
	if !NearEqualsVec3(got.Scale, mgl64.Vec3{2, 2, 2}, 1e-9) {
		t.Fatalf("scale mismatch: got=%v", got.Scale)
	}
}

func TestTransformRelativeToRoundTrip(t *testing.T) {
	parent := NewTransform(
		mgl64.Vec3{0.5, -1, 2},
		mgl64.QuatRotate(0.7, mgl64.Vec3{1, 1, 0}.Normalize()),
		mgl64.Vec3{1, 1.5, 0.5},
	)
	local := NewTransform(
		mgl64.Vec3{3, 0, -2},
		mgl64.QuatRotate(-0.3, UnitY),
		mgl64.Vec3{1, 1, 1},
	)

	componentSpace := local.Mul(parent)
	restored := componentSpace.RelativeTo(parent)
	if !restored.NearEquals(local, 1e-9) {
		t.Fatalf("round trip mismatch: got=%+v want=%+v", restored, local)
	}
}

func TestTransformRelativeToZeroScaleParent(t *testing.T) {
	parent := IdentityTransform()
	parent.Scale = mgl64.Vec3{0, 1, 1}
	child := TranslationTransform(4, 5, 6)

	got := child.RelativeTo(parent)
	if got.Translation.X() != 0 {
		t.Fatalf("zero scale axis should collapse: got=%v", got.Translation)
	}
	if got.Translation.Y() != 5 || got.Translation.Z() != 6 {
		t.Fatalf("other axes mismatch: got=%v", got.Translation)
	}
}

func TestTransformNearEqualsTreatsNegatedQuaternionAsSame(t *testing.T) {
	a := NewTransform(mgl64.Vec3{}, mgl64.QuatRotate(1.2, UnitX), mgl64.Vec3{1, 1, 1})
	b := a
	b.Rotation = mgl64.Quat{W: -a.Rotation.W, V: a.Rotation.V.Mul(-1)}
	if !a.NearEquals(b, 1e-9) {
		t.Fatalf("negated quaternion should be equal")
	}
}

func TestTransformMat4MatchesTransformPosition(t *testing.T) {
	tr := NewTransform(
		mgl64.Vec3{1, 2, 3},
		mgl64.QuatRotate(0.4, UnitY),
		mgl64.Vec3{2, 1, 0.5},
	)
	point := mgl64.Vec3{0.3, -0.2, 1}
	byMatrix := tr.Mat4().Mul4x1(point.Vec4(1)).Vec3()
	byTransform := tr.TransformPosition(point)
	if !NearEqualsVec3(byMatrix, byTransform, 1e-9) {
		t.Fatalf("matrix mismatch: got=%v want=%v", byMatrix, byTransform)
	}
}

func TestIdentityTransformIsIdentity(t *testing.T) {
	if !IdentityTransform().IsIdentity() {
		t.Fatalf("identity should be identity")
	}
	if TranslationTransform(0, 0, 1).IsIdentity() {
		t.Fatalf("translated transform should not be identity")
	}
}
