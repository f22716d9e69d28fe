// 指示: miu200521358
// Package mmath はボーン姿勢計算で使う変換型を提供する。
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	// DefaultTolerance は姿勢比較の既定許容誤差。
	DefaultTolerance = 1e-6
	// smallNumber はスケール逆数計算でゼロ扱いする閾値。
	smallNumber = 1e-8
)

var (
	// UnitX はX軸単位ベクトル。
	UnitX = mgl64.Vec3{1, 0, 0}
	// UnitY はY軸単位ベクトル。
	UnitY = mgl64.Vec3{0, 1, 0}
	// UnitZ はZ軸単位ベクトル。
	UnitZ = mgl64.Vec3{0, 0, 1}
	// ForwardVector は前方向ベクトル。
	ForwardVector = UnitX
	// RightVector は右方向ベクトル。
	RightVector = UnitY
	// UpVector は上方向ベクトル。
	UpVector = UnitZ
)

// Transform は平行移動・回転・スケールからなる剛体+スケール変換を表す。
type Transform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
}

// NewTransform は変換を生成する。回転は正規化する。
func NewTransform(translation mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) Transform {
	return Transform{
		Translation: translation,
		Rotation:    normalizeQuat(rotation),
		Scale:       scale,
	}
}

// IdentityTransform は恒等変換を返す。
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// TranslationTransform は平行移動のみの変換を返す。
func TranslationTransform(x, y, z float64) Transform {
	t := IdentityTransform()
	t.Translation = mgl64.Vec3{x, y, z}
	return t
}

// Mul は t を子、parent を親として合成した変換を返す。
func (t Transform) Mul(parent Transform) Transform {
	scaledTranslation := mulElem(parent.Scale, t.Translation)
	return Transform{
		Translation: parent.Rotation.Rotate(scaledTranslation).Add(parent.Translation),
		Rotation:    normalizeQuat(parent.Rotation.Mul(t.Rotation)),
		Scale:       mulElem(parent.Scale, t.Scale),
	}
}

// RelativeTo は parent から見た t の相対変換を返す。t == local.Mul(parent) となる local を求める。
func (t Transform) RelativeTo(parent Transform) Transform {
	invScale := safeReciprocal(parent.Scale)
	invRotation := parent.Rotation.Inverse()
	translation := invRotation.Rotate(t.Translation.Sub(parent.Translation))
	return Transform{
		Translation: mulElem(invScale, translation),
		Rotation:    normalizeQuat(invRotation.Mul(t.Rotation)),
		Scale:       mulElem(invScale, t.Scale),
	}
}

// TransformPosition は点を変換する。
func (t Transform) TransformPosition(v mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(mulElem(t.Scale, v)).Add(t.Translation)
}

// AxisX は回転後のX軸を返す。
func (t Transform) AxisX() mgl64.Vec3 {
	return t.Rotation.Rotate(UnitX)
}

// AxisY は回転後のY軸を返す。
func (t Transform) AxisY() mgl64.Vec3 {
	return t.Rotation.Rotate(UnitY)
}

// AxisZ は回転後のZ軸を返す。
func (t Transform) AxisZ() mgl64.Vec3 {
	return t.Rotation.Rotate(UnitZ)
}

// Mat4 は列優先の4x4行列 (T * R * S) を返す。
func (t Transform) Mat4() mgl64.Mat4 {
	translate := mgl64.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	scale := mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(t.Rotation.Mat4()).Mul4(scale)
}

// NearEquals は許容誤差内で同一の変換か判定する。q と -q は同一回転として扱う。
func (t Transform) NearEquals(other Transform, tolerance float64) bool {
	if !NearEqualsVec3(t.Translation, other.Translation, tolerance) {
		return false
	}
	if !NearEqualsVec3(t.Scale, other.Scale, tolerance) {
		return false
	}
	dot := math.Abs(t.Rotation.Dot(other.Rotation))
	return scalar.EqualWithinAbs(dot, 1, tolerance)
}

// IsIdentity は恒等変換か判定する。
func (t Transform) IsIdentity() bool {
	return t.NearEquals(IdentityTransform(), DefaultTolerance)
}

// NearEqualsVec3 は許容誤差内で同一のベクトルか判定する。
func NearEqualsVec3(a, b mgl64.Vec3, tolerance float64) bool {
	for i := range a {
		if !scalar.EqualWithinAbs(a[i], b[i], tolerance) {
			return false
		}
	}
	return true
}

// mulElem は要素ごとの積を返す。
func mulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// safeReciprocal はゼロ近傍の成分を0とした逆数ベクトルを返す。
func safeReciprocal(v mgl64.Vec3) mgl64.Vec3 {
	out := mgl64.Vec3{}
	for i := range v {
		if math.Abs(v[i]) <= smallNumber {
			continue
		}
		out[i] = 1 / v[i]
	}
	return out
}

// normalizeQuat は長さ0の回転を恒等回転として正規化する。
func normalizeQuat(q mgl64.Quat) mgl64.Quat {
	if q.Len() <= smallNumber {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}
