// 指示: miu200521358
package minteractor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/ikrig"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
)

const degenerateBasisEpsilon = 1e-8

// RemapPreferredAngles はボーン方向基準の優先角度をボーン自身の軸基準へ並べ替えて返す。
// 前方向はボーンから子ボーンへの向き、右方向は rightAxis、上方向は 前方向×右方向。
func RemapPreferredAngles(
	topology *model.Topology,
	jointName string,
	childJointName string,
	anglesLocal mgl64.Vec3,
	rightAxis mgl64.Vec3,
) (mgl64.Vec3, error) {
	if topology == nil {
		return mgl64.Vec3{}, fmt.Errorf("%w: ボーン階層がnilです", ErrPreconditionViolated)
	}
	jointIndex := topology.IndexOf(jointName)
	if jointIndex < 0 {
		return mgl64.Vec3{}, fmt.Errorf("%w: ボーンが見つかりません: %s", ErrPreconditionViolated, jointName)
	}
	childIndex := topology.IndexOf(childJointName)
	if childIndex < 0 {
		return mgl64.Vec3{}, fmt.Errorf("%w: 子ボーンが見つかりません: %s", ErrPreconditionViolated, childJointName)
	}
	if topology.ParentIndex(childIndex) != jointIndex {
		return mgl64.Vec3{}, fmt.Errorf("%w: %s の親が %s ではありません", ErrPreconditionViolated, childJointName, jointName)
	}

	componentSpace, err := ComponentSpacePose(topology, topology.RefPose())
	if err != nil {
		return mgl64.Vec3{}, err
	}
	jointCS := componentSpace[jointIndex]
	direction := componentSpace[childIndex].Translation.Sub(jointCS.Translation)
	if direction.Len() <= degenerateBasisEpsilon {
		return mgl64.Vec3{}, fmt.Errorf("%w: %s と %s の位置が一致しています", ErrDegenerateBasis, jointName, childJointName)
	}
	forward := direction.Normalize()
	up := forward.Cross(rightAxis)
	if up.Len() <= degenerateBasisEpsilon {
		return mgl64.Vec3{}, fmt.Errorf("%w: bone=%s", ErrDegenerateBasis, jointName)
	}

	basis := [3]mgl64.Vec3{forward, rightAxis, up}
	boneAxes := [3]mgl64.Vec3{jointCS.AxisX(), jointCS.AxisY(), jointCS.AxisZ()}
	remapped := mgl64.Vec3{}
	for i, axis := range basis {
		axisIndex, inverted := closestAxis(axis, boneAxes)
		sign := 1.0
		if inverted {
			sign = -1
		}
		if (i == 2) != (axisIndex == 2) {
			sign = -sign
		}
		remapped[axisIndex] = anglesLocal[i] * sign
	}
	return remapped, nil
}

// closestAxis は axis と内積の絶対値が最大の軸indexと、内積が負かを返す。同値は先勝ち。
func closestAxis(axis mgl64.Vec3, candidates [3]mgl64.Vec3) (int, bool) {
	bestIndex := 0
	bestDot := math.Inf(-1)
	inverted := false
	for i, candidate := range candidates {
		dot := axis.Dot(candidate)
		if math.Abs(dot) > bestDot {
			bestIndex = i
			bestDot = math.Abs(dot)
			inverted = dot < 0
		}
	}
	return bestIndex, inverted
}

// resolvePreferredAngles は方向指定の優先角度をボーン軸基準へ解決したリグ定義を返す。
// 解決できないボーン設定は優先角度なしのまま警告を返す。
func resolvePreferredAngles(definition ikrig.RigDefinition, topology *model.Topology) (ikrig.RigDefinition, []model.Warning) {
	resolved := definition
	resolved.BoneSettings = make([]ikrig.BoneSettingDefinition, len(definition.BoneSettings))
	warnings := make([]model.Warning, 0)
	for i, setting := range definition.BoneSettings {
		resolved.BoneSettings[i] = setting
		hint := setting.PreferredAngleHint
		if hint == nil {
			continue
		}
		resolved.BoneSettings[i].PreferredAngleHint = nil
		angles, err := RemapPreferredAngles(topology, setting.Bone, hint.ChildBone, hint.AnglesLocal, hint.RightAxis)
		if err != nil {
			warnings = append(warnings, model.NewWarning(
				model.RetargetWarningPreferredAngleSkipped,
				"優先角度を設定できません: bone=%s: %v", setting.Bone, err,
			))
			continue
		}
		resolved.BoneSettings[i].UsePreferredAngles = true
		resolved.BoneSettings[i].PreferredAngles = angles
	}
	return resolved, warnings
}
