// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_rig_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
)

// ComponentSpaceTransform はボーンのローカル変換を祖先方向へ合成したコンポーネント空間変換を返す。
// jointIndex が -1 の場合は恒等変換を返す。
func ComponentSpaceTransform(topology *model.Topology, pose model.Pose, jointIndex int) (mmath.Transform, error) {
	if jointIndex == -1 {
		return mmath.IdentityTransform(), nil
	}
	if err := validatePose(topology, pose); err != nil {
		return mmath.Transform{}, err
	}
	if jointIndex < 0 || jointIndex >= topology.Len() {
		return mmath.Transform{}, fmt.Errorf("%w: ボーンindexが範囲外です: index=%d bones=%d", ErrPreconditionViolated, jointIndex, topology.Len())
	}
	transform := pose[jointIndex]
	for parent := topology.ParentIndex(jointIndex); parent >= 0; parent = topology.ParentIndex(parent) {
		transform = transform.Mul(pose[parent])
	}
	return transform, nil
}

// ComponentSpacePose は全ボーンのコンポーネント空間変換を親から順に1回で求める。
func ComponentSpacePose(topology *model.Topology, pose model.Pose) ([]mmath.Transform, error) {
	if err := validatePose(topology, pose); err != nil {
		return nil, err
	}
	transforms := make([]mmath.Transform, topology.Len())
	for i, joint := range topology.Joints {
		if joint.ParentIndex < 0 {
			transforms[i] = pose[i]
			continue
		}
		transforms[i] = pose[i].Mul(transforms[joint.ParentIndex])
	}
	return transforms, nil
}

// validatePose はポーズ長が階層と一致するか検証する。
func validatePose(topology *model.Topology, pose model.Pose) error {
	if topology == nil {
		return fmt.Errorf("%w: ボーン階層がnilです", ErrPreconditionViolated)
	}
	if len(pose) != topology.Len() {
		return fmt.Errorf("%w: ポーズ長が階層と一致しません: pose=%d bones=%d", ErrPreconditionViolated, len(pose), topology.Len())
	}
	return nil
}
