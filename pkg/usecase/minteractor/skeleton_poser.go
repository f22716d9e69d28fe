// 指示: miu200521358
package minteractor

import (
	"fmt"
	"slices"

	"github.com/miu200521358/mu_rig_retarget/pkg/domain/ikrig"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/namemap"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/port/moutput"
)

// SkeletonPoser は参照スケルトンのポーズへ合わせたローカルポーズを求める。
type SkeletonPoser struct {
	referenceTopology *model.Topology
	referenceCS       []mmath.Transform
}

// NewSkeletonPoser は参照階層とポーズから生成する。pose が nil の場合は参照ポーズを使う。
func NewSkeletonPoser(referenceTopology *model.Topology, referencePose model.Pose) (*SkeletonPoser, error) {
	if referenceTopology == nil {
		return nil, fmt.Errorf("%w: 参照ボーン階層がnilです", ErrPreconditionViolated)
	}
	if referencePose == nil {
		referencePose = referenceTopology.RefPose()
	}
	referenceCS, err := ComponentSpacePose(referenceTopology, referencePose)
	if err != nil {
		return nil, err
	}
	return &SkeletonPoser{referenceTopology: referenceTopology, referenceCS: referenceCS}, nil
}

// PoseBasedOnMappedBoneNames は対応表で参照ボーンへ写せるボーンを参照ポーズへ合わせたローカルポーズを返す。
// preserveNames は元の姿勢を保つボーン、forceNewNames は分岐ボーンでも参照姿勢を採用するボーン。
func (p *SkeletonPoser) PoseBasedOnMappedBoneNames(
	topology *model.Topology,
	pose model.Pose,
	preserveNames []string,
	forceNewNames []string,
	mapper namemap.NamesMapper,
) (model.Pose, error) {
	originalCS, err := ComponentSpacePose(topology, pose)
	if err != nil {
		return nil, err
	}

	newCS := make([]mmath.Transform, topology.Len())
	newLocal := make(model.Pose, topology.Len())
	for i, joint := range topology.Joints {
		parentCS := mmath.IdentityTransform()
		if joint.ParentIndex >= 0 {
			parentCS = newCS[joint.ParentIndex]
		}

		referenceIndex := -1
		if referenceName, ok := mapper.MapName(joint.Name); ok {
			referenceIndex = p.referenceTopology.IndexOf(referenceName)
		}
		if referenceIndex < 0 {
			newLocal[i] = pose[i]
			newCS[i] = pose[i].Mul(parentCS)
			continue
		}

		referenceCS := p.referenceCS[referenceIndex]
		preserve := slices.Contains(preserveNames, joint.Name)
		var resolved mmath.Transform
		if topology.ChildCount(i) >= 2 {
			switch {
			case slices.Contains(forceNewNames, joint.Name):
				resolved = referenceCS
			case preserve:
				resolved = originalCS[i]
			default:
				// 分岐ボーンは回転とスケールを保ち、位置だけ参照に合わせる
				resolved = mmath.NewTransform(referenceCS.Translation, originalCS[i].Rotation, originalCS[i].Scale)
			}
		} else if preserve {
			resolved = originalCS[i]
		} else {
			resolved = referenceCS
		}
		newCS[i] = resolved
		newLocal[i] = resolved.RelativeTo(parentCS)
	}
	return newLocal, nil
}

// BasePoseRetargetOptions はベースポーズのリターゲット条件を表す。
type BasePoseRetargetOptions struct {
	PreserveNames []string
	ForceNewNames []string
	Mapper        namemap.NamesMapper
	// ApplyToMesh が true の場合はメッシュのリターゲット基準ポーズへも書き込む。
	ApplyToMesh bool
}

// RetargetBasePose は各メッシュのポーズを求め、リターゲッターへメッシュID名のポーズとして書き込む。
// 書き込み後、対象プレビューメッシュのポーズ (無ければ既定ポーズ) を現在ポーズにする。
func (p *SkeletonPoser) RetargetBasePose(
	meshes []*model.SkinnedMesh,
	writer moutput.IRetargetPoseWriter,
	options BasePoseRetargetOptions,
) error {
	if writer == nil && !options.ApplyToMesh {
		return fmt.Errorf("%w: ポーズの出力先がありません", ErrPreconditionViolated)
	}

	processed := make([]string, 0, len(meshes))
	for _, mesh := range meshes {
		if mesh == nil || mesh.Topology == nil {
			continue
		}
		pose, err := p.PoseBasedOnMappedBoneNames(
			mesh.Topology,
			mesh.Topology.RefPose(),
			options.PreserveNames,
			options.ForceNewNames,
			options.Mapper,
		)
		if err != nil {
			return fmt.Errorf("ベースポーズの計算に失敗しました: mesh=%s: %w", mesh.Name, err)
		}
		if options.ApplyToMesh {
			mesh.RetargetBasePose = pose
		}
		if writer == nil {
			continue
		}
		writer.AddRetargetPose(mesh.ID)
		for i, joint := range mesh.Topology.Joints {
			if err := writer.SetPoseTransform(mesh.ID, joint.Name, pose[i]); err != nil {
				return err
			}
		}
		processed = append(processed, mesh.ID)
	}

	if writer == nil {
		return nil
	}
	current := ikrig.DefaultPoseName
	if previewID := writer.TargetPreviewMesh(); previewID != "" && slices.Contains(processed, previewID) {
		current = previewID
	}
	return writer.SetCurrentRetargetPose(current)
}
