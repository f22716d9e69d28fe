// 指示: miu200521358
// Package pbik はリグ定義からIKリグとリターゲッターを組み立てる。
package pbik

import (
	"errors"
	"fmt"

	"github.com/miu200521358/mu_rig_retarget/pkg/domain/ikrig"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
)

// ErrRetargetRootNotFound はリターゲットルートボーンが階層に無いことを表す。
var ErrRetargetRootNotFound = errors.New("リターゲットルートボーンが見つかりません")

// RigBuilder はボーン階層を検証しながらIKリグを組み立てる。
type RigBuilder struct{}

// NewRigBuilder はIKリグ組み立て器を生成する。
func NewRigBuilder() *RigBuilder {
	return &RigBuilder{}
}

// CreateRig はプレビューメッシュ (無ければスケルトン) の階層に対してリグ定義を適用したIKリグを返す。
// 階層に無いボーンを使うチェーン・ゴール・ボーン設定は警告を返して除外する。
func (b *RigBuilder) CreateRig(
	ref model.AssetRef,
	skeleton *model.Skeleton,
	previewMesh *model.SkinnedMesh,
	definition ikrig.RigDefinition,
) (*ikrig.Rig, []model.Warning, error) {
	if skeleton == nil {
		return nil, nil, fmt.Errorf("IKリグのスケルトンがnilです: %s", ref.String())
	}
	topology := skeleton.Topology
	previewMeshID := skeleton.PreviewMeshID
	if previewMesh != nil && previewMesh.Topology != nil {
		topology = previewMesh.Topology
		previewMeshID = previewMesh.ID
	}
	if topology == nil {
		return nil, nil, fmt.Errorf("IKリグのボーン階層がnilです: %s", ref.String())
	}
	if !topology.Contains(definition.RetargetRoot) {
		return nil, nil, fmt.Errorf("%w: rig=%s bone=%s", ErrRetargetRootNotFound, ref.Name, definition.RetargetRoot)
	}

	rig := &ikrig.Rig{
		Name:          ref.Name,
		PackagePath:   ref.PackagePath,
		SkeletonID:    skeleton.ID,
		PreviewMeshID: previewMeshID,
		Topology:      topology.Clone(),
		RetargetRoot:  definition.RetargetRoot,
	}
	warnings := make([]model.Warning, 0)

	for _, chain := range definition.Chains {
		if err := validateChain(topology, chain); err != nil {
			warnings = append(warnings, model.NewWarning(model.RetargetWarningChainSkipped,
				"チェーンを作成できません: rig=%s chain=%s: %v", ref.Name, chain.Name, err))
			continue
		}
		rig.Chains = append(rig.Chains, ikrig.Chain{
			Name:      chain.Name,
			StartBone: chain.StartBone,
			EndBone:   chain.EndBone,
		})
	}

	if !topology.Contains(definition.SolverRoot) {
		warnings = append(warnings, model.NewWarning(model.RetargetWarningChainSkipped,
			"ソルバーのルートボーンが見つかりません: rig=%s bone=%s", ref.Name, definition.SolverRoot))
		return rig, warnings, nil
	}
	solver := ikrig.Solver{Kind: ikrig.SolverKindPBIK, RootBone: definition.SolverRoot}

	for _, goal := range definition.Goals {
		if !topology.Contains(goal.Bone) {
			warnings = append(warnings, model.NewWarning(model.RetargetWarningChainSkipped,
				"ゴールのボーンが見つかりません: rig=%s goal=%s bone=%s", ref.Name, goal.Name, goal.Bone))
			continue
		}
		chainIndex := indexOfChain(rig.Chains, goal.Chain)
		if chainIndex < 0 {
			continue
		}
		rig.Chains[chainIndex].Goal = goal.Name
		rig.Goals = append(rig.Goals, ikrig.Goal{
			Name:           goal.Name,
			Bone:           goal.Bone,
			ExposePosition: goal.ExposePosition,
			ExposeRotation: goal.ExposeRotation,
			PullChainAlpha: goal.PullChainAlpha,
		})
		solver.Goals = append(solver.Goals, goal.Name)
	}

	for _, setting := range definition.BoneSettings {
		if !topology.Contains(setting.Bone) {
			continue
		}
		solver.BoneSettings = append(solver.BoneSettings, ikrig.BoneSetting{
			Bone:               setting.Bone,
			RotationStiffness:  setting.RotationStiffness,
			UsePreferredAngles: setting.UsePreferredAngles,
			PreferredAngles:    setting.PreferredAngles,
		})
	}
	rig.Solvers = append(rig.Solvers, solver)
	return rig, warnings, nil
}

// CreateRetargeter は元リグから対象リグへのリターゲッターを返す。
func (b *RigBuilder) CreateRetargeter(ref model.AssetRef, sourceRig *ikrig.Rig, targetRig *ikrig.Rig) (*ikrig.Retargeter, error) {
	return ikrig.NewRetargeter(ref, sourceRig, targetRig)
}

// validateChain は開始ボーンが終了ボーン自身または祖先であることを検証する。
func validateChain(topology *model.Topology, chain ikrig.ChainDefinition) error {
	start := topology.IndexOf(chain.StartBone)
	if start < 0 {
		return fmt.Errorf("開始ボーンがありません: %s", chain.StartBone)
	}
	end := topology.IndexOf(chain.EndBone)
	if end < 0 {
		return fmt.Errorf("終了ボーンがありません: %s", chain.EndBone)
	}
	if !topology.IsAncestorOrSelf(start, end) {
		return fmt.Errorf("開始ボーンが終了ボーンの祖先ではありません: %s -> %s", chain.StartBone, chain.EndBone)
	}
	return nil
}

// indexOfChain は名前でチェーンindexを返す。
func indexOfChain(chains []ikrig.Chain, name string) int {
	for i := range chains {
		if chains[i].Name == name {
			return i
		}
	}
	return -1
}
