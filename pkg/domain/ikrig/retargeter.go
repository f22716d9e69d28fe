// 指示: miu200521358
package ikrig

import (
	"fmt"

	"github.com/miu200521358/mu_rig_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
)

// DefaultPoseName は既定リターゲットポーズ名。
const DefaultPoseName = "Default Pose"

// RotationMode はチェーン回転のリターゲット方式を表す。
type RotationMode string

const (
	// RotationModeInterpolated はチェーン長に沿って補間する。
	RotationModeInterpolated RotationMode = "interpolated"
	// RotationModeOneToOne はボーン単位で1対1に回転を写す。
	RotationModeOneToOne RotationMode = "one_to_one"
)

// ChainTranslationMode はチェーン移動量のリターゲット方式を表す。
type ChainTranslationMode string

const (
	// ChainTranslationNone は移動量を写さない。
	ChainTranslationNone ChainTranslationMode = "none"
	// ChainTranslationGloballyScaled はリグ全体の比率でスケールして写す。
	ChainTranslationGloballyScaled ChainTranslationMode = "globally_scaled"
)

// ChainMap は対象チェーンと元チェーンの対応設定を表す。
type ChainMap struct {
	TargetChain     string
	SourceChain     string
	DriveIKGoal     bool
	RotationMode    RotationMode
	TranslationMode ChainTranslationMode
}

// RetargetPose はボーン名ごとのローカル変換を持つリターゲットポーズを表す。
type RetargetPose struct {
	Name            string
	JointTransforms map[string]mmath.Transform
}

// Retargeter は元リグから対象リグへのリターゲッターアセットを表す。
type Retargeter struct {
	Name                string
	PackagePath         string
	SourceRig           model.AssetRef
	TargetRig           model.AssetRef
	TargetPreviewMeshID string
	ChainMaps           []ChainMap
	RetargetPoses       []RetargetPose
	CurrentRetargetPose string
}

// NewRetargeter は対象リグの全チェーンに空の対応設定を持つリターゲッターを生成する。
func NewRetargeter(ref model.AssetRef, source *Rig, target *Rig) (*Retargeter, error) {
	if source == nil || target == nil {
		return nil, fmt.Errorf("リターゲッターの元リグまたは対象リグがnilです: %s", ref.String())
	}
	retargeter := &Retargeter{
		Name:                ref.Name,
		PackagePath:         ref.PackagePath,
		SourceRig:           source.Ref(),
		TargetRig:           target.Ref(),
		TargetPreviewMeshID: target.PreviewMeshID,
		ChainMaps:           make([]ChainMap, 0, len(target.Chains)),
		RetargetPoses: []RetargetPose{
			{Name: DefaultPoseName, JointTransforms: map[string]mmath.Transform{}},
		},
		CurrentRetargetPose: DefaultPoseName,
	}
	for _, chain := range target.Chains {
		retargeter.ChainMaps = append(retargeter.ChainMaps, ChainMap{
			TargetChain:     chain.Name,
			RotationMode:    RotationModeInterpolated,
			TranslationMode: ChainTranslationNone,
		})
	}
	return retargeter, nil
}

// Ref はアセット参照を返す。
func (r *Retargeter) Ref() model.AssetRef {
	if r == nil {
		return model.AssetRef{Kind: model.AssetKindRetargeter}
	}
	return model.AssetRef{Kind: model.AssetKindRetargeter, PackagePath: r.PackagePath, Name: r.Name}
}

// ChainMap は対象チェーン名で対応設定を取得する。
func (r *Retargeter) ChainMap(targetChain string) (*ChainMap, bool) {
	if r == nil {
		return nil, false
	}
	for i := range r.ChainMaps {
		if r.ChainMaps[i].TargetChain == targetChain {
			return &r.ChainMaps[i], true
		}
	}
	return nil, false
}

// SetSourceChainForTargetChain は対象チェーンへ元チェーンを割り当てる。
func (r *Retargeter) SetSourceChainForTargetChain(targetChain string, sourceChain string) error {
	chainMap, ok := r.ChainMap(targetChain)
	if !ok {
		return fmt.Errorf("対象チェーンが見つかりません: %s", targetChain)
	}
	chainMap.SourceChain = sourceChain
	return nil
}

// TargetPreviewMesh は対象リグのプレビューメッシュIDを返す。
func (r *Retargeter) TargetPreviewMesh() string {
	if r == nil {
		return ""
	}
	return r.TargetPreviewMeshID
}

// RetargetPose は名前でリターゲットポーズを取得する。
func (r *Retargeter) RetargetPose(name string) (*RetargetPose, bool) {
	if r == nil {
		return nil, false
	}
	for i := range r.RetargetPoses {
		if r.RetargetPoses[i].Name == name {
			return &r.RetargetPoses[i], true
		}
	}
	return nil, false
}

// AddRetargetPose はリターゲットポーズを追加する。既存の場合は内容を空にする。
func (r *Retargeter) AddRetargetPose(name string) {
	if pose, ok := r.RetargetPose(name); ok {
		pose.JointTransforms = map[string]mmath.Transform{}
		return
	}
	r.RetargetPoses = append(r.RetargetPoses, RetargetPose{
		Name:            name,
		JointTransforms: map[string]mmath.Transform{},
	})
}

// SetPoseTransform はリターゲットポーズのボーン変換を設定する。
func (r *Retargeter) SetPoseTransform(poseName string, jointName string, transform mmath.Transform) error {
	pose, ok := r.RetargetPose(poseName)
	if !ok {
		return fmt.Errorf("リターゲットポーズが見つかりません: %s", poseName)
	}
	pose.JointTransforms[jointName] = transform
	return nil
}

// SetCurrentRetargetPose は現在のリターゲットポーズを設定する。
func (r *Retargeter) SetCurrentRetargetPose(poseName string) error {
	if _, ok := r.RetargetPose(poseName); !ok {
		return fmt.Errorf("リターゲットポーズが見つかりません: %s", poseName)
	}
	r.CurrentRetargetPose = poseName
	return nil
}
