// 指示: miu200521358
package ikrig

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
)

// SolverKindPBIK は全身IKソルバー種別。
const SolverKindPBIK = "pbik"

// Chain はリグ上で検証済みのチェーンを表す。
type Chain struct {
	Name      string
	StartBone string
	EndBone   string
	Goal      string
}

// BoneSetting はソルバーのボーン設定を表す。
type BoneSetting struct {
	Bone               string
	RotationStiffness  float64
	UsePreferredAngles bool
	PreferredAngles    mgl64.Vec3
}

// Goal はIKゴールを表す。
type Goal struct {
	Name           string
	Bone           string
	ExposePosition bool
	ExposeRotation bool
	PullChainAlpha float64
}

// Solver はIKソルバー設定を表す。
type Solver struct {
	Kind         string
	RootBone     string
	BoneSettings []BoneSetting
	Goals        []string
}

// Rig はスケルトン1つに対するIKリグアセットを表す。
type Rig struct {
	Name          string
	PackagePath   string
	SkeletonID    string
	PreviewMeshID string
	Topology      *model.Topology
	RetargetRoot  string
	Chains        []Chain
	Goals         []Goal
	Solvers       []Solver
}

// Ref はアセット参照を返す。
func (r *Rig) Ref() model.AssetRef {
	if r == nil {
		return model.AssetRef{Kind: model.AssetKindIKRig}
	}
	return model.AssetRef{Kind: model.AssetKindIKRig, PackagePath: r.PackagePath, Name: r.Name}
}

// Chain は名前でチェーンを取得する。
func (r *Rig) Chain(name string) (Chain, bool) {
	if r == nil {
		return Chain{}, false
	}
	for _, chain := range r.Chains {
		if chain.Name == name {
			return chain, true
		}
	}
	return Chain{}, false
}

// ChainNames はチェーン名一覧を返す。
func (r *Rig) ChainNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.Chains))
	for i, chain := range r.Chains {
		names[i] = chain.Name
	}
	return names
}

// BoneSetting はソルバー内のボーン設定を取得する。
func (r *Rig) BoneSetting(bone string) (BoneSetting, bool) {
	if r == nil {
		return BoneSetting{}, false
	}
	for _, solver := range r.Solvers {
		for _, setting := range solver.BoneSettings {
			if setting.Bone == bone {
				return setting, true
			}
		}
	}
	return BoneSetting{}, false
}
