// 指示: miu200521358
// Package ikrig はIKリグとリターゲッターのデータを提供する。
package ikrig

import "github.com/go-gl/mathgl/mgl64"

// ChainDefinition はリターゲットチェーン定義を表す。
type ChainDefinition struct {
	Name      string
	StartBone string
	EndBone   string
}

// PreferredAngleHint はボーン方向基準のローカル空間で指定する優先角度を表す。
// 前方向はボーンから ChildBone への向き、右方向は RightAxis (コンポーネント空間)。
type PreferredAngleHint struct {
	ChildBone   string
	AnglesLocal mgl64.Vec3
	RightAxis   mgl64.Vec3
}

// BoneSettingDefinition はソルバーのボーン設定定義を表す。
type BoneSettingDefinition struct {
	Bone               string
	RotationStiffness  float64
	UsePreferredAngles bool
	PreferredAngles    mgl64.Vec3
	PreferredAngleHint *PreferredAngleHint
}

// GoalDefinition はIKゴール定義を表す。
type GoalDefinition struct {
	Name           string
	Bone           string
	Chain          string
	ExposePosition bool
	ExposeRotation bool
	PullChainAlpha float64
}

// RigDefinition はIKリグ1つ分の宣言的な定義を表す。
type RigDefinition struct {
	RetargetRoot string
	SolverRoot   string
	Chains       []ChainDefinition
	BoneSettings []BoneSettingDefinition
	Goals        []GoalDefinition
}

// ChainNames は定義順のチェーン名一覧を返す。
func (d RigDefinition) ChainNames() []string {
	names := make([]string, len(d.Chains))
	for i, chain := range d.Chains {
		names[i] = chain.Name
	}
	return names
}
