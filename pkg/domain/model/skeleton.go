// 指示: miu200521358
package model

import (
	"path"
	"strings"
)

// AssetKind はアセット種別を表す。
type AssetKind string

const (
	// AssetKindSkeleton はスケルトン。
	AssetKindSkeleton AssetKind = "skeleton"
	// AssetKindSkinnedMesh はスキンメッシュ。
	AssetKindSkinnedMesh AssetKind = "skinned_mesh"
	// AssetKindIKRig はIKリグ。
	AssetKindIKRig AssetKind = "ik_rig"
	// AssetKindRetargeter はリターゲッター。
	AssetKindRetargeter AssetKind = "ik_retargeter"
)

// AssetRef はパッケージパスと名前で識別するアセット参照を表す。
type AssetRef struct {
	Kind        AssetKind
	PackagePath string
	Name        string
}

// String は "パッケージパス/名前" 形式の表記を返す。
func (r AssetRef) String() string {
	if r.PackagePath == "" {
		return r.Name
	}
	return path.Join(r.PackagePath, r.Name)
}

// TranslationRetargetMode はボーン移動量のリターゲット方式を表す。
type TranslationRetargetMode string

const (
	// TranslationRetargetAnimation はアニメーションの移動量をそのまま使う。
	TranslationRetargetAnimation TranslationRetargetMode = "animation"
	// TranslationRetargetSkeleton はスケルトンの移動量を使う。
	TranslationRetargetSkeleton TranslationRetargetMode = "skeleton"
	// TranslationRetargetAnimationScaled は長さ比でスケールした移動量を使う。
	TranslationRetargetAnimationScaled TranslationRetargetMode = "animation_scaled"
)

// Skeleton はスケルトンアセットを表す。
type Skeleton struct {
	ID               string
	Name             string
	PackagePath      string
	Topology         *Topology
	PreviewMeshID    string
	TranslationModes []TranslationRetargetMode
}

// Ref はアセット参照を返す。
func (s *Skeleton) Ref() AssetRef {
	if s == nil {
		return AssetRef{Kind: AssetKindSkeleton}
	}
	return AssetRef{Kind: AssetKindSkeleton, PackagePath: s.PackagePath, Name: s.Name}
}

// BaseName はアセット名から "SK_" 接頭辞と "Skeleton" / "_" 接尾辞を除いた名前を返す。
func (s *Skeleton) BaseName() string {
	if s == nil {
		return ""
	}
	name := strings.TrimPrefix(s.Name, "SK_")
	name = strings.TrimSuffix(name, "Skeleton")
	name = strings.TrimSuffix(name, "_")
	return name
}
