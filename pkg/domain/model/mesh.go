// 指示: miu200521358
package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/mmath"
)

// MaxTotalInfluences は1頂点あたりの最大影響ボーン数。
const MaxTotalInfluences = 12

// ErrInvalidBoneIndex はスキンデータ内のボーンindex範囲外を表す。
var ErrInvalidBoneIndex = errors.New("ボーンindexが範囲外です")

// BoneInfluence は頂点に対するボーン影響を表す。
type BoneInfluence struct {
	BoneIndex int
	Weight    float64
}

// IsUsed はウェイトを持つ影響か判定する。
func (i BoneInfluence) IsUsed() bool {
	return i.Weight > 0
}

// SkinVertex は頂点ごとの影響ボーン一覧を表す。
type SkinVertex struct {
	Influences []BoneInfluence
}

// Section はメッシュセクションを表す。BoneMap はセクション内indexから階層indexへの表。
type Section struct {
	Name            string
	BoneMap         []int
	BaseVertexIndex int
	NumVertices     int
}

// RawInfluence は頂点indexとボーンindexの組で持つ影響を表す。
type RawInfluence struct {
	VertexIndex int
	BoneIndex   int
	Weight      float64
}

// SkinWeightProfile は代替スキンウェイトを表す。
type SkinWeightProfile struct {
	Name             string
	Vertices         []SkinVertex
	SourceInfluences []RawInfluence
}

// RawBone はインポート時のボーン情報を表す。
type RawBone struct {
	Name           string
	ParentIndex    int
	NumChildren    int
	LocalTransform mmath.Transform
}

// ImportedMeshData はインポート元データを表す。
type ImportedMeshData struct {
	Bones                   []RawBone
	Influences              []RawInfluence
	MorphTargetNames        []string
	AlternateInfluenceNames []string
}

// LODModel はLODごとのスキンデータを表す。
type LODModel struct {
	ActiveBoneIndices  []int
	RequiredBones      []int
	Sections           []Section
	Vertices           []SkinVertex
	SkinWeightProfiles []SkinWeightProfile
	Imported           *ImportedMeshData
}

// SkinnedMesh はスキンメッシュアセットを表す。
type SkinnedMesh struct {
	ID                  string
	Name                string
	PackagePath         string
	SkeletonID          string
	Topology            *Topology
	LODs                []LODModel
	InverseBindMatrices []mgl64.Mat4
	RetargetBasePose    Pose
}

// Ref はアセット参照を返す。
func (m *SkinnedMesh) Ref() AssetRef {
	if m == nil {
		return AssetRef{Kind: AssetKindSkinnedMesh}
	}
	return AssetRef{Kind: AssetKindSkinnedMesh, PackagePath: m.PackagePath, Name: m.Name}
}

// HasMorphTargets はインポート元データにモーフターゲットがあるか判定する。
func (m *SkinnedMesh) HasMorphTargets() bool {
	if m == nil {
		return false
	}
	for i := range m.LODs {
		if m.LODs[i].Imported != nil && len(m.LODs[i].Imported.MorphTargetNames) > 0 {
			return true
		}
	}
	return false
}

// HasAlternateInfluences はインポート元データに代替影響があるか判定する。
func (m *SkinnedMesh) HasAlternateInfluences() bool {
	if m == nil {
		return false
	}
	for i := range m.LODs {
		if m.LODs[i].Imported != nil && len(m.LODs[i].Imported.AlternateInfluenceNames) > 0 {
			return true
		}
	}
	return false
}

// ValidateBoneIndices はスキンデータ内の全ボーンindexが階層範囲内か検証する。
func (m *SkinnedMesh) ValidateBoneIndices() error {
	if m == nil {
		return fmt.Errorf("メッシュがnilです")
	}
	if err := m.Topology.Validate(); err != nil {
		return err
	}
	boneCount := m.Topology.Len()
	check := func(lodIndex int, label string, index int) error {
		if index < 0 || index >= boneCount {
			return fmt.Errorf("%w: mesh=%s lod=%d %s=%d bones=%d", ErrInvalidBoneIndex, m.Name, lodIndex, label, index, boneCount)
		}
		return nil
	}
	for lodIndex := range m.LODs {
		lod := &m.LODs[lodIndex]
		for _, index := range lod.ActiveBoneIndices {
			if err := check(lodIndex, "active", index); err != nil {
				return err
			}
		}
		for _, index := range lod.RequiredBones {
			if err := check(lodIndex, "required", index); err != nil {
				return err
			}
		}
		for _, section := range lod.Sections {
			for _, index := range section.BoneMap {
				if err := check(lodIndex, "section", index); err != nil {
					return err
				}
			}
		}
		if err := validateSkinVertices(lod.Vertices, func(index int) error {
			return check(lodIndex, "vertex", index)
		}); err != nil {
			return err
		}
		for _, profile := range lod.SkinWeightProfiles {
			if err := validateSkinVertices(profile.Vertices, func(index int) error {
				return check(lodIndex, "profile", index)
			}); err != nil {
				return err
			}
			for _, influence := range profile.SourceInfluences {
				if !influence.isUsed() {
					continue
				}
				if err := check(lodIndex, "profile_source", influence.BoneIndex); err != nil {
					return err
				}
			}
		}
		if lod.Imported == nil {
			continue
		}
		for _, influence := range lod.Imported.Influences {
			if err := check(lodIndex, "imported", influence.BoneIndex); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateSkinVertices は使用中の影響のみボーンindexを検証する。
func validateSkinVertices(vertices []SkinVertex, check func(index int) error) error {
	for _, vertex := range vertices {
		if len(vertex.Influences) > MaxTotalInfluences {
			return fmt.Errorf("影響ボーン数が上限を超えています: got=%d max=%d", len(vertex.Influences), MaxTotalInfluences)
		}
		for _, influence := range vertex.Influences {
			if !influence.IsUsed() {
				continue
			}
			if err := check(influence.BoneIndex); err != nil {
				return err
			}
		}
	}
	return nil
}

func (i RawInfluence) isUsed() bool {
	return i.Weight > 0
}
