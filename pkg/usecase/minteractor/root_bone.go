// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/tiendc/go-deepcopy"
)

// HasRootAtWrongPosition は root ボーンが存在し、かつ index 0 以外にあるか判定する。
func HasRootAtWrongPosition(topology *model.Topology) bool {
	return topology.IndexOf(model.RootJointName) > 0
}

// SynthesizeRoot は index 0 に恒等変換の root ボーンを挿入した新しい階層を返す。
// root が既にある場合は入力をそのまま返し、false を返す。
func SynthesizeRoot(topology *model.Topology) (*model.Topology, bool, error) {
	if topology == nil {
		return nil, false, fmt.Errorf("%w: ボーン階層がnilです", ErrPreconditionViolated)
	}
	if topology.Contains(model.RootJointName) {
		return topology, false, nil
	}
	oldToNew := buildRootInsertReindex(topology.Len())
	joints := make([]model.Joint, 0, topology.Len()+1)
	joints = append(joints, model.Joint{
		Name:           model.RootJointName,
		ParentIndex:    -1,
		LocalTransform: mmath.IdentityTransform(),
	})
	for _, joint := range topology.Joints {
		joint.ParentIndex = remapParentForRoot(joint.ParentIndex, oldToNew)
		joints = append(joints, joint)
	}
	synthesized, err := model.NewTopology(joints)
	if err != nil {
		return nil, false, fmt.Errorf("root ボーン挿入後の階層が不正です: %w", err)
	}
	return synthesized, true, nil
}

// ApplyRootToMesh はメッシュの複製へ root ボーンを挿入し、スキンデータの全ボーンindexを +1 した結果を返す。
// 入力メッシュは変更しない。root が既にある場合は入力をそのまま返す。
func ApplyRootToMesh(mesh *model.SkinnedMesh) (*model.SkinnedMesh, []model.Warning, error) {
	if mesh == nil || mesh.Topology == nil {
		return nil, nil, fmt.Errorf("%w: メッシュまたはボーン階層がnilです", ErrPreconditionViolated)
	}
	if HasRootAtWrongPosition(mesh.Topology) {
		return nil, nil, fmt.Errorf("%w: mesh=%s", ErrRootAtWrongPosition, mesh.Name)
	}
	topology, inserted, err := SynthesizeRoot(mesh.Topology)
	if err != nil {
		return nil, nil, err
	}
	if !inserted {
		return mesh, nil, nil
	}

	updated := &model.SkinnedMesh{}
	if err := deepcopy.Copy(updated, *mesh); err != nil {
		return nil, nil, fmt.Errorf("メッシュの複製に失敗しました: %w", err)
	}
	updated.Topology = topology

	oldToNew := buildRootInsertReindex(mesh.Topology.Len())
	warnings := make([]model.Warning, 0)
	for lodIndex := range updated.LODs {
		lod := &updated.LODs[lodIndex]
		applyRootToLOD(lod, oldToNew)
		if lod.Imported == nil {
			continue
		}
		if len(lod.Imported.MorphTargetNames) > 0 {
			warnings = append(warnings, model.NewWarning(
				model.RetargetWarningMorphTargetsUnsupported,
				"モーフターゲットは未対応です: mesh=%s lod=%d count=%d",
				mesh.Name, lodIndex, len(lod.Imported.MorphTargetNames),
			))
		}
		if len(lod.Imported.AlternateInfluenceNames) > 0 {
			warnings = append(warnings, model.NewWarning(
				model.RetargetWarningAlternateInfluencesUnsupported,
				"代替影響は未対応です: mesh=%s lod=%d count=%d",
				mesh.Name, lodIndex, len(lod.Imported.AlternateInfluenceNames),
			))
		}
	}

	updated.RetargetBasePose = nil
	matrices, err := bindPoseInverseMatrices(topology)
	if err != nil {
		return nil, warnings, err
	}
	updated.InverseBindMatrices = matrices

	if err := updated.ValidateBoneIndices(); err != nil {
		return nil, warnings, fmt.Errorf("root ボーン挿入後のスキンデータが不正です: %w", err)
	}
	return updated, warnings, nil
}

// applyRootToLOD はLOD内のボーンindexを再マッピングし、active/required の先頭へ root を加える。
func applyRootToLOD(lod *model.LODModel, oldToNew []int) {
	lod.ActiveBoneIndices = prependRoot(remapBoneIndexes(lod.ActiveBoneIndices, oldToNew))
	lod.RequiredBones = prependRoot(remapBoneIndexes(lod.RequiredBones, oldToNew))
	for sectionIndex := range lod.Sections {
		section := &lod.Sections[sectionIndex]
		section.BoneMap = remapBoneIndexes(section.BoneMap, oldToNew)
	}
	remapSkinVertices(lod.Vertices, oldToNew)
	for profileIndex := range lod.SkinWeightProfiles {
		profile := &lod.SkinWeightProfiles[profileIndex]
		remapSkinVertices(profile.Vertices, oldToNew)
		for i := range profile.SourceInfluences {
			if profile.SourceInfluences[i].Weight <= 0 {
				continue
			}
			profile.SourceInfluences[i].BoneIndex = remapBoneIndex(profile.SourceInfluences[i].BoneIndex, oldToNew)
		}
	}
	if lod.Imported != nil {
		applyRootToImportedData(lod.Imported, oldToNew)
	}
}

// applyRootToImportedData はインポート元のボーンと影響を再マッピングし、root ボーンを先頭へ加える。
func applyRootToImportedData(imported *model.ImportedMeshData, oldToNew []int) {
	rootChildren := 0
	bones := make([]model.RawBone, 0, len(imported.Bones)+1)
	bones = append(bones, model.RawBone{
		Name:           model.RootJointName,
		ParentIndex:    -1,
		LocalTransform: mmath.IdentityTransform(),
	})
	for _, bone := range imported.Bones {
		if bone.ParentIndex < 0 {
			rootChildren += bone.NumChildren
		}
		bone.ParentIndex = remapParentForRoot(bone.ParentIndex, oldToNew)
		bones = append(bones, bone)
	}
	bones[0].NumChildren = rootChildren
	imported.Bones = bones
	for i := range imported.Influences {
		imported.Influences[i].BoneIndex = remapBoneIndex(imported.Influences[i].BoneIndex, oldToNew)
	}
}

// remapSkinVertices はウェイトを持つ影響のボーンindexを再マッピングする。
func remapSkinVertices(vertices []model.SkinVertex, oldToNew []int) {
	for vertexIndex := range vertices {
		influences := vertices[vertexIndex].Influences
		for i := range influences {
			if !influences[i].IsUsed() {
				continue
			}
			influences[i].BoneIndex = remapBoneIndex(influences[i].BoneIndex, oldToNew)
		}
	}
}

// buildRootInsertReindex は先頭挿入用の旧index→新index表を返す。
func buildRootInsertReindex(boneCount int) []int {
	oldToNew := make([]int, boneCount)
	for i := range oldToNew {
		oldToNew[i] = i + 1
	}
	return oldToNew
}

// remapBoneIndex は旧indexを新indexへ変換する。範囲外は -1。
func remapBoneIndex(index int, oldToNew []int) int {
	if index < 0 || index >= len(oldToNew) {
		return -1
	}
	return oldToNew[index]
}

// remapParentForRoot は親indexを変換する。親なしは root (0) を親とする。
func remapParentForRoot(parentIndex int, oldToNew []int) int {
	if parentIndex < 0 {
		return 0
	}
	return remapBoneIndex(parentIndex, oldToNew)
}

// remapBoneIndexes はindex一覧を変換した新しい一覧を返す。
func remapBoneIndexes(indexes []int, oldToNew []int) []int {
	if indexes == nil {
		return nil
	}
	remapped := make([]int, len(indexes))
	for i, index := range indexes {
		remapped[i] = remapBoneIndex(index, oldToNew)
	}
	return remapped
}

// prependRoot は一覧の先頭へ root index (0) を加える。
func prependRoot(indexes []int) []int {
	return append([]int{0}, indexes...)
}

// bindPoseInverseMatrices は参照ポーズのコンポーネント空間行列の逆行列を返す。
func bindPoseInverseMatrices(topology *model.Topology) ([]mgl64.Mat4, error) {
	componentSpace, err := ComponentSpacePose(topology, topology.RefPose())
	if err != nil {
		return nil, err
	}
	matrices := make([]mgl64.Mat4, len(componentSpace))
	for i, transform := range componentSpace {
		matrices[i] = transform.Mat4().Inv()
	}
	return matrices, nil
}

// mergeJointsByName は other にだけ存在するボーンを親名で解決して base の末尾へ加えた新しい階層を返す。
func mergeJointsByName(base *model.Topology, other *model.Topology) (*model.Topology, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: ボーン階層がnilです", ErrPreconditionViolated)
	}
	joints := append([]model.Joint(nil), base.Joints...)
	merged := &model.Topology{Joints: joints}
	if other == nil {
		return merged, nil
	}
	for _, joint := range other.Joints {
		if merged.Contains(joint.Name) {
			continue
		}
		parentIndex := -1
		if joint.ParentIndex >= 0 {
			parentIndex = merged.IndexOf(other.Joints[joint.ParentIndex].Name)
		}
		joint.ParentIndex = parentIndex
		merged.Joints = append(merged.Joints, joint)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}
