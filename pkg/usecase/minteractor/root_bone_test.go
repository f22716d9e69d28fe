package minteractor

import (
	"errors"
	"testing"

	"github.com/miu200521358/mu_rig_retarget/internal/testfixture"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
)

func TestSynthesizeRootShiftsParents(t *testing.T) {
	topology := testfixture.MixamoTopology()

	synthesized, inserted, err := SynthesizeRoot(topology)
	if err != nil {
		t.Fatalf("synthesize root failed: %v", err)
	}
	if !inserted {
		t.Fatalf("root should be inserted")
	}
	if synthesized.Len() != topology.Len()+1 {
		t.Fatalf("bone count mismatch: got=%d want=%d", synthesized.Len(), topology.Len()+1)
	}
	root := synthesized.Joints[0]
	if root.Name != model.RootJointName || root.ParentIndex != -1 || !root.LocalTransform.IsIdentity() {
		t.Fatalf("root joint mismatch: got=%+v", root)
	}
	for i, joint := range topology.Joints {
		got := synthesized.Joints[i+1]
		want := joint.ParentIndex + 1
		if joint.ParentIndex < 0 {
			want = 0
		}
		if got.Name != joint.Name || got.ParentIndex != want {
			t.Fatalf("joint mismatch: index=%d got=%s/%d want=%s/%d", i, got.Name, got.ParentIndex, joint.Name, want)
		}
	}
	if topology.Contains(model.RootJointName) {
		t.Fatalf("input topology should not be modified")
	}
}

func TestSynthesizeRootIsIdempotent(t *testing.T) {
	topology := testfixture.MannequinTopology()

	synthesized, inserted, err := SynthesizeRoot(topology)
	if err != nil {
		t.Fatalf("synthesize root failed: %v", err)
	}
	if inserted {
		t.Fatalf("root should not be inserted twice")
	}
	if synthesized != topology {
		t.Fatalf("topology with root should be returned as is")
	}
}

func TestHasRootAtWrongPosition(t *testing.T) {
	topology, err := model.NewTopology([]model.Joint{
		{Name: "Hips", ParentIndex: -1, LocalTransform: mmath.IdentityTransform()},
		{Name: model.RootJointName, ParentIndex: 0, LocalTransform: mmath.IdentityTransform()},
	})
	if err != nil {
		t.Fatalf("topology build failed: %v", err)
	}
	if !HasRootAtWrongPosition(topology) {
		t.Fatalf("root at index 1 should be detected")
	}
	if HasRootAtWrongPosition(testfixture.MannequinTopology()) {
		t.Fatalf("root at index 0 should not be detected")
	}
	if HasRootAtWrongPosition(testfixture.MixamoTopology()) {
		t.Fatalf("missing root should not be detected")
	}
}

func TestApplyRootToMeshShiftsBoneIndices(t *testing.T) {
	topology := testfixture.MixamoTopology()
	mesh := testfixture.NewImportedMesh("mesh", "SK_Mixamo", testfixture.MixamoPackagePath, "skeleton", topology)
	mesh.LODs[0].SkinWeightProfiles = []model.SkinWeightProfile{
		{
			Name: "Alt",
			Vertices: []model.SkinVertex{
				{Influences: []model.BoneInfluence{{BoneIndex: 2, Weight: 0.5}, {BoneIndex: 3, Weight: 0}}},
			},
			SourceInfluences: []model.RawInfluence{
				{VertexIndex: 0, BoneIndex: 4, Weight: 1},
				{VertexIndex: 0, BoneIndex: 5, Weight: 0},
			},
		},
	}

	updated, warnings, err := ApplyRootToMesh(mesh)
	if err != nil {
		t.Fatalf("apply root failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if updated == mesh {
		t.Fatalf("updated mesh should be a copy")
	}
	if updated.Topology.Len() != topology.Len()+1 || updated.Topology.Joints[0].Name != model.RootJointName {
		t.Fatalf("updated topology should start with root: len=%d", updated.Topology.Len())
	}

	lod := updated.LODs[0]
	if len(lod.ActiveBoneIndices) != topology.Len()+1 || lod.ActiveBoneIndices[0] != 0 || lod.ActiveBoneIndices[1] != 1 {
		t.Fatalf("active bones mismatch: got=%v", lod.ActiveBoneIndices[:3])
	}
	if lod.RequiredBones[0] != 0 || lod.RequiredBones[len(lod.RequiredBones)-1] != topology.Len() {
		t.Fatalf("required bones mismatch: got=%v", lod.RequiredBones)
	}
	if lod.Sections[0].BoneMap[0] != 1 {
		t.Fatalf("section bone map mismatch: got=%d want=1", lod.Sections[0].BoneMap[0])
	}
	for vertexIndex, vertex := range lod.Vertices {
		used := vertex.Influences[0]
		if used.BoneIndex != vertexIndex+1 {
			t.Fatalf("vertex influence mismatch: vertex=%d got=%d want=%d", vertexIndex, used.BoneIndex, vertexIndex+1)
		}
		if used.BoneIndex == 0 {
			t.Fatalf("root should not be referenced by vertex=%d", vertexIndex)
		}
		if unused := vertex.Influences[1]; unused.BoneIndex != 0 {
			t.Fatalf("zero weight influence should be kept: vertex=%d got=%d", vertexIndex, unused.BoneIndex)
		}
	}

	profile := lod.SkinWeightProfiles[0]
	if got := profile.Vertices[0].Influences[0].BoneIndex; got != 3 {
		t.Fatalf("profile influence mismatch: got=%d want=3", got)
	}
	if got := profile.Vertices[0].Influences[1].BoneIndex; got != 3 {
		t.Fatalf("zero weight profile influence should be kept: got=%d want=3", got)
	}
	if got := profile.SourceInfluences[0].BoneIndex; got != 5 {
		t.Fatalf("profile source influence mismatch: got=%d want=5", got)
	}
	if got := profile.SourceInfluences[1].BoneIndex; got != 5 {
		t.Fatalf("zero weight source influence should be kept: got=%d want=5", got)
	}

	imported := lod.Imported
	if imported.Bones[0].Name != model.RootJointName || imported.Bones[0].ParentIndex != -1 {
		t.Fatalf("imported root mismatch: got=%+v", imported.Bones[0])
	}
	hipsChildren := topology.ChildCount(topology.IndexOf("Hips"))
	if imported.Bones[0].NumChildren != hipsChildren {
		t.Fatalf("root child count mismatch: got=%d want=%d", imported.Bones[0].NumChildren, hipsChildren)
	}
	if imported.Bones[1].ParentIndex != 0 || imported.Bones[2].ParentIndex != 1 {
		t.Fatalf("imported parents mismatch: hips=%d spine=%d", imported.Bones[1].ParentIndex, imported.Bones[2].ParentIndex)
	}
	if imported.Influences[3].BoneIndex != 4 {
		t.Fatalf("imported influence mismatch: got=%d want=4", imported.Influences[3].BoneIndex)
	}

	if len(updated.InverseBindMatrices) != updated.Topology.Len() {
		t.Fatalf("inverse bind matrix count mismatch: got=%d want=%d", len(updated.InverseBindMatrices), updated.Topology.Len())
	}
	if updated.RetargetBasePose != nil {
		t.Fatalf("retarget base pose should be reset")
	}
}

func TestApplyRootToMeshKeepsInput(t *testing.T) {
	topology := testfixture.MixamoTopology()
	mesh := testfixture.NewMesh("mesh", "SK_Mixamo", testfixture.MixamoPackagePath, "skeleton", topology)
	beforeActive := append([]int(nil), mesh.LODs[0].ActiveBoneIndices...)
	beforeInfluence := mesh.LODs[0].Vertices[3].Influences[0].BoneIndex

	if _, _, err := ApplyRootToMesh(mesh); err != nil {
		t.Fatalf("apply root failed: %v", err)
	}

	if mesh.Topology.Contains(model.RootJointName) {
		t.Fatalf("input topology should not be modified")
	}
	if len(mesh.LODs[0].ActiveBoneIndices) != len(beforeActive) || mesh.LODs[0].ActiveBoneIndices[0] != beforeActive[0] {
		t.Fatalf("input active bones should not be modified: got=%v", mesh.LODs[0].ActiveBoneIndices[:2])
	}
	if got := mesh.LODs[0].Vertices[3].Influences[0].BoneIndex; got != beforeInfluence {
		t.Fatalf("input influence should not be modified: got=%d want=%d", got, beforeInfluence)
	}
	if mesh.RetargetBasePose == nil {
		t.Fatalf("input retarget base pose should be kept")
	}
}

func TestApplyRootToMeshFlagsUnsupportedData(t *testing.T) {
	mesh := testfixture.NewImportedMesh("mesh", "SK_Mixamo", testfixture.MixamoPackagePath, "skeleton", testfixture.MixamoTopology())
	mesh.LODs[0].Imported.MorphTargetNames = []string{"Smile"}
	mesh.LODs[0].Imported.AlternateInfluenceNames = []string{"Cloth"}

	_, warnings, err := ApplyRootToMesh(mesh)
	if err != nil {
		t.Fatalf("apply root failed: %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("warning count mismatch: got=%d want=2", len(warnings))
	}
	if warnings[0].ID != model.RetargetWarningMorphTargetsUnsupported {
		t.Fatalf("morph warning mismatch: got=%s", warnings[0].ID)
	}
	if warnings[1].ID != model.RetargetWarningAlternateInfluencesUnsupported {
		t.Fatalf("alternate influence warning mismatch: got=%s", warnings[1].ID)
	}
}

func TestApplyRootToMeshWithRootReturnsInput(t *testing.T) {
	mesh := testfixture.NewMesh("mesh", "SK_Mannequin", testfixture.MannequinPackagePath, "skeleton", testfixture.MannequinTopology())

	updated, warnings, err := ApplyRootToMesh(mesh)
	if err != nil {
		t.Fatalf("apply root failed: %v", err)
	}
	if updated != mesh || len(warnings) != 0 {
		t.Fatalf("mesh with root should be returned as is")
	}
}

func TestApplyRootToMeshRejectsRootAtWrongPosition(t *testing.T) {
	topology, err := model.NewTopology([]model.Joint{
		{Name: "Hips", ParentIndex: -1, LocalTransform: mmath.IdentityTransform()},
		{Name: model.RootJointName, ParentIndex: 0, LocalTransform: mmath.IdentityTransform()},
	})
	if err != nil {
		t.Fatalf("topology build failed: %v", err)
	}
	mesh := testfixture.NewMesh("mesh", "SK_Bad", testfixture.MixamoPackagePath, "skeleton", topology)

	_, _, err = ApplyRootToMesh(mesh)
	if !errors.Is(err, ErrRootAtWrongPosition) {
		t.Fatalf("expected ErrRootAtWrongPosition: got=%v", err)
	}
}

func TestMergeJointsByNameAppendsMeshOnlyJoints(t *testing.T) {
	base, _, err := SynthesizeRoot(testfixture.MixamoTopology())
	if err != nil {
		t.Fatalf("synthesize root failed: %v", err)
	}
	joints := append([]model.Joint(nil), base.Joints...)
	joints = append(joints, model.Joint{
		Name:           "HeadTop_End",
		ParentIndex:    base.IndexOf("head"),
		LocalTransform: mmath.TranslationTransform(0, 0, 20),
	})
	other, err := model.NewTopology(joints)
	if err != nil {
		t.Fatalf("topology build failed: %v", err)
	}

	merged, err := mergeJointsByName(base, other)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if merged.Len() != base.Len()+1 {
		t.Fatalf("merged bone count mismatch: got=%d want=%d", merged.Len(), base.Len()+1)
	}
	added := merged.Joints[merged.Len()-1]
	if added.Name != "HeadTop_End" || added.ParentIndex != base.IndexOf("head") {
		t.Fatalf("merged joint mismatch: got=%+v", added)
	}
	if base.Contains("HeadTop_End") {
		t.Fatalf("base topology should not be modified")
	}
}
