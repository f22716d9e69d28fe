// 指示: miu200521358
// Package testfixture はテストと動作確認で使う合成スケルトンとメッシュを提供する。
package testfixture

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
)

const (
	// MixamoPackagePath はMixamo系統アセットの配置先。
	MixamoPackagePath = "/Game/Characters/Mixamo"
	// MannequinPackagePath はUEマネキン系統アセットの配置先。
	MannequinPackagePath = "/Game/Characters/Mannequin"
)

// jointSpec は階層構築用のボーン指定を表す。
type jointSpec struct {
	name      string
	parent    string
	transform mmath.Transform
}

// at は平行移動だけを持つボーン指定を返す。
func at(name, parent string, x, y, z float64) jointSpec {
	return jointSpec{name: name, parent: parent, transform: mmath.TranslationTransform(x, y, z)}
}

// rotated は平行移動とZ軸回転を持つボーン指定を返す。
func rotated(name, parent string, x, y, z, degreesZ float64) jointSpec {
	return jointSpec{
		name:   name,
		parent: parent,
		transform: mmath.NewTransform(
			mgl64.Vec3{x, y, z},
			mgl64.QuatRotate(mgl64.DegToRad(degreesZ), mmath.UnitZ),
			mgl64.Vec3{1, 1, 1},
		),
	}
}

// MixamoTopology はroot を持たないMixamo系統のボーン階層を返す。
func MixamoTopology() *model.Topology {
	specs := []jointSpec{
		at("Hips", "", 0, 0, 100),
		at("Spine", "Hips", 0, 0, 10),
		at("Spine1", "Spine", 0, 0, 10),
		at("Spine2", "Spine1", 0, 0, 10),
		at("Neck", "Spine2", 0, 0, 15),
		at("head", "Neck", 0, 0, 10),
	}
	for _, side := range []struct {
		name string
		sign float64
	}{{"Left", 1}, {"Right", -1}} {
		s := side.sign
		specs = append(specs,
			at(side.name+"Shoulder", "Spine2", 5*s, 0, 10),
			at(side.name+"Arm", side.name+"Shoulder", 10*s, 0, 0),
			at(side.name+"ForeArm", side.name+"Arm", 25*s, 0, 0),
			at(side.name+"Hand", side.name+"ForeArm", 25*s, 0, 0),
		)
		for fingerIndex, finger := range []string{"Index", "Middle", "Pinky", "Ring", "Thumb"} {
			parent := side.name + "Hand"
			offsetY := float64(fingerIndex-2) * 2
			for segment := 1; segment <= 3; segment++ {
				name := fmt.Sprintf("%sHand%s%d", side.name, finger, segment)
				if segment == 1 {
					specs = append(specs, at(name, parent, 8*s, offsetY, 0))
				} else {
					specs = append(specs, at(name, parent, 3*s, 0, 0))
				}
				parent = name
			}
		}
		specs = append(specs,
			at(side.name+"UpLeg", "Hips", 10*s, 0, -5),
			at(side.name+"Leg", side.name+"UpLeg", 0, 0, -45),
			at(side.name+"Foot", side.name+"Leg", 0, 0, -45),
			at(side.name+"ToeBase", side.name+"Foot", 0, 10, -5),
		)
	}
	return mustTopology(specs)
}

// MannequinTopology はUE4マネキン系統のボーン階層を返す。腕はAスタンス。
func MannequinTopology() *model.Topology {
	specs := []jointSpec{
		at("root", "", 0, 0, 0),
		at("pelvis", "root", 0, 0, 95),
		at("spine_01", "pelvis", 0, 0, 12),
		at("spine_02", "spine_01", 0, 0, 12),
		at("spine_03", "spine_02", 0, 0, 12),
		at("neck_01", "spine_03", 0, 0, 14),
		at("head", "neck_01", 0, 0, 9),
	}
	for _, side := range []struct {
		suffix string
		sign   float64
	}{{"_l", 1}, {"_r", -1}} {
		s := side.sign
		specs = append(specs,
			at("clavicle"+side.suffix, "spine_03", 4*s, 0, 12),
			rotated("upperarm"+side.suffix, "clavicle"+side.suffix, 12*s, 0, 0, -20*s),
			at("lowerarm"+side.suffix, "upperarm"+side.suffix, 28*s, 0, 0),
			at("hand"+side.suffix, "lowerarm"+side.suffix, 26*s, 0, 0),
		)
		for fingerIndex, finger := range []string{"index", "middle", "pinky", "ring", "thumb"} {
			parent := "hand" + side.suffix
			offsetY := float64(fingerIndex-2) * 2
			for segment := 1; segment <= 3; segment++ {
				name := fmt.Sprintf("%s_%02d%s", finger, segment, side.suffix)
				if segment == 1 {
					specs = append(specs, at(name, parent, 9*s, offsetY, 0))
				} else {
					specs = append(specs, at(name, parent, 3*s, 0, 0))
				}
				parent = name
			}
		}
		specs = append(specs,
			at("thigh"+side.suffix, "pelvis", 9*s, 0, -3),
			at("calf"+side.suffix, "thigh"+side.suffix, 0, 0, -43),
			at("foot"+side.suffix, "calf"+side.suffix, 0, 0, -42),
			at("ball"+side.suffix, "foot"+side.suffix, 0, 12, -4),
		)
	}
	return mustTopology(specs)
}

// MannequinUE5Topology はUE5マネキンにだけある追加ボーンを持つ階層を返す。
func MannequinUE5Topology() *model.Topology {
	topology := MannequinTopology()
	joints := append([]model.Joint(nil), topology.Joints...)
	spine03 := topology.IndexOf("spine_03")
	joints = append(joints,
		model.Joint{Name: "spine_04", ParentIndex: spine03, LocalTransform: mmath.TranslationTransform(0, 0, 5)},
		model.Joint{Name: "spine_05", ParentIndex: len(joints), LocalTransform: mmath.TranslationTransform(0, 0, 5)},
		model.Joint{Name: "neck_02", ParentIndex: topology.IndexOf("neck_01"), LocalTransform: mmath.TranslationTransform(0, 0, 4)},
	)
	result, err := model.NewTopology(joints)
	if err != nil {
		panic(err)
	}
	return result
}

// NewSkeleton はスケルトンを生成する。
func NewSkeleton(id, name, packagePath string, topology *model.Topology) *model.Skeleton {
	return &model.Skeleton{
		ID:          id,
		Name:        name,
		PackagePath: packagePath,
		Topology:    topology,
	}
}

// NewMesh は全ボーンを使う1LODのスキンメッシュを生成する。頂点はボーンごとに1つ。
func NewMesh(id, name, packagePath, skeletonID string, topology *model.Topology) *model.SkinnedMesh {
	boneCount := topology.Len()
	indices := make([]int, boneCount)
	vertices := make([]model.SkinVertex, boneCount)
	for i := range indices {
		indices[i] = i
		vertices[i] = model.SkinVertex{Influences: []model.BoneInfluence{
			{BoneIndex: i, Weight: 1},
			{BoneIndex: 0, Weight: 0},
		}}
	}
	return &model.SkinnedMesh{
		ID:          id,
		Name:        name,
		PackagePath: packagePath,
		SkeletonID:  skeletonID,
		Topology:    topology.Clone(),
		LODs: []model.LODModel{
			{
				ActiveBoneIndices: append([]int(nil), indices...),
				RequiredBones:     append([]int(nil), indices...),
				Sections: []model.Section{
					{Name: "Body", BoneMap: append([]int(nil), indices...), NumVertices: boneCount},
				},
				Vertices: vertices,
			},
		},
		RetargetBasePose: topology.RefPose(),
	}
}

// NewImportedMesh はインポート元データを持つスキンメッシュを生成する。
func NewImportedMesh(id, name, packagePath, skeletonID string, topology *model.Topology) *model.SkinnedMesh {
	mesh := NewMesh(id, name, packagePath, skeletonID, topology)
	bones := make([]model.RawBone, topology.Len())
	influences := make([]model.RawInfluence, topology.Len())
	for i, joint := range topology.Joints {
		bones[i] = model.RawBone{
			Name:           joint.Name,
			ParentIndex:    joint.ParentIndex,
			NumChildren:    topology.ChildCount(i),
			LocalTransform: joint.LocalTransform,
		}
		influences[i] = model.RawInfluence{VertexIndex: i, BoneIndex: i, Weight: 1}
	}
	mesh.LODs[0].Imported = &model.ImportedMeshData{Bones: bones, Influences: influences}
	return mesh
}

// mustTopology は静的な指定から階層を生成する。
func mustTopology(specs []jointSpec) *model.Topology {
	indexes := make(map[string]int, len(specs))
	joints := make([]model.Joint, len(specs))
	for i, spec := range specs {
		parent := -1
		if spec.parent != "" {
			index, ok := indexes[spec.parent]
			if !ok {
				panic(fmt.Sprintf("親ボーンが未定義です: %s -> %s", spec.name, spec.parent))
			}
			parent = index
		}
		indexes[spec.name] = i
		joints[i] = model.Joint{Name: spec.name, ParentIndex: parent, LocalTransform: spec.transform}
	}
	topology, err := model.NewTopology(joints)
	if err != nil {
		panic(err)
	}
	return topology
}
