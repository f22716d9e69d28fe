// 指示: miu200521358
// Package rigconfig はMixamo系統とUEマネキン系統の固定設定表を提供する。
package rigconfig

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/ikrig"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/namemap"
)

const (
	// ClassificationBoneCount は系統判定に使う対応表先頭の組数。
	ClassificationBoneCount = 23
	// ClassificationMinFraction は系統判定の一致率閾値。
	ClassificationMinFraction = 0.75
	// UE5ExclusionMinFraction はUE5マネキン除外判定の一致率閾値。
	UE5ExclusionMinFraction = 0.25
	// SourcePelvisBoneName はMixamo系統の骨盤ボーン名。
	SourcePelvisBoneName = "Hips"
	// RootChainName はルートチェーン名。
	RootChainName = "Root"
)

// Profile はリターゲット処理で共有する不変の設定一式を表す。
type Profile struct {
	// BoneMapping はUEマネキン名からMixamo名へのボーン対応表。
	BoneMapping namemap.NamesMapper
	// ChainMapping はUEマネキン側からMixamo側へのチェーン名対応表。
	ChainMapping namemap.NamesMapper

	SourcePreserveBones    []string
	SourceForceNewBones    []string
	ReferencePreserveBones []string
	ReferenceForceNewBones []string

	// 以下のチェーン一覧はUEマネキン側のチェーン名。
	SkipChains             []string
	DriveIKGoalChains      []string
	OneToOneRotationChains []string

	UE5AdditionalBones []string

	SourceRig    ikrig.RigDefinition
	ReferenceRig ikrig.RigDefinition
}

// SourceClassificationBones はMixamo系統判定に使うボーン名を返す。
func (p *Profile) SourceClassificationBones() []string {
	return head(p.BoneMapping.Destinations(), ClassificationBoneCount)
}

// ReferenceClassificationBones はUEマネキン系統判定に使うボーン名を返す。
func (p *Profile) ReferenceClassificationBones() []string {
	return head(p.BoneMapping.Sources(), ClassificationBoneCount)
}

// head は先頭 n 件を返す。
func head(values []string, n int) []string {
	if len(values) < n {
		return values
	}
	return values[:n]
}

// boneMappingTable は [UEマネキン名, Mixamo名, ...] の対応表。先頭23組が系統判定対象。
var boneMappingTable = []string{
	"root", "root",
	"pelvis", "Hips",
	"spine_01", "Spine",
	"spine_02", "Spine1",
	"spine_03", "Spine2",
	"neck_01", "Neck",
	"head", "head",
	"clavicle_l", "LeftShoulder",
	"upperarm_l", "LeftArm",
	"lowerarm_l", "LeftForeArm",
	"hand_l", "LeftHand",
	"clavicle_r", "RightShoulder",
	"upperarm_r", "RightArm",
	"lowerarm_r", "RightForeArm",
	"hand_r", "RightHand",
	"thigh_l", "LeftUpLeg",
	"calf_l", "LeftLeg",
	"foot_l", "LeftFoot",
	"ball_l", "LeftToeBase",
	"thigh_r", "RightUpLeg",
	"calf_r", "RightLeg",
	"foot_r", "RightFoot",
	"ball_r", "RightToeBase",
	"index_01_l", "LeftHandIndex1",
	"index_02_l", "LeftHandIndex2",
	"index_03_l", "LeftHandIndex3",
	"middle_01_l", "LeftHandMiddle1",
	"middle_02_l", "LeftHandMiddle2",
	"middle_03_l", "LeftHandMiddle3",
	"pinky_01_l", "LeftHandPinky1",
	"pinky_02_l", "LeftHandPinky2",
	"pinky_03_l", "LeftHandPinky3",
	"ring_01_l", "LeftHandRing1",
	"ring_02_l", "LeftHandRing2",
	"ring_03_l", "LeftHandRing3",
	"thumb_01_l", "LeftHandThumb1",
	"thumb_02_l", "LeftHandThumb2",
	"thumb_03_l", "LeftHandThumb3",
	"index_01_r", "RightHandIndex1",
	"index_02_r", "RightHandIndex2",
	"index_03_r", "RightHandIndex3",
	"middle_01_r", "RightHandMiddle1",
	"middle_02_r", "RightHandMiddle2",
	"middle_03_r", "RightHandMiddle3",
	"pinky_01_r", "RightHandPinky1",
	"pinky_02_r", "RightHandPinky2",
	"pinky_03_r", "RightHandPinky3",
	"ring_01_r", "RightHandRing1",
	"ring_02_r", "RightHandRing2",
	"ring_03_r", "RightHandRing3",
	"thumb_01_r", "RightHandThumb1",
	"thumb_02_r", "RightHandThumb2",
	"thumb_03_r", "RightHandThumb3",
}

// chainNames はUEマネキンとMixamoで共通のチェーン名。
var chainNames = []string{
	"Root",
	"Spine",
	"Head",
	"LeftClavicle",
	"RightClavicle",
	"LeftArm",
	"RightArm",
	"LeftLeg",
	"RightLeg",
	"LeftIndex",
	"RightIndex",
	"LeftMiddle",
	"RightMiddle",
	"LeftPinky",
	"RightPinky",
	"LeftRing",
	"RightRing",
	"LeftThumb",
	"RightThumb",
}

// ue5AdditionalBones はUE5マネキンにだけ存在するボーン名。
var ue5AdditionalBones = []string{
	"spine_04",
	"spine_05",
	"neck_02",
	"lowerarm_twist_02_l",
	"lowerarm_twist_02_r",
	"upperarm_twist_02_l",
	"upperarm_twist_02_r",
	"thigh_twist_02_l",
	"thigh_twist_02_r",
	"calf_twist_02_l",
	"calf_twist_02_r",
}

// Default は既定の設定一式を生成する。
func Default() *Profile {
	chainTable := make([]string, 0, len(chainNames)*2)
	for _, name := range chainNames {
		chainTable = append(chainTable, name, name)
	}
	return &Profile{
		BoneMapping:            namemap.MustNamesMapperFromFlat(boneMappingTable),
		ChainMapping:           namemap.MustNamesMapperFromFlat(chainTable),
		SourcePreserveBones:    []string{"Head", "LeftToeBase", "RightToeBase"},
		SourceForceNewBones:    []string{},
		ReferencePreserveBones: []string{"head", "ball_r", "ball_l"},
		ReferenceForceNewBones: []string{
			"upperarm_l", "upperarm_r",
			"lowerarm_l", "lowerarm_r",
			"thigh_l", "thigh_r",
			"calf_l", "calf_r",
		},
		SkipChains:        []string{},
		DriveIKGoalChains: []string{"LeftArm", "RightArm", "LeftLeg", "RightLeg"},
		OneToOneRotationChains: []string{
			"LeftIndex", "RightIndex",
			"LeftMiddle", "RightMiddle",
			"LeftPinky", "RightPinky",
			"LeftRing", "RightRing",
			"LeftThumb", "RightThumb",
		},
		UE5AdditionalBones: append([]string(nil), ue5AdditionalBones...),
		SourceRig:          mixamoRigDefinition(),
		ReferenceRig:       mannequinRigDefinition(),
	}
}

// mixamoRigDefinition はMixamo系統のIKリグ定義を返す。
func mixamoRigDefinition() ikrig.RigDefinition {
	return ikrig.RigDefinition{
		RetargetRoot: "Hips",
		SolverRoot:   "Hips",
		Chains: append([]ikrig.ChainDefinition{
			{Name: "Root", StartBone: "root", EndBone: "root"},
			{Name: "Spine", StartBone: "Spine", EndBone: "Spine2"},
			{Name: "Head", StartBone: "Neck", EndBone: "head"},
			{Name: "LeftClavicle", StartBone: "LeftShoulder", EndBone: "LeftShoulder"},
			{Name: "LeftArm", StartBone: "LeftArm", EndBone: "LeftHand"},
			{Name: "RightClavicle", StartBone: "RightShoulder", EndBone: "RightShoulder"},
			{Name: "RightArm", StartBone: "RightArm", EndBone: "RightHand"},
			{Name: "LeftLeg", StartBone: "LeftUpLeg", EndBone: "LeftToeBase"},
			{Name: "RightLeg", StartBone: "RightUpLeg", EndBone: "RightToeBase"},
		}, fingerChains(func(side, finger string) (string, string) {
			return side + "Hand" + finger + "1", side + "Hand" + finger + "3"
		})...),
		BoneSettings: []ikrig.BoneSettingDefinition{
			{Bone: "Hips", RotationStiffness: 0.99},
			{Bone: "Spine", RotationStiffness: 0.7},
			{Bone: "Spine1", RotationStiffness: 0.8},
			{Bone: "Spine2", RotationStiffness: 0.95},
			{Bone: "LeftShoulder", RotationStiffness: 0.99},
			{Bone: "RightShoulder", RotationStiffness: 0.99},
			{Bone: "LeftForeArm", PreferredAngleHint: &ikrig.PreferredAngleHint{
				ChildBone: "LeftHand", AnglesLocal: mgl64.Vec3{0, -90, 0}, RightAxis: mmath.UpVector,
			}},
			{Bone: "RightForeArm", PreferredAngleHint: &ikrig.PreferredAngleHint{
				ChildBone: "RightHand", AnglesLocal: mgl64.Vec3{0, 90, 0}, RightAxis: mmath.UpVector,
			}},
			{Bone: "LeftUpLeg", PreferredAngleHint: &ikrig.PreferredAngleHint{
				ChildBone: "LeftLeg", AnglesLocal: mgl64.Vec3{0, -90, 0}, RightAxis: mmath.ForwardVector,
			}},
			{Bone: "LeftLeg", PreferredAngleHint: &ikrig.PreferredAngleHint{
				ChildBone: "LeftFoot", AnglesLocal: mgl64.Vec3{0, 90, 0}, RightAxis: mmath.ForwardVector,
			}},
			{Bone: "RightUpLeg", PreferredAngleHint: &ikrig.PreferredAngleHint{
				ChildBone: "RightLeg", AnglesLocal: mgl64.Vec3{0, -90, 0}, RightAxis: mmath.ForwardVector,
			}},
			{Bone: "RightLeg", PreferredAngleHint: &ikrig.PreferredAngleHint{
				ChildBone: "RightFoot", AnglesLocal: mgl64.Vec3{0, 90, 0}, RightAxis: mmath.ForwardVector,
			}},
		},
		Goals: []ikrig.GoalDefinition{
			{Name: "LeftHand_Goal", Bone: "LeftHand", Chain: "LeftArm", ExposePosition: true, ExposeRotation: true, PullChainAlpha: 0},
			{Name: "RightHand_Goal", Bone: "RightHand", Chain: "RightArm", ExposePosition: true, ExposeRotation: true, PullChainAlpha: 0},
			{Name: "LeftFoot_Goal", Bone: "LeftToeBase", Chain: "LeftLeg", ExposePosition: true, ExposeRotation: true, PullChainAlpha: 1},
			{Name: "RightFoot_Goal", Bone: "RightToeBase", Chain: "RightLeg", ExposePosition: true, ExposeRotation: true, PullChainAlpha: 1},
		},
	}
}

// mannequinRigDefinition はUEマネキン系統のIKリグ定義を返す。
func mannequinRigDefinition() ikrig.RigDefinition {
	return ikrig.RigDefinition{
		RetargetRoot: "pelvis",
		SolverRoot:   "pelvis",
		Chains: append([]ikrig.ChainDefinition{
			{Name: "Root", StartBone: "root", EndBone: "root"},
			{Name: "Spine", StartBone: "spine_01", EndBone: "spine_03"},
			{Name: "Head", StartBone: "neck_01", EndBone: "head"},
			{Name: "LeftClavicle", StartBone: "clavicle_l", EndBone: "clavicle_l"},
			{Name: "LeftArm", StartBone: "upperarm_l", EndBone: "hand_l"},
			{Name: "RightClavicle", StartBone: "clavicle_r", EndBone: "clavicle_r"},
			{Name: "RightArm", StartBone: "upperarm_r", EndBone: "hand_r"},
			{Name: "LeftLeg", StartBone: "thigh_l", EndBone: "ball_l"},
			{Name: "RightLeg", StartBone: "thigh_r", EndBone: "ball_r"},
		}, fingerChains(func(side, finger string) (string, string) {
			suffix := "_l"
			if side == "Right" {
				suffix = "_r"
			}
			prefix := lowerFinger(finger)
			return prefix + "_01" + suffix, prefix + "_03" + suffix
		})...),
		BoneSettings: []ikrig.BoneSettingDefinition{
			{Bone: "pelvis", RotationStiffness: 1.0},
			{Bone: "spine_01", RotationStiffness: 0.784},
			{Bone: "spine_02", RotationStiffness: 0.928},
			{Bone: "spine_03", RotationStiffness: 0.936},
			{Bone: "clavicle_l", RotationStiffness: 1.0},
			{Bone: "clavicle_r", RotationStiffness: 1.0},
			{Bone: "lowerarm_l", UsePreferredAngles: true, PreferredAngles: mgl64.Vec3{0, 0, 90}},
			{Bone: "lowerarm_r", UsePreferredAngles: true, PreferredAngles: mgl64.Vec3{0, 0, 90}},
			{Bone: "calf_l", UsePreferredAngles: true, PreferredAngles: mgl64.Vec3{0, 0, 90}},
			{Bone: "calf_r", UsePreferredAngles: true, PreferredAngles: mgl64.Vec3{0, 0, 90}},
			{Bone: "thigh_l", UsePreferredAngles: true, PreferredAngles: mgl64.Vec3{0, 0, -90}},
			{Bone: "thigh_r", UsePreferredAngles: true, PreferredAngles: mgl64.Vec3{0, 0, -90}},
		},
		Goals: []ikrig.GoalDefinition{
			{Name: "hand_l_Goal", Bone: "hand_l", Chain: "LeftArm", ExposePosition: true, ExposeRotation: true, PullChainAlpha: 0},
			{Name: "hand_r_Goal", Bone: "hand_r", Chain: "RightArm", ExposePosition: true, ExposeRotation: true, PullChainAlpha: 0},
			{Name: "foot_l_Goal", Bone: "ball_l", Chain: "LeftLeg", ExposePosition: true, ExposeRotation: true, PullChainAlpha: 1},
			{Name: "foot_r_Goal", Bone: "ball_r", Chain: "RightLeg", ExposePosition: true, ExposeRotation: true, PullChainAlpha: 1},
		},
	}
}

// fingerChains は左右5指のチェーン定義を返す。
func fingerChains(bones func(side, finger string) (string, string)) []ikrig.ChainDefinition {
	chains := make([]ikrig.ChainDefinition, 0, 10)
	for _, finger := range []string{"Index", "Middle", "Pinky", "Ring", "Thumb"} {
		for _, side := range []string{"Left", "Right"} {
			start, end := bones(side, finger)
			chains = append(chains, ikrig.ChainDefinition{Name: side + finger, StartBone: start, EndBone: end})
		}
	}
	return chains
}

// lowerFinger はUEマネキンの指ボーン接頭辞を返す。
func lowerFinger(finger string) string {
	switch finger {
	case "Index":
		return "index"
	case "Middle":
		return "middle"
	case "Pinky":
		return "pinky"
	case "Ring":
		return "ring"
	default:
		return "thumb"
	}
}
