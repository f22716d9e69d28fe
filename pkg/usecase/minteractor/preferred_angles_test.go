package minteractor

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rig_retarget/internal/testfixture"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/ikrig"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/rigconfig"
)

func TestRemapPreferredAnglesIdentityBone(t *testing.T) {
	topology := testfixture.MixamoTopology()
	cases := []struct {
		bone   string
		child  string
		angles mgl64.Vec3
		right  mgl64.Vec3
		want   mgl64.Vec3
	}{
		{bone: "LeftForeArm", child: "LeftHand", angles: mgl64.Vec3{0, -90, 0}, right: mmath.UpVector, want: mgl64.Vec3{0, 0, 90}},
		{bone: "RightForeArm", child: "RightHand", angles: mgl64.Vec3{0, 90, 0}, right: mmath.UpVector, want: mgl64.Vec3{0, 0, -90}},
		{bone: "LeftUpLeg", child: "LeftLeg", angles: mgl64.Vec3{0, -90, 0}, right: mmath.ForwardVector, want: mgl64.Vec3{-90, 0, 0}},
	}
	for _, tc := range cases {
		got, err := RemapPreferredAngles(topology, tc.bone, tc.child, tc.angles, tc.right)
		if err != nil {
			t.Fatalf("remap failed: bone=%s err=%v", tc.bone, err)
		}
		if !mmath.NearEqualsVec3(got, tc.want, 1e-9) {
			t.Fatalf("preferred angles mismatch: bone=%s got=%v want=%v", tc.bone, got, tc.want)
		}
	}
}

func TestRemapPreferredAnglesRotatedBone(t *testing.T) {
	topology, err := model.NewTopology([]model.Joint{
		{
			Name:        "a",
			ParentIndex: -1,
			LocalTransform: mmath.NewTransform(
				mgl64.Vec3{},
				mgl64.QuatRotate(mgl64.DegToRad(90), mmath.UnitZ),
				mgl64.Vec3{1, 1, 1},
			),
		},
		{Name: "b", ParentIndex: 0, LocalTransform: mmath.TranslationTransform(5, 0, 0)},
	})
	if err != nil {
		t.Fatalf("topology build failed: %v", err)
	}

	got, err := RemapPreferredAngles(topology, "a", "b", mgl64.Vec3{10, 20, 30}, mmath.UnitZ)
	if err != nil {
		t.Fatalf("remap failed: %v", err)
	}
	want := mgl64.Vec3{10, 30, -20}
	if !mmath.NearEqualsVec3(got, want, 1e-9) {
		t.Fatalf("preferred angles mismatch: got=%v want=%v", got, want)
	}
}

func TestRemapPreferredAnglesErrors(t *testing.T) {
	topology := testfixture.MixamoTopology()

	if _, err := RemapPreferredAngles(topology, "Missing", "LeftHand", mgl64.Vec3{}, mmath.UpVector); !errors.Is(err, ErrPreconditionViolated) {
		t.Fatalf("missing bone should fail: got=%v", err)
	}
	if _, err := RemapPreferredAngles(topology, "LeftArm", "LeftHand", mgl64.Vec3{}, mmath.UpVector); !errors.Is(err, ErrPreconditionViolated) {
		t.Fatalf("non direct child should fail: got=%v", err)
	}
	if _, err := RemapPreferredAngles(topology, "LeftForeArm", "LeftHand", mgl64.Vec3{}, mmath.UnitX); !errors.Is(err, ErrDegenerateBasis) {
		t.Fatalf("parallel right axis should fail: got=%v", err)
	}
}

func TestResolvePreferredAnglesForSourceRig(t *testing.T) {
	topology, _, err := SynthesizeRoot(testfixture.MixamoTopology())
	if err != nil {
		t.Fatalf("synthesize root failed: %v", err)
	}
	definition := rigconfig.Default().SourceRig
	definition.BoneSettings = append(definition.BoneSettings, ikrig.BoneSettingDefinition{
		Bone:               "Missing",
		PreferredAngleHint: &ikrig.PreferredAngleHint{ChildBone: "MissingChild", RightAxis: mmath.UpVector},
	})

	resolved, warnings := resolvePreferredAngles(definition, topology)

	if len(warnings) != 1 || warnings[0].ID != model.RetargetWarningPreferredAngleSkipped {
		t.Fatalf("warnings mismatch: got=%v", warnings)
	}
	for _, setting := range resolved.BoneSettings {
		if setting.PreferredAngleHint != nil {
			t.Fatalf("hint should be resolved: bone=%s", setting.Bone)
		}
		if setting.Bone == "LeftForeArm" {
			if !setting.UsePreferredAngles || !mmath.NearEqualsVec3(setting.PreferredAngles, mgl64.Vec3{0, 0, 90}, 1e-9) {
				t.Fatalf("LeftForeArm preferred angles mismatch: got=%+v", setting)
			}
		}
		if setting.Bone == "Missing" && setting.UsePreferredAngles {
			t.Fatalf("unresolved hint should not enable preferred angles")
		}
	}
	if definition.BoneSettings[6].PreferredAngleHint == nil {
		t.Fatalf("input definition should not be modified")
	}
}
