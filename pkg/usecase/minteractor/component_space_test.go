package minteractor

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_rig_retarget/internal/testfixture"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/mmath"
)

func TestComponentSpaceTransformComposesAncestors(t *testing.T) {
	topology := newPoserTopology(t, "m", 5, 90)
	pose := topology.RefPose()

	got, err := ComponentSpaceTransform(topology, pose, 4)
	if err != nil {
		t.Fatalf("component space failed: %v", err)
	}
	want := mgl64.Vec3{0, 10, 10}
	if !mmath.NearEqualsVec3(got.Translation, want, 1e-9) {
		t.Fatalf("translation mismatch: got=%v want=%v", got.Translation, want)
	}

	root, err := ComponentSpaceTransform(topology, pose, 0)
	if err != nil {
		t.Fatalf("component space failed: %v", err)
	}
	if !root.NearEquals(pose[0], 1e-9) {
		t.Fatalf("root should equal its local transform: got=%+v want=%+v", root, pose[0])
	}
}

func TestComponentSpaceTransformIndexNone(t *testing.T) {
	got, err := ComponentSpaceTransform(nil, nil, -1)
	if err != nil {
		t.Fatalf("index none should not fail: %v", err)
	}
	if !got.IsIdentity() {
		t.Fatalf("index none should be identity: got=%+v", got)
	}
}

func TestComponentSpaceTransformRejectsInvalidInput(t *testing.T) {
	topology := testfixture.MixamoTopology()
	pose := topology.RefPose()

	if _, err := ComponentSpaceTransform(topology, pose, topology.Len()); !errors.Is(err, ErrPreconditionViolated) {
		t.Fatalf("out of range index should fail: got=%v", err)
	}
	if _, err := ComponentSpaceTransform(topology, pose[:1], 0); !errors.Is(err, ErrPreconditionViolated) {
		t.Fatalf("short pose should fail: got=%v", err)
	}
	if _, err := ComponentSpacePose(nil, pose); !errors.Is(err, ErrPreconditionViolated) {
		t.Fatalf("nil topology should fail: got=%v", err)
	}
}

func TestComponentSpacePoseMatchesPerJointAndRoundTrips(t *testing.T) {
	topology := testfixture.MixamoTopology()
	pose := topology.RefPose()

	transforms, err := ComponentSpacePose(topology, pose)
	if err != nil {
		t.Fatalf("component space pose failed: %v", err)
	}
	for i, joint := range topology.Joints {
		single, err := ComponentSpaceTransform(topology, pose, i)
		if err != nil {
			t.Fatalf("component space failed: bone=%s err=%v", joint.Name, err)
		}
		if !transforms[i].NearEquals(single, 1e-9) {
			t.Fatalf("component space mismatch: bone=%s got=%+v want=%+v", joint.Name, transforms[i], single)
		}
		if joint.ParentIndex < 0 {
			continue
		}
		local := transforms[i].RelativeTo(transforms[joint.ParentIndex])
		if !local.NearEquals(pose[i], 1e-9) {
			t.Fatalf("round trip mismatch: bone=%s got=%+v want=%+v", joint.Name, local, pose[i])
		}
	}
}
