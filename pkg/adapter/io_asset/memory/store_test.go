package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/miu200521358/mu_rig_retarget/internal/testfixture"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/ikrig"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/port/moutput"
)

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore()
	skeleton := testfixture.NewSkeleton("mixamo", "SK_Mixamo", testfixture.MixamoPackagePath, testfixture.MixamoTopology())
	if err := store.PutSkeleton(skeleton); err != nil {
		t.Fatalf("put skeleton failed: %v", err)
	}
	skeleton.Name = "changed"

	loaded, err := store.LoadSkeleton(context.Background(), "mixamo")
	if err != nil {
		t.Fatalf("load skeleton failed: %v", err)
	}
	if loaded.Name != "SK_Mixamo" {
		t.Fatalf("stored skeleton should not follow caller changes: got=%s", loaded.Name)
	}
	loaded.Topology.Joints[0].Name = "changed"

	again, err := store.LoadSkeleton(context.Background(), "mixamo")
	if err != nil {
		t.Fatalf("load skeleton failed: %v", err)
	}
	if again.Topology.Joints[0].Name != "Hips" {
		t.Fatalf("stored topology should not follow loaded changes: got=%s", again.Topology.Joints[0].Name)
	}
}

func TestStoreLoadSkeletonNotFound(t *testing.T) {
	_, err := NewStore().LoadSkeleton(context.Background(), "missing")
	if !errors.Is(err, moutput.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound: got=%v", err)
	}
}

func TestStoreMeshesUsingSkeletonKeepsOrder(t *testing.T) {
	store := NewStore()
	topology := testfixture.MixamoTopology()
	for _, id := range []string{"b", "a", "c"} {
		skeletonID := "mixamo"
		if id == "c" {
			skeletonID = "other"
		}
		if err := store.PutMesh(testfixture.NewMesh(id, "SK_"+id, testfixture.MixamoPackagePath, skeletonID, topology)); err != nil {
			t.Fatalf("put mesh failed: %v", err)
		}
	}

	meshes, err := store.MeshesUsingSkeleton(context.Background(), "mixamo")
	if err != nil {
		t.Fatalf("meshes failed: %v", err)
	}
	if len(meshes) != 2 || meshes[0].ID != "b" || meshes[1].ID != "a" {
		t.Fatalf("meshes mismatch: got=%d", len(meshes))
	}
}

func TestStoreCommitAndAssetExists(t *testing.T) {
	store := NewStore()
	ref := model.AssetRef{Kind: model.AssetKindIKRig, PackagePath: testfixture.MixamoPackagePath, Name: "IK_Mixamo"}
	exists, err := store.AssetExists(context.Background(), ref)
	if err != nil || exists {
		t.Fatalf("rig should not exist yet: exists=%v err=%v", exists, err)
	}

	rig := &ikrig.Rig{Name: ref.Name, PackagePath: ref.PackagePath, RetargetRoot: "Hips"}
	retargeter := &ikrig.Retargeter{Name: "RTG_A_B", PackagePath: ref.PackagePath, CurrentRetargetPose: ikrig.DefaultPoseName}
	err = store.Commit(context.Background(), moutput.ChangeSet{
		Rigs:        []*ikrig.Rig{rig},
		Retargeters: []*ikrig.Retargeter{retargeter},
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	rig.RetargetRoot = "changed"

	exists, err = store.AssetExists(context.Background(), ref)
	if err != nil || !exists {
		t.Fatalf("rig should exist: exists=%v err=%v", exists, err)
	}
	stored, ok := store.Rig(ref)
	if !ok || stored.RetargetRoot != "Hips" {
		t.Fatalf("stored rig mismatch: got=%+v", stored)
	}
	if _, ok := store.Retargeter(retargeter.Ref()); !ok {
		t.Fatalf("retargeter should be stored")
	}
}

func TestStoreHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewStore().Commit(ctx, moutput.ChangeSet{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled: got=%v", err)
	}
}
