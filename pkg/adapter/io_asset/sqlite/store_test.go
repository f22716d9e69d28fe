package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_rig_retarget/internal/testfixture"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/ikrig"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/port/moutput"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatalf("empty path should fail")
	}
}

func TestStoreSkeletonRoundTripKeepsOrder(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	mannequin := testfixture.NewSkeleton("ue", "SK_Mannequin", testfixture.MannequinPackagePath, testfixture.MannequinTopology())
	mixamo := testfixture.NewSkeleton("mixamo", "SK_Mixamo", testfixture.MixamoPackagePath, testfixture.MixamoTopology())
	for _, skeleton := range []*model.Skeleton{mannequin, mixamo} {
		if err := store.PutSkeleton(ctx, skeleton); err != nil {
			t.Fatalf("put skeleton failed: %v", err)
		}
	}
	mannequin.PreviewMeshID = "mesh"
	if err := store.PutSkeleton(ctx, mannequin); err != nil {
		t.Fatalf("update skeleton failed: %v", err)
	}

	skeletons, err := store.ListSkeletons(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(skeletons) != 2 || skeletons[0].ID != "ue" || skeletons[1].ID != "mixamo" {
		t.Fatalf("skeleton order mismatch: got=%d", len(skeletons))
	}
	if skeletons[0].PreviewMeshID != "mesh" {
		t.Fatalf("update should be stored: got=%s", skeletons[0].PreviewMeshID)
	}
	loaded, err := store.LoadSkeleton(ctx, "mixamo")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := mixamo.Topology
	if loaded.Topology.Len() != want.Len() {
		t.Fatalf("bone count mismatch: got=%d want=%d", loaded.Topology.Len(), want.Len())
	}
	for i, joint := range want.Joints {
		got := loaded.Topology.Joints[i]
		if got.Name != joint.Name || got.ParentIndex != joint.ParentIndex || !got.LocalTransform.NearEquals(joint.LocalTransform, 1e-12) {
			t.Fatalf("joint mismatch: index=%d got=%+v want=%+v", i, got, joint)
		}
	}
}

func TestStoreLoadSkeletonNotFound(t *testing.T) {
	store, _ := openTestStore(t)
	if _, err := store.LoadSkeleton(context.Background(), "missing"); !errors.Is(err, moutput.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound: got=%v", err)
	}
}

func TestStoreCommitPersistsAcrossReopen(t *testing.T) {
	store, path := openTestStore(t)
	ctx := context.Background()
	topology := testfixture.MixamoTopology()
	skeleton := testfixture.NewSkeleton("mixamo", "SK_Mixamo", testfixture.MixamoPackagePath, topology)
	mesh := testfixture.NewImportedMesh("mesh", "SKM_Mixamo", testfixture.MixamoPackagePath, "mixamo", topology)
	rig := &ikrig.Rig{Name: "IK_Mixamo", PackagePath: testfixture.MixamoPackagePath, RetargetRoot: "Hips"}
	retargeter := &ikrig.Retargeter{
		Name:                "RTG_Mixamo_Mannequin",
		PackagePath:         testfixture.MixamoPackagePath,
		ChainMaps:           []ikrig.ChainMap{{TargetChain: "Root", SourceChain: "Root", RotationMode: ikrig.RotationModeInterpolated}},
		CurrentRetargetPose: ikrig.DefaultPoseName,
	}
	err := store.Commit(ctx, moutput.ChangeSet{
		Skeletons:   []*model.Skeleton{skeleton},
		Meshes:      []*model.SkinnedMesh{mesh},
		Rigs:        []*ikrig.Rig{rig},
		Retargeters: []*ikrig.Retargeter{retargeter},
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	for _, ref := range []model.AssetRef{skeleton.Ref(), mesh.Ref(), rig.Ref(), retargeter.Ref()} {
		exists, err := reopened.AssetExists(ctx, ref)
		if err != nil || !exists {
			t.Fatalf("asset should exist: ref=%s err=%v", ref.String(), err)
		}
	}
	meshes, err := reopened.MeshesUsingSkeleton(ctx, "mixamo")
	if err != nil || len(meshes) != 1 {
		t.Fatalf("meshes mismatch: got=%d err=%v", len(meshes), err)
	}
	if got := len(meshes[0].LODs[0].Imported.Bones); got != topology.Len() {
		t.Fatalf("imported bones mismatch: got=%d want=%d", got, topology.Len())
	}
	storedRetargeter, err := reopened.Retargeter(ctx, retargeter.Ref())
	if err != nil {
		t.Fatalf("retargeter load failed: %v", err)
	}
	if len(storedRetargeter.ChainMaps) != 1 || storedRetargeter.ChainMaps[0].SourceChain != "Root" {
		t.Fatalf("retargeter mismatch: got=%+v", storedRetargeter)
	}
	storedRig, err := reopened.Rig(ctx, rig.Ref())
	if err != nil || storedRig.RetargetRoot != "Hips" {
		t.Fatalf("rig mismatch: got=%+v err=%v", storedRig, err)
	}
}

func TestStoreCommitRollsBackOnFailure(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	skeleton := testfixture.NewSkeleton("mixamo", "SK_Mixamo", testfixture.MixamoPackagePath, testfixture.MixamoTopology())

	err := store.Commit(ctx, moutput.ChangeSet{
		Skeletons: []*model.Skeleton{skeleton},
		Meshes:    []*model.SkinnedMesh{{Name: "no id"}},
	})
	if err == nil {
		t.Fatalf("commit should fail")
	}
	if _, err := store.LoadSkeleton(ctx, "mixamo"); !errors.Is(err, moutput.ErrAssetNotFound) {
		t.Fatalf("skeleton should be rolled back: got=%v", err)
	}
}

func TestStoreAssetExistsRejectsUnknownKind(t *testing.T) {
	store, _ := openTestStore(t)
	if _, err := store.AssetExists(context.Background(), model.AssetRef{Kind: "texture", Name: "T"}); err == nil {
		t.Fatalf("unknown kind should fail")
	}
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id TEXT);\n-- +migrate Down\nDROP TABLE a;\n"
	if got := extractUpMigration(content); got != "\nCREATE TABLE a (id TEXT);\n" {
		t.Fatalf("up migration mismatch: got=%q", got)
	}
	if got := extractUpMigration("SELECT 1;"); got != "SELECT 1;" {
		t.Fatalf("plain migration mismatch: got=%q", got)
	}
}
