// 指示: miu200521358
package moutput

import (
	"context"
	"errors"

	"github.com/miu200521358/mu_rig_retarget/pkg/domain/ikrig"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
)

// ErrAssetNotFound はアセットが存在しないことを表す。
var ErrAssetNotFound = errors.New("アセットが見つかりません")

// ChangeSet はスケルトン1体分のリターゲット結果を一括で反映する変更集合を表す。
type ChangeSet struct {
	Skeletons   []*model.Skeleton
	Meshes      []*model.SkinnedMesh
	Rigs        []*ikrig.Rig
	Retargeters []*ikrig.Retargeter
}

// IsEmpty は変更が無いか判定する。
func (c ChangeSet) IsEmpty() bool {
	return len(c.Skeletons) == 0 && len(c.Meshes) == 0 && len(c.Rigs) == 0 && len(c.Retargeters) == 0
}

// IAssetStore はアセット永続化の契約を表す。
type IAssetStore interface {
	// LoadSkeleton はIDでスケルトンを読み込む。
	LoadSkeleton(ctx context.Context, id string) (*model.Skeleton, error)
	// ListSkeletons は全スケルトンを読み込む。
	ListSkeletons(ctx context.Context) ([]*model.Skeleton, error)
	// MeshesUsingSkeleton はスケルトンを参照する全メッシュを読み込む。
	MeshesUsingSkeleton(ctx context.Context, skeletonID string) ([]*model.SkinnedMesh, error)
	// AssetExists はアセット参照が既に存在するか判定する。
	AssetExists(ctx context.Context, ref model.AssetRef) (bool, error)
	// Commit は変更集合を1トランザクションで反映する。失敗時は何も反映しない。
	Commit(ctx context.Context, changes ChangeSet) error
}

// IRigBuilder はIKリグとリターゲッター生成の契約を表す。
type IRigBuilder interface {
	// CreateRig はスケルトン (プレビューメッシュがあればその階層) からIKリグを生成する。
	CreateRig(
		ref model.AssetRef,
		skeleton *model.Skeleton,
		previewMesh *model.SkinnedMesh,
		definition ikrig.RigDefinition,
	) (*ikrig.Rig, []model.Warning, error)
	// CreateRetargeter は元リグから対象リグへのリターゲッターを生成する。
	CreateRetargeter(ref model.AssetRef, sourceRig *ikrig.Rig, targetRig *ikrig.Rig) (*ikrig.Retargeter, error)
}

// IRetargetPoseWriter はリターゲットポーズ書き込み先の契約を表す。
type IRetargetPoseWriter interface {
	AddRetargetPose(name string)
	SetPoseTransform(poseName string, jointName string, transform mmath.Transform) error
	SetCurrentRetargetPose(poseName string) error
	TargetPreviewMesh() string
}

// IUserInteraction は利用者への問い合わせ契約を表す。
type IUserInteraction interface {
	// PickReferenceSkeleton は候補から参照スケルトンを選ばせる。nil は中断。
	PickReferenceSkeleton(ctx context.Context, candidates []*model.Skeleton) (*model.Skeleton, error)
	// ConfirmOverwrite は上書き対象アセットの確認を求める。
	ConfirmOverwrite(ctx context.Context, assets []model.AssetRef) (bool, error)
}

// IPreviewRenderer はポーズプレビュー出力の契約を表す。
type IPreviewRenderer interface {
	// RenderPose はボーン階層とポーズから静止画を出力し、出力先を返す。
	RenderPose(name string, topology *model.Topology, pose model.Pose) (string, error)
}
