// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/rigconfig"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/port/moutput"
)

// RetargetUsecaseDeps はリターゲットユースケースの依存を表す。
type RetargetUsecaseDeps struct {
	AssetStore      moutput.IAssetStore
	RigBuilder      moutput.IRigBuilder
	UserInteraction moutput.IUserInteraction
	// PreviewRenderer は任意。nil の場合はプレビューを出力しない。
	PreviewRenderer moutput.IPreviewRenderer
	// Profile は nil の場合 rigconfig.Default を使う。
	Profile *rigconfig.Profile
}

// RetargetUsecase はMixamo系統スケルトンをUEマネキン系統へリターゲットする処理をまとめたユースケースを表す。
type RetargetUsecase struct {
	assetStore      moutput.IAssetStore
	rigBuilder      moutput.IRigBuilder
	userInteraction moutput.IUserInteraction
	previewRenderer moutput.IPreviewRenderer
	profile         *rigconfig.Profile
	classifier      SkeletonClassifier
}

// NewRetargetUsecase はリターゲットユースケースを生成する。
func NewRetargetUsecase(deps RetargetUsecaseDeps) *RetargetUsecase {
	profile := deps.Profile
	if profile == nil {
		profile = rigconfig.Default()
	}
	return &RetargetUsecase{
		assetStore:      deps.AssetStore,
		rigBuilder:      deps.RigBuilder,
		userInteraction: deps.UserInteraction,
		previewRenderer: deps.PreviewRenderer,
		profile:         profile,
		classifier:      NewSkeletonClassifier(profile),
	}
}
