// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"
	"slices"

	"github.com/miu200521358/mu_rig_retarget/pkg/domain/ikrig"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/namemap"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/rigconfig"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/port/moutput"
)

const (
	rigNamePrefix        = "IK_"
	retargeterNamePrefix = "RTG_"
)

// RigRef はスケルトンと同じパッケージに置くIKリグの参照を返す。
func RigRef(skeleton *model.Skeleton) model.AssetRef {
	return model.AssetRef{
		Kind:        model.AssetKindIKRig,
		PackagePath: skeleton.PackagePath,
		Name:        rigNamePrefix + skeleton.BaseName(),
	}
}

// RetargeterRef は source から target へのリターゲッター参照を返す。配置先は packagePath。
func RetargeterRef(packagePath string, source *model.Skeleton, target *model.Skeleton) model.AssetRef {
	return model.AssetRef{
		Kind:        model.AssetKindRetargeter,
		PackagePath: packagePath,
		Name:        fmt.Sprintf("%s%s_%s", retargeterNamePrefix, source.BaseName(), target.BaseName()),
	}
}

// overwriteCandidates はリターゲットで生成するアセット参照一覧を返す。
func overwriteCandidates(skeleton *model.Skeleton, reference *model.Skeleton) []model.AssetRef {
	return []model.AssetRef{
		RigRef(skeleton),
		RigRef(reference),
		RetargeterRef(skeleton.PackagePath, skeleton, reference),
		RetargeterRef(skeleton.PackagePath, reference, skeleton),
	}
}

// enumerateAssetsToOverwrite は既に存在して上書きされるアセット参照を重複なしで返す。
func enumerateAssetsToOverwrite(
	ctx context.Context,
	store moutput.IAssetStore,
	skeletons []*model.Skeleton,
	reference *model.Skeleton,
) ([]model.AssetRef, error) {
	assets := make([]model.AssetRef, 0)
	for _, skeleton := range skeletons {
		if skeleton == nil {
			continue
		}
		for _, ref := range overwriteCandidates(skeleton, reference) {
			if slices.Contains(assets, ref) {
				continue
			}
			exists, err := store.AssetExists(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("アセットの存在確認に失敗しました: %s: %w", ref.String(), err)
			}
			if exists {
				assets = append(assets, ref)
			}
		}
	}
	return assets, nil
}

// chainSettings はリターゲッターのチェーン設定条件を表す。一覧は対象リグ側のチェーン名。
type chainSettings struct {
	targetToSource   namemap.NamesMapper
	skipChains       []string
	driveIKGoal      []string
	oneToOneRotation []string
}

// configureRetargeterChains は対象チェーンごとに元チェーンと方式を設定する。
// 除外対象と対応先の無いチェーンは未設定のまま残す。
func configureRetargeterChains(retargeter *ikrig.Retargeter, settings chainSettings) error {
	for i := range retargeter.ChainMaps {
		chainMap := &retargeter.ChainMaps[i]
		if slices.Contains(settings.skipChains, chainMap.TargetChain) {
			continue
		}
		sourceChain, ok := settings.targetToSource.MapName(chainMap.TargetChain)
		if !ok {
			continue
		}
		if err := retargeter.SetSourceChainForTargetChain(chainMap.TargetChain, sourceChain); err != nil {
			return err
		}
		if sourceChain == rigconfig.RootChainName {
			chainMap.TranslationMode = ikrig.ChainTranslationGloballyScaled
		}
		if slices.Contains(settings.driveIKGoal, chainMap.TargetChain) {
			chainMap.DriveIKGoal = true
		}
		if slices.Contains(settings.oneToOneRotation, chainMap.TargetChain) {
			chainMap.RotationMode = ikrig.RotationModeOneToOne
		}
	}
	return nil
}

// setupTranslationRetargetingModes は全ボーンをスケルトン基準、骨盤を長さ比スケール、root をアニメーション基準にする。
func setupTranslationRetargetingModes(skeleton *model.Skeleton, pelvisName string) error {
	topology := skeleton.Topology
	if topology.IndexOf(model.RootJointName) != 0 {
		return fmt.Errorf("%w: skeleton=%s", ErrRootAtWrongPosition, skeleton.Name)
	}
	modes := make([]model.TranslationRetargetMode, topology.Len())
	for i := range modes {
		modes[i] = model.TranslationRetargetSkeleton
	}
	if pelvisIndex := topology.IndexOf(pelvisName); pelvisIndex >= 0 {
		modes[pelvisIndex] = model.TranslationRetargetAnimationScaled
	}
	modes[0] = model.TranslationRetargetAnimation
	skeleton.TranslationModes = modes
	return nil
}
