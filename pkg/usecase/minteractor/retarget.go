// 指示: miu200521358
package minteractor

import (
	"context"
	"errors"
	"fmt"

	"github.com/miu200521358/mu_rig_retarget/pkg/domain/ikrig"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/rigconfig"
	"github.com/miu200521358/mu_rig_retarget/pkg/shared/logging"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/port/moutput"
	"github.com/tiendc/go-deepcopy"
)

// SkeletonSummary はスケルトンの系統判定結果を表す。
type SkeletonSummary struct {
	ID          string
	Name        string
	BoneCount   int
	IsSource    bool
	IsReference bool
}

// ListSkeletons は全スケルトンと系統判定結果を返す。
func (uc *RetargetUsecase) ListSkeletons(ctx context.Context) ([]SkeletonSummary, error) {
	if uc.assetStore == nil {
		return nil, fmt.Errorf("アセットストアが設定されていません")
	}
	skeletons, err := uc.assetStore.ListSkeletons(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]SkeletonSummary, 0, len(skeletons))
	for _, skeleton := range skeletons {
		summaries = append(summaries, SkeletonSummary{
			ID:          skeleton.ID,
			Name:        skeleton.Name,
			BoneCount:   skeleton.Topology.Len(),
			IsSource:    uc.classifier.IsSourceSkeleton(skeleton.Topology),
			IsReference: uc.classifier.IsReferenceSkeleton(skeleton.Topology),
		})
	}
	return summaries, nil
}

// RetargetSkeletons は利用者が選んだ参照スケルトンへ各スケルトンをリターゲットする。
// 参照未選択と上書き拒否は Aborted を立てて nil エラーで返す。キャンセルはスケルトン単位で確認する。
func (uc *RetargetUsecase) RetargetSkeletons(ctx context.Context, request RetargetRequest) (*RetargetBatchResult, error) {
	if uc.assetStore == nil || uc.rigBuilder == nil || uc.userInteraction == nil {
		return nil, fmt.Errorf("リターゲットの依存が設定されていません")
	}
	result := &RetargetBatchResult{}
	if len(request.SkeletonIDs) == 0 {
		return result, nil
	}

	skeletons := make([]*model.Skeleton, len(request.SkeletonIDs))
	loadErrs := make([]error, len(request.SkeletonIDs))
	for i, id := range request.SkeletonIDs {
		skeletons[i], loadErrs[i] = uc.assetStore.LoadSkeleton(ctx, id)
	}

	all, err := uc.assetStore.ListSkeletons(ctx)
	if err != nil {
		return nil, fmt.Errorf("スケルトン一覧の取得に失敗しました: %w", err)
	}
	reference, err := uc.userInteraction.PickReferenceSkeleton(ctx, uc.classifier.ReferenceCandidates(all))
	if err != nil {
		return nil, err
	}
	if reference == nil {
		logRetargetError("参照スケルトンが選択されなかったため中断しました")
		result.Aborted = true
		return result, nil
	}
	result.Reference = reference
	reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
		Type:          RetargetProgressEventTypeReferenceSelected,
		SkeletonName:  reference.Name,
		SkeletonCount: len(skeletons),
	})

	overwrite, err := enumerateAssetsToOverwrite(ctx, uc.assetStore, skeletons, reference)
	if err != nil {
		return nil, err
	}
	result.Overwrite = overwrite
	if len(overwrite) > 0 {
		confirmed, err := uc.userInteraction.ConfirmOverwrite(ctx, overwrite)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			logRetargetError("上書きが拒否されたため中断しました: count=%d", len(overwrite))
			result.Aborted = true
			return result, nil
		}
	}
	reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
		Type:          RetargetProgressEventTypeOverwriteConfirmed,
		SkeletonCount: len(skeletons),
	})

	for i, skeleton := range skeletons {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if loadErrs[i] != nil {
			logRetargetError("スケルトンの読み込みに失敗しました: id=%s: %v", request.SkeletonIDs[i], loadErrs[i])
			result.Skeletons = append(result.Skeletons, SkeletonRetargetResult{
				SkeletonID: request.SkeletonIDs[i],
				Status:     SkeletonRetargetFailed,
				Err:        loadErrs[i],
			})
			continue
		}
		reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
			Type:          RetargetProgressEventTypeSkeletonStarted,
			SkeletonName:  skeleton.Name,
			SkeletonIndex: i,
			SkeletonCount: len(skeletons),
		})
		skeletonResult := uc.retargetSkeleton(ctx, skeleton, reference, request, i, len(skeletons))
		result.Skeletons = append(result.Skeletons, skeletonResult)
		reportRetargetProgress(request.ProgressReporter, RetargetProgressEvent{
			Type:          RetargetProgressEventTypeSkeletonCompleted,
			SkeletonName:  skeleton.Name,
			SkeletonIndex: i,
			SkeletonCount: len(skeletons),
		})
	}
	return result, nil
}

// retargetSkeleton はスケルトン1体をリターゲットし、成功時のみ変更を一括反映する。
func (uc *RetargetUsecase) retargetSkeleton(
	ctx context.Context,
	skeleton *model.Skeleton,
	reference *model.Skeleton,
	request RetargetRequest,
	index int,
	count int,
) SkeletonRetargetResult {
	result := SkeletonRetargetResult{}
	if skeleton != nil {
		result.SkeletonID = skeleton.ID
		result.SkeletonName = skeleton.Name
	}
	logRetargetInfo("リターゲット開始: skeleton=%s (%d/%d)", result.SkeletonName, index+1, count)

	unit := &retargetUnit{}
	err := uc.buildRetargetUnit(ctx, skeleton, reference, unit, func(event RetargetProgressEvent) {
		event.SkeletonIndex = index
		event.SkeletonCount = count
		reportRetargetProgress(request.ProgressReporter, event)
	})
	result.Warnings = unit.warnings
	switch {
	case errors.Is(err, ErrSelfRetarget), errors.Is(err, ErrRootAtWrongPosition):
		result.Status = SkeletonRetargetSkipped
		result.Err = err
		return result
	case err != nil:
		logRetargetError("リターゲットに失敗しました: skeleton=%s: %v", result.SkeletonName, err)
		result.Status = SkeletonRetargetFailed
		result.Err = err
		return result
	}

	if err := uc.assetStore.Commit(ctx, unit.changes); err != nil {
		logRetargetError("リターゲット結果の反映に失敗しました: skeleton=%s: %v", result.SkeletonName, err)
		result.Status = SkeletonRetargetFailed
		result.Err = err
		return result
	}
	result.Status = SkeletonRetargetSucceeded
	result.Rigs = unit.changes.Rigs
	result.Retargeters = unit.changes.Retargeters
	if request.PreviewEnabled {
		result.PreviewPaths = uc.renderPreviews(unit)
		result.Warnings = unit.warnings
	}
	logRetargetInfo("リターゲット完了: skeleton=%s meshes=%d", result.SkeletonName, len(unit.changes.Meshes))
	return result
}

// buildRetargetUnit はスケルトン1体分の変更集合を複製上で組み立てる。
func (uc *RetargetUsecase) buildRetargetUnit(
	ctx context.Context,
	skeleton *model.Skeleton,
	reference *model.Skeleton,
	unit *retargetUnit,
	report func(event RetargetProgressEvent),
) error {
	if skeleton == nil || reference == nil || skeleton.Topology == nil || reference.Topology == nil {
		return fmt.Errorf("%w: スケルトンまたは参照スケルトンが未設定です", ErrPreconditionViolated)
	}
	if skeleton.ID == reference.ID {
		unit.addWarnings(model.NewWarning(model.RetargetWarningSelfRetarget,
			"参照スケルトン自身へのリターゲットをスキップしました: skeleton=%s", skeleton.Name))
		return fmt.Errorf("%w: skeleton=%s", ErrSelfRetarget, skeleton.Name)
	}
	if HasRootAtWrongPosition(skeleton.Topology) {
		unit.addWarnings(model.NewWarning(model.RetargetWarningRootAtWrongPosition,
			"root ボーンが先頭に無いためスキップしました: skeleton=%s index=%d",
			skeleton.Name, skeleton.Topology.IndexOf(model.RootJointName)))
		return fmt.Errorf("%w: skeleton=%s", ErrRootAtWrongPosition, skeleton.Name)
	}
	if !uc.classifier.IsSourceSkeleton(skeleton.Topology) {
		unit.addWarnings(model.NewWarning(model.RetargetWarningNotSourceFamily,
			"Mixamo系統と判定できないスケルトンです: skeleton=%s", skeleton.Name))
	}

	meshes, err := uc.assetStore.MeshesUsingSkeleton(ctx, skeleton.ID)
	if err != nil {
		return fmt.Errorf("メッシュの取得に失敗しました: skeleton=%s: %w", skeleton.Name, err)
	}
	if len(meshes) == 0 {
		unit.addWarnings(model.NewWarning(model.RetargetWarningNoMeshes,
			"スケルトンを使うメッシュがありません: skeleton=%s", skeleton.Name))
	}

	updatedSkeleton, updatedMeshes, err := uc.addRootBone(skeleton, meshes, unit)
	if err != nil {
		return err
	}
	if updatedSkeleton.PreviewMeshID == "" && len(updatedMeshes) > 0 {
		updatedSkeleton.PreviewMeshID = updatedMeshes[0].ID
	}
	report(RetargetProgressEvent{
		Type:         RetargetProgressEventTypeRootAdded,
		SkeletonName: skeleton.Name,
		MeshCount:    len(updatedMeshes),
	})

	referenceMeshes, err := uc.assetStore.MeshesUsingSkeleton(ctx, reference.ID)
	if err != nil {
		return fmt.Errorf("参照メッシュの取得に失敗しました: skeleton=%s: %w", reference.Name, err)
	}
	sourceRig, err := uc.createRig(updatedSkeleton, findMesh(updatedMeshes, updatedSkeleton.PreviewMeshID), uc.profile.SourceRig, unit)
	if err != nil {
		return err
	}
	referenceRig, err := uc.createRig(reference, findMesh(referenceMeshes, reference.PreviewMeshID), uc.profile.ReferenceRig, unit)
	if err != nil {
		return err
	}
	report(RetargetProgressEvent{Type: RetargetProgressEventTypeRigsCreated, SkeletonName: skeleton.Name})

	chainMapping := uc.profile.ChainMapping
	referenceToSkeleton, err := uc.rigBuilder.CreateRetargeter(
		RetargeterRef(skeleton.PackagePath, reference, skeleton), referenceRig, sourceRig)
	if err != nil {
		return fmt.Errorf("リターゲッターの生成に失敗しました: %w", err)
	}
	if err := configureRetargeterChains(referenceToSkeleton, chainSettings{
		targetToSource:   chainMapping.Inverse(),
		skipChains:       chainMapping.MapNames(uc.profile.SkipChains),
		driveIKGoal:      chainMapping.MapNames(uc.profile.DriveIKGoalChains),
		oneToOneRotation: chainMapping.MapNames(uc.profile.OneToOneRotationChains),
	}); err != nil {
		return err
	}

	if err := setupTranslationRetargetingModes(updatedSkeleton, rigconfig.SourcePelvisBoneName); err != nil {
		return err
	}

	referencePoser, err := NewSkeletonPoser(reference.Topology, nil)
	if err != nil {
		return err
	}
	if err := referencePoser.RetargetBasePose(updatedMeshes, referenceToSkeleton, BasePoseRetargetOptions{
		PreserveNames: uc.profile.SourcePreserveBones,
		ForceNewNames: uc.profile.SourceForceNewBones,
		Mapper:        uc.profile.BoneMapping.Inverse(),
		ApplyToMesh:   true,
	}); err != nil {
		return err
	}

	skeletonToReference, err := uc.rigBuilder.CreateRetargeter(
		RetargeterRef(skeleton.PackagePath, skeleton, reference), sourceRig, referenceRig)
	if err != nil {
		return fmt.Errorf("リターゲッターの生成に失敗しました: %w", err)
	}
	if err := configureRetargeterChains(skeletonToReference, chainSettings{
		targetToSource:   chainMapping,
		skipChains:       uc.profile.SkipChains,
		driveIKGoal:      uc.profile.DriveIKGoalChains,
		oneToOneRotation: uc.profile.OneToOneRotationChains,
	}); err != nil {
		return err
	}

	skeletonPoser, err := NewSkeletonPoser(updatedSkeleton.Topology, nil)
	if err != nil {
		return err
	}
	if err := skeletonPoser.RetargetBasePose(referenceMeshes, skeletonToReference, BasePoseRetargetOptions{
		PreserveNames: uc.profile.ReferencePreserveBones,
		ForceNewNames: uc.profile.ReferenceForceNewBones,
		Mapper:        uc.profile.BoneMapping,
		ApplyToMesh:   false,
	}); err != nil {
		return err
	}
	report(RetargetProgressEvent{
		Type:         RetargetProgressEventTypeBasePoseRetargeted,
		SkeletonName: skeleton.Name,
		MeshCount:    len(updatedMeshes) + len(referenceMeshes),
	})

	unit.changes = moutput.ChangeSet{
		Skeletons:   []*model.Skeleton{updatedSkeleton},
		Meshes:      updatedMeshes,
		Rigs:        []*ikrig.Rig{sourceRig, referenceRig},
		Retargeters: []*ikrig.Retargeter{referenceToSkeleton, skeletonToReference},
	}
	return nil
}

// addRootBone はスケルトンと全メッシュの複製へ root ボーンを加え、メッシュにだけあるボーンをスケルトンへ統合する。
func (uc *RetargetUsecase) addRootBone(
	skeleton *model.Skeleton,
	meshes []*model.SkinnedMesh,
	unit *retargetUnit,
) (*model.Skeleton, []*model.SkinnedMesh, error) {
	updatedSkeleton := &model.Skeleton{}
	if err := deepcopy.Copy(updatedSkeleton, *skeleton); err != nil {
		return nil, nil, fmt.Errorf("スケルトンの複製に失敗しました: %w", err)
	}
	topology, inserted, err := SynthesizeRoot(skeleton.Topology)
	if err != nil {
		return nil, nil, err
	}

	updatedMeshes := make([]*model.SkinnedMesh, 0, len(meshes))
	for _, mesh := range meshes {
		if mesh == nil {
			continue
		}
		updated, warnings, err := ApplyRootToMesh(mesh)
		unit.addWarnings(warnings...)
		if err != nil {
			return nil, nil, fmt.Errorf("root ボーンの追加に失敗しました: mesh=%s: %w", mesh.Name, err)
		}
		topology, err = mergeJointsByName(topology, updated.Topology)
		if err != nil {
			return nil, nil, fmt.Errorf("メッシュのボーンをスケルトンへ統合できません: mesh=%s: %w", mesh.Name, err)
		}
		updatedMeshes = append(updatedMeshes, updated)
	}
	updatedSkeleton.Topology = topology
	if inserted {
		logRetargetInfo("root ボーンを追加しました: skeleton=%s meshes=%d", skeleton.Name, len(updatedMeshes))
	}
	return updatedSkeleton, updatedMeshes, nil
}

// createRig は優先角度を解決したリグ定義からIKリグを生成する。
func (uc *RetargetUsecase) createRig(
	skeleton *model.Skeleton,
	previewMesh *model.SkinnedMesh,
	definition ikrig.RigDefinition,
	unit *retargetUnit,
) (*ikrig.Rig, error) {
	resolved, warnings := resolvePreferredAngles(definition, skeleton.Topology)
	unit.addWarnings(warnings...)
	rig, warnings, err := uc.rigBuilder.CreateRig(RigRef(skeleton), skeleton, previewMesh, resolved)
	unit.addWarnings(warnings...)
	if err != nil {
		return nil, fmt.Errorf("IKリグの生成に失敗しました: skeleton=%s: %w", skeleton.Name, err)
	}
	return rig, nil
}

// renderPreviews は反映済みメッシュのベースポーズ画像を出力する。失敗は警告に留める。
func (uc *RetargetUsecase) renderPreviews(unit *retargetUnit) []string {
	if uc.previewRenderer == nil {
		return nil
	}
	paths := make([]string, 0, len(unit.changes.Meshes))
	for _, mesh := range unit.changes.Meshes {
		pose := mesh.RetargetBasePose
		if pose == nil {
			pose = mesh.Topology.RefPose()
		}
		path, err := uc.previewRenderer.RenderPose(mesh.Name, mesh.Topology, pose)
		if err != nil {
			unit.addWarnings(model.NewWarning(model.RetargetWarningPreviewFailed,
				"プレビューを出力できません: mesh=%s: %v", mesh.Name, err))
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// findMesh はIDでメッシュを探す。
func findMesh(meshes []*model.SkinnedMesh, id string) *model.SkinnedMesh {
	if id == "" {
		return nil
	}
	for _, mesh := range meshes {
		if mesh != nil && mesh.ID == id {
			return mesh
		}
	}
	return nil
}

// reportRetargetProgress は進捗通知先があれば通知する。
func reportRetargetProgress(reporter IRetargetProgressReporter, event RetargetProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportRetargetProgress(event)
}

// logRetargetInfo はリターゲットのINFOログを出力する。
func logRetargetInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

// logRetargetWarn はリターゲットのWARNログを出力する。
func logRetargetWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

// logRetargetError はリターゲットのERRORログを出力する。
func logRetargetError(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Error(format, params...)
}
