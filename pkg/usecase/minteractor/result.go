// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/ikrig"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/port/moutput"
)

// RetargetProgressEventType はリターゲット処理の進捗イベント種別を表す。
type RetargetProgressEventType string

const (
	// RetargetProgressEventTypeReferenceSelected は参照スケルトン確定イベントを表す。
	RetargetProgressEventTypeReferenceSelected RetargetProgressEventType = "reference_selected"
	// RetargetProgressEventTypeOverwriteConfirmed は上書き確認完了イベントを表す。
	RetargetProgressEventTypeOverwriteConfirmed RetargetProgressEventType = "overwrite_confirmed"
	// RetargetProgressEventTypeSkeletonStarted はスケルトン1体の処理開始イベントを表す。
	RetargetProgressEventTypeSkeletonStarted RetargetProgressEventType = "skeleton_started"
	// RetargetProgressEventTypeRootAdded は root ボーン追加完了イベントを表す。
	RetargetProgressEventTypeRootAdded RetargetProgressEventType = "root_added"
	// RetargetProgressEventTypeRigsCreated はIKリグ生成完了イベントを表す。
	RetargetProgressEventTypeRigsCreated RetargetProgressEventType = "rigs_created"
	// RetargetProgressEventTypeBasePoseRetargeted はベースポーズのリターゲット完了イベントを表す。
	RetargetProgressEventTypeBasePoseRetargeted RetargetProgressEventType = "base_pose_retargeted"
	// RetargetProgressEventTypeSkeletonCompleted はスケルトン1体の処理完了イベントを表す。
	RetargetProgressEventTypeSkeletonCompleted RetargetProgressEventType = "skeleton_completed"
)

// RetargetProgressEvent はリターゲット処理の進捗イベントを表す。
type RetargetProgressEvent struct {
	Type          RetargetProgressEventType
	SkeletonName  string
	SkeletonIndex int
	SkeletonCount int
	MeshCount     int
}

// IRetargetProgressReporter はリターゲット処理の進捗通知契約を表す。
type IRetargetProgressReporter interface {
	// ReportRetargetProgress はリターゲット処理進捗を通知する。
	ReportRetargetProgress(event RetargetProgressEvent)
}

// RetargetRequest はリターゲット要求を表す。
type RetargetRequest struct {
	SkeletonIDs      []string
	ProgressReporter IRetargetProgressReporter
	// PreviewEnabled が true の場合、ベースポーズのプレビュー画像を出力する。
	PreviewEnabled bool
}

// SkeletonRetargetStatus はスケルトン1体の処理結果種別を表す。
type SkeletonRetargetStatus string

const (
	// SkeletonRetargetSucceeded は反映完了を表す。
	SkeletonRetargetSucceeded SkeletonRetargetStatus = "succeeded"
	// SkeletonRetargetSkipped は前提不足で未処理を表す。
	SkeletonRetargetSkipped SkeletonRetargetStatus = "skipped"
	// SkeletonRetargetFailed は処理中の失敗を表す。何も反映しない。
	SkeletonRetargetFailed SkeletonRetargetStatus = "failed"
)

// SkeletonRetargetResult はスケルトン1体分のリターゲット結果を表す。
type SkeletonRetargetResult struct {
	SkeletonID   string
	SkeletonName string
	Status       SkeletonRetargetStatus
	Err          error
	Warnings     []model.Warning
	Rigs         []*ikrig.Rig
	Retargeters  []*ikrig.Retargeter
	PreviewPaths []string
}

// RetargetBatchResult は一括リターゲットの結果を表す。
type RetargetBatchResult struct {
	// Aborted は参照未選択または上書き拒否で何も処理しなかったことを表す。
	Aborted   bool
	Reference *model.Skeleton
	Overwrite []model.AssetRef
	Skeletons []SkeletonRetargetResult
}

// Count は指定状態の件数を返す。
func (r *RetargetBatchResult) Count(status SkeletonRetargetStatus) int {
	if r == nil {
		return 0
	}
	count := 0
	for _, result := range r.Skeletons {
		if result.Status == status {
			count++
		}
	}
	return count
}

// retargetUnit はスケルトン1体分の計算途中の成果物を表す。
type retargetUnit struct {
	changes  moutput.ChangeSet
	warnings []model.Warning
	previews []string
}

// addWarnings は警告を記録しWARNログへ出力する。
func (u *retargetUnit) addWarnings(warnings ...model.Warning) {
	for _, warning := range warnings {
		logRetargetWarn("%s", warning.String())
	}
	u.warnings = append(u.warnings, warnings...)
}
