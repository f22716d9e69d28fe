// 指示: miu200521358
// Package messages はCLI表示に使うメッセージキーと翻訳を提供する。
package messages

// メッセージキー一覧。キーは日本語表記そのもの。
const (
	HelpUsage = "使い方: mu_rig_retarget [-db パス] [-ref ID] [-yes] [-preview ディレクトリ] [-list] スケルトンID..."

	PromptReferenceTitle   = "参照スケルトンを選択してください"
	PromptReferenceItem    = "  %d: %s (%s)"
	PromptReferenceInput   = "番号を入力してください (空欄で中断): "
	PromptOverwriteTitle   = "以下のアセットを上書きします"
	PromptOverwriteItem    = "  %s"
	PromptOverwriteConfirm = "続行しますか? [y/N]: "

	MessageSkeletonIDsRequired   = "スケルトンIDを指定してください"
	MessageNoReferenceCandidates = "参照スケルトン候補がありません"
	MessageReferenceNotFound     = "参照スケルトンが候補にありません: %s"
	MessageInvalidSelection      = "番号が不正です: %s"
	MessageAborted               = "中断しました"
	MessageSummary               = "完了: 成功 %d 件 / スキップ %d 件 / 失敗 %d 件"
	MessageSkeletonWarning       = "警告: %s: %s"
	MessageSkeletonFailed        = "エラー: %s: %v"
	MessagePreviewWritten        = "プレビュー: %s"
	MessageSkeletonListItem      = "%s\t%s\tボーン数=%d\tMixamo=%t\tUEマネキン=%t"

	LogReferenceSelected = "参照スケルトン: %s"
	LogSkeletonStarted   = "スケルトン処理開始 (%d/%d): %s"
	LogRootAdded         = "root ボーン追加: %s (メッシュ %d 件)"
	LogRigsCreated       = "IKリグ生成: %s"
	LogBasePoseDone      = "ベースポーズのリターゲット完了: %s (メッシュ %d 件)"
	LogSkeletonCompleted = "スケルトン処理完了 (%d/%d): %s"
)
