// 指示: miu200521358
package model

import "fmt"

const (
	// RetargetWarningSelfRetarget は自身へのリターゲット指定警告。
	RetargetWarningSelfRetarget = "RetargetWarningSelfRetarget"
	// RetargetWarningRootAtWrongPosition は index 0 以外にある root ボーン警告。
	RetargetWarningRootAtWrongPosition = "RetargetWarningRootAtWrongPosition"
	// RetargetWarningMorphTargetsUnsupported はモーフターゲットのボーン再割当未対応警告。
	RetargetWarningMorphTargetsUnsupported = "RetargetWarningMorphTargetsUnsupported"
	// RetargetWarningAlternateInfluencesUnsupported は代替影響のボーン再割当未対応警告。
	RetargetWarningAlternateInfluencesUnsupported = "RetargetWarningAlternateInfluencesUnsupported"
	// RetargetWarningNotSourceFamily は元リグ系統と判定できないスケルトン警告。
	RetargetWarningNotSourceFamily = "RetargetWarningNotSourceFamily"
	// RetargetWarningNoMeshes はスケルトンを使うメッシュが無い警告。
	RetargetWarningNoMeshes = "RetargetWarningNoMeshes"
	// RetargetWarningChainSkipped はボーン不足でチェーンを作れなかった警告。
	RetargetWarningChainSkipped = "RetargetWarningChainSkipped"
	// RetargetWarningPreferredAngleSkipped は優先角度を解決できなかった警告。
	RetargetWarningPreferredAngleSkipped = "RetargetWarningPreferredAngleSkipped"
	// RetargetWarningPreviewFailed はポーズプレビュー出力失敗警告。
	RetargetWarningPreviewFailed = "RetargetWarningPreviewFailed"
)

// Warning は処理を止めない警告を表す。
type Warning struct {
	ID      string
	Message string
}

// NewWarning は書式付きの警告を生成する。
func NewWarning(id string, format string, params ...any) Warning {
	return Warning{ID: id, Message: fmt.Sprintf(format, params...)}
}

// String は "ID: メッセージ" 形式の表記を返す。
func (w Warning) String() string {
	return w.ID + ": " + w.Message
}
