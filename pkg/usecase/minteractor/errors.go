// 指示: miu200521358
package minteractor

import "errors"

var (
	// ErrPreconditionViolated は入力が処理の前提を満たさないことを表す。
	ErrPreconditionViolated = errors.New("処理の前提条件を満たしていません")
	// ErrRootAtWrongPosition は root ボーンが index 0 以外にあることを表す。
	ErrRootAtWrongPosition = errors.New("root ボーンが先頭にありません")
	// ErrSelfRetarget は参照スケルトン自身へのリターゲットを表す。
	ErrSelfRetarget = errors.New("参照スケルトン自身へはリターゲットできません")
	// ErrDegenerateBasis は優先角度の基底が退化していることを表す。
	ErrDegenerateBasis = errors.New("ボーン方向と右方向が平行です")
)
