// 指示: miu200521358
// Package migrations はアセットストアのSQLiteスキーマを埋め込む。
package migrations

import "embed"

// FS は埋め込み済みマイグレーション。
//
//go:embed *.sql
var FS embed.FS
