// 指示: miu200521358
// Package sqlite はSQLiteファイルに保存するアセットストアを提供する。
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/miu200521358/mu_rig_retarget/pkg/adapter/io_asset/sqlite/migrations"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/ikrig"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/port/moutput"
	_ "modernc.org/sqlite"
)

// Store はアセットをJSONとしてSQLiteへ保存するストアを表す。
type Store struct {
	db *sql.DB
}

// Open はSQLiteファイルを開き、埋め込みマイグレーションを適用する。
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("アセットDBのパスが未指定です")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("アセットDBを開けません: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("アセットDBへ接続できません: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close はDBを閉じる。
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutSkeleton はスケルトンを登録または更新する。
func (s *Store) PutSkeleton(ctx context.Context, skeleton *model.Skeleton) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return upsertSkeleton(ctx, tx, skeleton)
	})
}

// PutMesh はメッシュを登録または更新する。
func (s *Store) PutMesh(ctx context.Context, mesh *model.SkinnedMesh) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return upsertMesh(ctx, tx, mesh)
	})
}

// LoadSkeleton はIDでスケルトンを読み込む。
func (s *Store) LoadSkeleton(ctx context.Context, id string) (*model.Skeleton, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM skeletons WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: skeleton=%s", moutput.ErrAssetNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("スケルトンの読み込みに失敗しました: id=%s: %w", id, err)
	}
	return decode[model.Skeleton](payload)
}

// ListSkeletons は登録順に全スケルトンを読み込む。
func (s *Store) ListSkeletons(ctx context.Context) ([]*model.Skeleton, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return queryPayloads[model.Skeleton](ctx, s.db, "SELECT payload FROM skeletons ORDER BY rowid")
}

// MeshesUsingSkeleton は登録順にスケルトンを参照するメッシュを読み込む。
func (s *Store) MeshesUsingSkeleton(ctx context.Context, skeletonID string) ([]*model.SkinnedMesh, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return queryPayloads[model.SkinnedMesh](ctx, s.db,
		"SELECT payload FROM skinned_meshes WHERE skeleton_id = ? ORDER BY rowid", skeletonID)
}

// AssetExists はアセット参照が保存済みか判定する。
func (s *Store) AssetExists(ctx context.Context, ref model.AssetRef) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	table, err := tableForKind(ref.Kind)
	if err != nil {
		return false, err
	}
	var found int
	err = s.db.QueryRowContext(ctx,
		"SELECT 1 FROM "+table+" WHERE package_path = ? AND name = ? LIMIT 1",
		ref.PackagePath, ref.Name,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("アセットの存在確認に失敗しました: %s: %w", ref.String(), err)
	}
	return true, nil
}

// Commit は変更集合を1トランザクションで反映する。
func (s *Store) Commit(ctx context.Context, changes moutput.ChangeSet) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, skeleton := range changes.Skeletons {
			if err := upsertSkeleton(ctx, tx, skeleton); err != nil {
				return err
			}
		}
		for _, mesh := range changes.Meshes {
			if err := upsertMesh(ctx, tx, mesh); err != nil {
				return err
			}
		}
		for _, rig := range changes.Rigs {
			if err := upsertNamed(ctx, tx, "ik_rigs", rig.Ref(), rig); err != nil {
				return err
			}
		}
		for _, retargeter := range changes.Retargeters {
			if err := upsertNamed(ctx, tx, "ik_retargeters", retargeter.Ref(), retargeter); err != nil {
				return err
			}
		}
		return nil
	})
}

// Rig はアセット参照でIKリグを読み込む。
func (s *Store) Rig(ctx context.Context, ref model.AssetRef) (*ikrig.Rig, error) {
	return loadNamed[ikrig.Rig](ctx, s, "ik_rigs", ref)
}

// Retargeter はアセット参照でリターゲッターを読み込む。
func (s *Store) Retargeter(ctx context.Context, ref model.AssetRef) (*ikrig.Retargeter, error) {
	return loadNamed[ikrig.Retargeter](ctx, s, "ik_retargeters", ref)
}

// Mesh はIDでメッシュを読み込む。
func (s *Store) Mesh(ctx context.Context, id string) (*model.SkinnedMesh, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM skinned_meshes WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: mesh=%s", moutput.ErrAssetNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("メッシュの読み込みに失敗しました: id=%s: %w", id, err)
	}
	return decode[model.SkinnedMesh](payload)
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("アセットDBが開かれていません")
	}
	return nil
}

// withTx は fn をトランザクション内で実行し、エラー時はロールバックする。
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションの確定に失敗しました: %w", err)
	}
	return nil
}

func upsertSkeleton(ctx context.Context, tx *sql.Tx, skeleton *model.Skeleton) error {
	if skeleton == nil || skeleton.ID == "" {
		return fmt.Errorf("スケルトンIDが未設定です")
	}
	payload, err := json.Marshal(skeleton)
	if err != nil {
		return fmt.Errorf("スケルトンの変換に失敗しました: %s: %w", skeleton.Name, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO skeletons (id, package_path, name, payload, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   package_path = excluded.package_path,
		   name = excluded.name,
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		skeleton.ID, skeleton.PackagePath, skeleton.Name, payload, nowMillis(),
	)
	if err != nil {
		return fmt.Errorf("スケルトンの保存に失敗しました: %s: %w", skeleton.Name, err)
	}
	return nil
}

func upsertMesh(ctx context.Context, tx *sql.Tx, mesh *model.SkinnedMesh) error {
	if mesh == nil || mesh.ID == "" {
		return fmt.Errorf("メッシュIDが未設定です")
	}
	payload, err := json.Marshal(mesh)
	if err != nil {
		return fmt.Errorf("メッシュの変換に失敗しました: %s: %w", mesh.Name, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO skinned_meshes (id, skeleton_id, package_path, name, payload, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   skeleton_id = excluded.skeleton_id,
		   package_path = excluded.package_path,
		   name = excluded.name,
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		mesh.ID, mesh.SkeletonID, mesh.PackagePath, mesh.Name, payload, nowMillis(),
	)
	if err != nil {
		return fmt.Errorf("メッシュの保存に失敗しました: %s: %w", mesh.Name, err)
	}
	return nil
}

func upsertNamed(ctx context.Context, tx *sql.Tx, table string, ref model.AssetRef, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("アセットの変換に失敗しました: %s: %w", ref.String(), err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO "+table+` (package_path, name, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(package_path, name) DO UPDATE SET
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		ref.PackagePath, ref.Name, payload, nowMillis(),
	)
	if err != nil {
		return fmt.Errorf("アセットの保存に失敗しました: %s: %w", ref.String(), err)
	}
	return nil
}

func loadNamed[T any](ctx context.Context, s *Store, table string, ref model.AssetRef) (*T, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM "+table+" WHERE package_path = ? AND name = ?",
		ref.PackagePath, ref.Name,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", moutput.ErrAssetNotFound, ref.String())
	}
	if err != nil {
		return nil, fmt.Errorf("アセットの読み込みに失敗しました: %s: %w", ref.String(), err)
	}
	return decode[T](payload)
}

func queryPayloads[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("アセット一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	values := make([]*T, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("アセット一覧の読み込みに失敗しました: %w", err)
		}
		value, err := decode[T](payload)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("アセット一覧の読み込みに失敗しました: %w", err)
	}
	return values, nil
}

func decode[T any](payload []byte) (*T, error) {
	value := new(T)
	if err := json.Unmarshal(payload, value); err != nil {
		return nil, fmt.Errorf("アセットの復元に失敗しました: %w", err)
	}
	return value, nil
}

// tableForKind はアセット種別の保存先テーブル名を返す。
func tableForKind(kind model.AssetKind) (string, error) {
	switch kind {
	case model.AssetKindSkeleton:
		return "skeletons", nil
	case model.AssetKindSkinnedMesh:
		return "skinned_meshes", nil
	case model.AssetKindIKRig:
		return "ik_rigs", nil
	case model.AssetKindRetargeter:
		return "ik_retargeters", nil
	default:
		return "", fmt.Errorf("未対応のアセット種別です: %s", kind)
	}
}

func nowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}
