// 指示: miu200521358
// Package memory はプロセス内に保持するアセットストアを提供する。
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/miu200521358/mu_rig_retarget/pkg/domain/ikrig"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_rig_retarget/pkg/usecase/port/moutput"
	"github.com/tiendc/go-deepcopy"
)

// Store はアセットを複製で出し入れするメモリ上のストアを表す。
type Store struct {
	mu            sync.RWMutex
	skeletons     map[string]*model.Skeleton
	skeletonOrder []string
	meshes        map[string]*model.SkinnedMesh
	meshOrder     []string
	rigs          map[string]*ikrig.Rig
	retargeters   map[string]*ikrig.Retargeter
}

// NewStore は空のストアを生成する。
func NewStore() *Store {
	return &Store{
		skeletons:   map[string]*model.Skeleton{},
		meshes:      map[string]*model.SkinnedMesh{},
		rigs:        map[string]*ikrig.Rig{},
		retargeters: map[string]*ikrig.Retargeter{},
	}
}

// PutSkeleton はスケルトンの複製を登録する。
func (s *Store) PutSkeleton(skeleton *model.Skeleton) error {
	stored, err := clone(skeleton)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putSkeletonLocked(stored)
	return nil
}

// PutMesh はメッシュの複製を登録する。
func (s *Store) PutMesh(mesh *model.SkinnedMesh) error {
	stored, err := clone(mesh)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putMeshLocked(stored)
	return nil
}

// LoadSkeleton はIDでスケルトンの複製を返す。
func (s *Store) LoadSkeleton(ctx context.Context, id string) (*model.Skeleton, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	skeleton, ok := s.skeletons[id]
	if !ok {
		return nil, fmt.Errorf("%w: skeleton=%s", moutput.ErrAssetNotFound, id)
	}
	return clone(skeleton)
}

// ListSkeletons は登録順に全スケルトンの複製を返す。
func (s *Store) ListSkeletons(ctx context.Context) ([]*model.Skeleton, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	skeletons := make([]*model.Skeleton, 0, len(s.skeletonOrder))
	for _, id := range s.skeletonOrder {
		skeleton, err := clone(s.skeletons[id])
		if err != nil {
			return nil, err
		}
		skeletons = append(skeletons, skeleton)
	}
	return skeletons, nil
}

// MeshesUsingSkeleton は登録順にスケルトンを参照するメッシュの複製を返す。
func (s *Store) MeshesUsingSkeleton(ctx context.Context, skeletonID string) ([]*model.SkinnedMesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	meshes := make([]*model.SkinnedMesh, 0)
	for _, id := range s.meshOrder {
		mesh := s.meshes[id]
		if mesh.SkeletonID != skeletonID {
			continue
		}
		copied, err := clone(mesh)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, copied)
	}
	return meshes, nil
}

// AssetExists はアセット参照が登録済みか判定する。
func (s *Store) AssetExists(ctx context.Context, ref model.AssetRef) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch ref.Kind {
	case model.AssetKindIKRig:
		_, ok := s.rigs[ref.String()]
		return ok, nil
	case model.AssetKindRetargeter:
		_, ok := s.retargeters[ref.String()]
		return ok, nil
	case model.AssetKindSkeleton:
		for _, skeleton := range s.skeletons {
			if skeleton.Ref() == ref {
				return true, nil
			}
		}
	case model.AssetKindSkinnedMesh:
		for _, mesh := range s.meshes {
			if mesh.Ref() == ref {
				return true, nil
			}
		}
	}
	return false, nil
}

// Commit は変更集合の複製を作ってから一括で反映する。複製に失敗した場合は何も反映しない。
func (s *Store) Commit(ctx context.Context, changes moutput.ChangeSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	staged := moutput.ChangeSet{}
	if err := deepcopy.Copy(&staged, changes); err != nil {
		return fmt.Errorf("変更集合の複製に失敗しました: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, skeleton := range staged.Skeletons {
		s.putSkeletonLocked(skeleton)
	}
	for _, mesh := range staged.Meshes {
		s.putMeshLocked(mesh)
	}
	for _, rig := range staged.Rigs {
		s.rigs[rig.Ref().String()] = rig
	}
	for _, retargeter := range staged.Retargeters {
		s.retargeters[retargeter.Ref().String()] = retargeter
	}
	return nil
}

// Mesh はIDでメッシュの複製を返す。
func (s *Store) Mesh(id string) (*model.SkinnedMesh, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mesh, ok := s.meshes[id]
	if !ok {
		return nil, false
	}
	copied, err := clone(mesh)
	if err != nil {
		return nil, false
	}
	return copied, true
}

// Rig はアセット参照でIKリグの複製を返す。
func (s *Store) Rig(ref model.AssetRef) (*ikrig.Rig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rig, ok := s.rigs[ref.String()]
	if !ok {
		return nil, false
	}
	copied, err := clone(rig)
	if err != nil {
		return nil, false
	}
	return copied, true
}

// Retargeter はアセット参照でリターゲッターの複製を返す。
func (s *Store) Retargeter(ref model.AssetRef) (*ikrig.Retargeter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	retargeter, ok := s.retargeters[ref.String()]
	if !ok {
		return nil, false
	}
	copied, err := clone(retargeter)
	if err != nil {
		return nil, false
	}
	return copied, true
}

func (s *Store) putSkeletonLocked(skeleton *model.Skeleton) {
	if _, exists := s.skeletons[skeleton.ID]; !exists {
		s.skeletonOrder = append(s.skeletonOrder, skeleton.ID)
	}
	s.skeletons[skeleton.ID] = skeleton
}

func (s *Store) putMeshLocked(mesh *model.SkinnedMesh) {
	if _, exists := s.meshes[mesh.ID]; !exists {
		s.meshOrder = append(s.meshOrder, mesh.ID)
	}
	s.meshes[mesh.ID] = mesh
}

// clone は値の深い複製を返す。
func clone[T any](src *T) (*T, error) {
	if src == nil {
		return nil, fmt.Errorf("複製元がnilです")
	}
	dst := new(T)
	if err := deepcopy.Copy(dst, *src); err != nil {
		return nil, fmt.Errorf("アセットの複製に失敗しました: %w", err)
	}
	return dst, nil
}
