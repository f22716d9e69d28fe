// 指示: miu200521358
package model

import (
	"errors"
	"fmt"

	"github.com/miu200521358/mu_rig_retarget/pkg/domain/mmath"
)

// RootJointName は合成ルートボーン名。
const RootJointName = "root"

// ErrInvalidTopology はボーン階層の不変条件違反を表す。
var ErrInvalidTopology = errors.New("ボーン階層が不正です")

// Joint はボーン階層内の1ボーンを表す。
type Joint struct {
	Name           string
	ParentIndex    int
	LocalTransform mmath.Transform
}

// Topology は親が常に子より前に並ぶボーン階層を表す。
type Topology struct {
	Joints []Joint
}

// Pose はボーンごとのローカル変換を表す。
type Pose []mmath.Transform

// Clone はポーズの複製を返す。
func (p Pose) Clone() Pose {
	if p == nil {
		return nil
	}
	return append(Pose(nil), p...)
}

// NewTopology は不変条件を検証してボーン階層を生成する。
func NewTopology(joints []Joint) (*Topology, error) {
	topology := &Topology{Joints: append([]Joint(nil), joints...)}
	if err := topology.Validate(); err != nil {
		return nil, err
	}
	return topology, nil
}

// Validate はボーン名の一意性と親index < 自indexを検証する。
func (t *Topology) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: 階層がnilです", ErrInvalidTopology)
	}
	seen := make(map[string]struct{}, len(t.Joints))
	for i, joint := range t.Joints {
		if joint.Name == "" {
			return fmt.Errorf("%w: index=%d のボーン名が空です", ErrInvalidTopology, i)
		}
		if _, exists := seen[joint.Name]; exists {
			return fmt.Errorf("%w: ボーン名が重複しています: %s", ErrInvalidTopology, joint.Name)
		}
		seen[joint.Name] = struct{}{}
		if joint.ParentIndex < -1 || joint.ParentIndex >= i {
			return fmt.Errorf("%w: %s の親indexが不正です: parent=%d index=%d", ErrInvalidTopology, joint.Name, joint.ParentIndex, i)
		}
	}
	return nil
}

// Len はボーン数を返す。
func (t *Topology) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Joints)
}

// IndexOf はボーン名のindexを返す。存在しない場合は -1。
func (t *Topology) IndexOf(name string) int {
	if t == nil {
		return -1
	}
	for i := range t.Joints {
		if t.Joints[i].Name == name {
			return i
		}
	}
	return -1
}

// Contains はボーン名が存在するか判定する。
func (t *Topology) Contains(name string) bool {
	return t.IndexOf(name) >= 0
}

// Names はindex順のボーン名一覧を返す。
func (t *Topology) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.Joints))
	for i := range t.Joints {
		names[i] = t.Joints[i].Name
	}
	return names
}

// ParentIndex は親indexを返す。範囲外は -1。
func (t *Topology) ParentIndex(index int) int {
	if t == nil || index < 0 || index >= len(t.Joints) {
		return -1
	}
	return t.Joints[index].ParentIndex
}

// Children は直下の子index一覧を返す。
func (t *Topology) Children(index int) []int {
	if t == nil {
		return nil
	}
	children := make([]int, 0)
	for i := index + 1; i < len(t.Joints); i++ {
		if t.Joints[i].ParentIndex == index {
			children = append(children, i)
		}
	}
	return children
}

// ChildCount は直下の子数を返す。
func (t *Topology) ChildCount(index int) int {
	return len(t.Children(index))
}

// IsAncestorOrSelf は ancestor が index 自身または祖先か判定する。
func (t *Topology) IsAncestorOrSelf(ancestor, index int) bool {
	if t == nil || ancestor < 0 {
		return false
	}
	for current := index; current >= 0; current = t.ParentIndex(current) {
		if current == ancestor {
			return true
		}
	}
	return false
}

// RefPose は参照ポーズ (各ボーンのローカル変換) を返す。
func (t *Topology) RefPose() Pose {
	if t == nil {
		return nil
	}
	pose := make(Pose, len(t.Joints))
	for i := range t.Joints {
		pose[i] = t.Joints[i].LocalTransform
	}
	return pose
}

// Clone は階層の複製を返す。
func (t *Topology) Clone() *Topology {
	if t == nil {
		return nil
	}
	return &Topology{Joints: append([]Joint(nil), t.Joints...)}
}
