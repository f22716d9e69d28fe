// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_rig_retarget/pkg/domain/rigconfig"
)

// SkeletonMatcher は期待ボーン名の一致率でボーン階層を判定する。
type SkeletonMatcher struct {
	expectedNames []string
	minFraction   float64
}

// NewSkeletonMatcher は判定器を生成する。
func NewSkeletonMatcher(expectedNames []string, minFraction float64) SkeletonMatcher {
	return SkeletonMatcher{
		expectedNames: append([]string(nil), expectedNames...),
		minFraction:   minFraction,
	}
}

// IsMatching は期待ボーン名の一致数 / 期待数 が閾値以上か判定する。期待名が空なら false。
func (m SkeletonMatcher) IsMatching(topology *model.Topology) bool {
	if len(m.expectedNames) == 0 || topology == nil {
		return false
	}
	present := make(map[string]struct{}, topology.Len())
	for _, name := range topology.Names() {
		present[name] = struct{}{}
	}
	count := 0
	for _, name := range m.expectedNames {
		if _, ok := present[name]; ok {
			count++
		}
	}
	return float64(count)/float64(len(m.expectedNames)) >= m.minFraction
}

// IsMatching は期待ボーン名の一致率判定を行う。
func IsMatching(topology *model.Topology, expectedNames []string, minFraction float64) bool {
	return NewSkeletonMatcher(expectedNames, minFraction).IsMatching(topology)
}

// SkeletonClassifier はMixamo系統とUEマネキン系統を判定する。
type SkeletonClassifier struct {
	source       SkeletonMatcher
	reference    SkeletonMatcher
	ue5Exclusion SkeletonMatcher
}

// NewSkeletonClassifier は設定一式から判定器を生成する。
func NewSkeletonClassifier(profile *rigconfig.Profile) SkeletonClassifier {
	if profile == nil {
		return SkeletonClassifier{}
	}
	return SkeletonClassifier{
		source:       NewSkeletonMatcher(profile.SourceClassificationBones(), rigconfig.ClassificationMinFraction),
		reference:    NewSkeletonMatcher(profile.ReferenceClassificationBones(), rigconfig.ClassificationMinFraction),
		ue5Exclusion: NewSkeletonMatcher(profile.UE5AdditionalBones, rigconfig.UE5ExclusionMinFraction),
	}
}

// IsSourceSkeleton はMixamo系統か判定する。
func (c SkeletonClassifier) IsSourceSkeleton(topology *model.Topology) bool {
	return c.source.IsMatching(topology)
}

// IsReferenceSkeleton はUE4マネキン系統か判定する。UE5マネキンは除外する。
func (c SkeletonClassifier) IsReferenceSkeleton(topology *model.Topology) bool {
	if !c.reference.IsMatching(topology) {
		return false
	}
	return !c.ue5Exclusion.IsMatching(topology)
}

// ReferenceCandidates はUE4マネキン系統のスケルトンだけを返す。
func (c SkeletonClassifier) ReferenceCandidates(skeletons []*model.Skeleton) []*model.Skeleton {
	candidates := make([]*model.Skeleton, 0, len(skeletons))
	for _, skeleton := range skeletons {
		if skeleton == nil {
			continue
		}
		if c.IsReferenceSkeleton(skeleton.Topology) {
			candidates = append(candidates, skeleton)
		}
	}
	return candidates
}
