// 指示: miu200521358
// Package namemap は2つの名前空間を対応付ける固定表を提供する。
package namemap

import (
	"errors"
	"fmt"
)

// ErrInvalidTable は対応表の構築失敗を表す。
var ErrInvalidTable = errors.New("名前対応表が不正です")

// Pair は元名と先名の組を表す。
type Pair struct {
	Source      string
	Destination string
}

// table は順方向と逆方向の索引を持つ不変の対応表。
type table struct {
	pairs         []Pair
	sourceToIndex map[string]int
	destToIndex   map[string]int
}

// NamesMapper は固定対応表の一方向ビューを表す。ゼロ値は空の対応表として振る舞う。
type NamesMapper struct {
	table    *table
	inverted bool
}

// NewNamesMapper は (元名, 先名) の組から対応表を生成する。両名前空間で一意でなければならない。
func NewNamesMapper(pairs []Pair) (NamesMapper, error) {
	t := &table{
		pairs:         append([]Pair(nil), pairs...),
		sourceToIndex: make(map[string]int, len(pairs)),
		destToIndex:   make(map[string]int, len(pairs)),
	}
	for i, pair := range pairs {
		if pair.Source == "" || pair.Destination == "" {
			return NamesMapper{}, fmt.Errorf("%w: index=%d に空の名前があります", ErrInvalidTable, i)
		}
		if _, exists := t.sourceToIndex[pair.Source]; exists {
			return NamesMapper{}, fmt.Errorf("%w: 元名が重複しています: %s", ErrInvalidTable, pair.Source)
		}
		if _, exists := t.destToIndex[pair.Destination]; exists {
			return NamesMapper{}, fmt.Errorf("%w: 先名が重複しています: %s", ErrInvalidTable, pair.Destination)
		}
		t.sourceToIndex[pair.Source] = i
		t.destToIndex[pair.Destination] = i
	}
	return NamesMapper{table: t}, nil
}

// NewNamesMapperFromFlat は [元, 先, 元, 先, ...] 形式の一覧から対応表を生成する。
func NewNamesMapperFromFlat(names []string) (NamesMapper, error) {
	if len(names)%2 != 0 {
		return NamesMapper{}, fmt.Errorf("%w: 要素数が奇数です: %d", ErrInvalidTable, len(names))
	}
	pairs := make([]Pair, 0, len(names)/2)
	for i := 0; i < len(names); i += 2 {
		pairs = append(pairs, Pair{Source: names[i], Destination: names[i+1]})
	}
	return NewNamesMapper(pairs)
}

// MustNamesMapperFromFlat は静的表向けに失敗時 panic する NewNamesMapperFromFlat。
func MustNamesMapperFromFlat(names []string) NamesMapper {
	mapper, err := NewNamesMapperFromFlat(names)
	if err != nil {
		panic(err)
	}
	return mapper
}

// Len は組数を返す。
func (m NamesMapper) Len() int {
	if m.table == nil {
		return 0
	}
	return len(m.table.pairs)
}

// MapName は名前を対応先へ変換する。未対応の場合は ("", false)。
func (m NamesMapper) MapName(name string) (string, bool) {
	if m.table == nil {
		return "", false
	}
	index, ok := m.lookup()[name]
	if !ok {
		return "", false
	}
	pair := m.table.pairs[index]
	if m.inverted {
		return pair.Source, true
	}
	return pair.Destination, true
}

// MapNames は順序を保って変換し、未対応の名前は除外する。
func (m NamesMapper) MapNames(names []string) []string {
	mapped := make([]string, 0, len(names))
	for _, name := range names {
		if value, ok := m.MapName(name); ok {
			mapped = append(mapped, value)
		}
	}
	return mapped
}

// Inverse は同じ表を共有する逆方向ビューを返す。
func (m NamesMapper) Inverse() NamesMapper {
	return NamesMapper{table: m.table, inverted: !m.inverted}
}

// Sources は変換元側の名前を表順で返す。
func (m NamesMapper) Sources() []string {
	return m.column(false)
}

// Destinations は変換先側の名前を表順で返す。
func (m NamesMapper) Destinations() []string {
	return m.column(true)
}

// lookup は現在の向きの変換元索引を返す。
func (m NamesMapper) lookup() map[string]int {
	if m.inverted {
		return m.table.destToIndex
	}
	return m.table.sourceToIndex
}

// column は表の片側の列を返す。
func (m NamesMapper) column(destination bool) []string {
	if m.table == nil {
		return nil
	}
	useDestination := destination != m.inverted
	names := make([]string, len(m.table.pairs))
	for i, pair := range m.table.pairs {
		if useDestination {
			names[i] = pair.Destination
		} else {
			names[i] = pair.Source
		}
	}
	return names
}
