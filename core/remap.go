package core

import "github.com/oqtopus-team/oqtopus-engine/progcheck/common"

type remapKind int

const (
	remapNone remapKind = iota
	remapOffset
	remapList
)

// Remap describes how operand indices of a source program are translated when it is
// composed into another program: unchanged, shifted by an offset, or looked up in a list.
type Remap struct {
	kind   remapKind
	offset int
	list   []int
}

var NoRemap = Remap{kind: remapNone}

func OffsetRemap(offset int) Remap {
	return Remap{kind: remapOffset, offset: offset}
}

// ListRemap sends index i to list[i]. The list must be injective.
func ListRemap(list []int) Remap {
	return Remap{kind: remapList, list: append([]int(nil), list...)}
}

// RangeRemap is ListRemap over [start, start+n).
func RangeRemap(start, n int) Remap {
	l := make([]int, n)
	for i := range l {
		l[i] = start + i
	}
	return Remap{kind: remapList, list: l}
}

func (r Remap) IsNone() bool {
	return r.kind == remapNone
}

func (r Remap) Apply(index int) (int, error) {
	switch r.kind {
	case remapOffset:
		if index+r.offset < 0 {
			return 0, NewValidationError("remapped index %d is negative (offset %d)", index+r.offset, r.offset)
		}
		return index + r.offset, nil
	case remapList:
		if index < 0 || index >= len(r.list) {
			return 0, NewValidationError("index %d is out of remap list of length %d", index, len(r.list))
		}
		if r.list[index] < 0 {
			return 0, NewValidationError("remap list maps %d to negative index %d", index, r.list[index])
		}
		return r.list[index], nil
	default:
		return index, nil
	}
}

func (r Remap) check() error {
	if r.kind != remapList {
		return nil
	}
	if common.ContainsDuplicates(r.list) {
		return NewValidationError("remap list %v is not injective", r.list)
	}
	return nil
}
