package core

import (
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

type Status int

// Counts maps measured bit strings to the number of shots that produced them.
// The character order of a key follows the backend that produced it.
type Counts map[string]uint32

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

func (c Counts) String() string {
	st, err := jsonIter.Marshal(c)
	if err != nil {
		zap.L().Error("Failed to marshal core.Counts")
		return ""
	}
	return string(st)
}

func (c Counts) Pretty() string {
	st, err := jsonIter.Marshal(c)
	if err != nil {
		zap.L().Error("Failed to marshal core.Counts")
		return ""
	}
	return string(pretty.Pretty(st))
}

func (c Counts) Get(outcome string) uint32 {
	return c[outcome]
}

func (c Counts) Total() uint64 {
	var n uint64
	for _, v := range c {
		n += uint64(v)
	}
	return n
}

// Outcomes returns the observed bit strings in lexical order.
func (c Counts) Outcomes() []string {
	keys := maps.Keys(c)
	slices.Sort(keys)
	return keys
}

func (c Counts) Clone() Counts {
	clone := make(Counts, len(c))
	for k, v := range c {
		clone[k] = v
	}
	return clone
}

// SubstringByIndices picks the characters of s at indices, in index order. With
// reverse set, s is reversed first so that index 0 is its last character.
func SubstringByIndices(s string, indices []int, reverse bool) (string, error) {
	if reverse {
		s = ReverseString(s)
	}
	b := make([]byte, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(s) {
			return "", NewValidationError("index %d is out of range for outcome %q", i, s)
		}
		b = append(b, s[i])
	}
	return string(b), nil
}

// AggregateByIndices projects every outcome onto indices and sums the counts of
// outcomes that project to the same substring. An empty index list gives an empty result.
func (c Counts) AggregateByIndices(indices []int, reverse bool) (Counts, error) {
	out := make(Counts)
	if len(indices) == 0 {
		return out, nil
	}
	for k, v := range c {
		sub, err := SubstringByIndices(k, indices, reverse)
		if err != nil {
			return nil, err
		}
		out[sub] += v
	}
	return out, nil
}

// FirstBits aggregates on bits 0..n-1, written in that order.
func (c Counts) FirstBits(n int, reverse bool) (Counts, error) {
	return c.AggregateByIndices(indexRange(n), reverse)
}

// LastBits aggregates on the last n bits, written in increasing bit order like
// FirstBits. With reverse set, bit k is the k-th character from the end.
func (c Counts) LastBits(n int, reverse bool) (Counts, error) {
	idx := indexRange(n)
	slices.Reverse(idx)
	return c.AggregateByIndices(idx, !reverse)
}

// OutcomeSet returns the distinct observed outcomes, each reversed when reverse is set.
func (c Counts) OutcomeSet(reverse bool) mapset.Set[string] {
	s := mapset.NewThreadUnsafeSetWithSize[string](len(c))
	for k := range c {
		if reverse {
			k = ReverseString(k)
		}
		s.Add(k)
	}
	return s
}

func ReverseString(s string) string {
	b := []byte(s)
	slices.Reverse(b)
	return string(b)
}

const (
	READY     Status = iota // Created and waiting for a worker.
	RUNNING                 // Being checked.
	SUCCEEDED               // Checked. The verdict holds the answer.
	FAILED                  // Could not be checked, for instance because of invalid input.
	CANCELLED               // Dropped before running.
)

func (s Status) String() string {
	switch s {
	case READY:
		return "ready"
	case RUNNING:
		return "running"
	case SUCCEEDED:
		return "succeeded"
	case FAILED:
		return "failed"
	case CANCELLED:
		return "cancelled"
	default:
		return "unknown"
	}
}

func ToStatus(s string) (Status, error) {
	switch s {
	case "ready":
		return READY, nil
	case "running":
		return RUNNING, nil
	case "succeeded":
		return SUCCEEDED, nil
	case "failed":
		return FAILED, nil
	case "cancelled":
		return CANCELLED, nil
	default:
		return 0, fmt.Errorf("unknown status: %s", s)
	}
}
