package common

import (
	"fmt"
	"math/rand"
	"slices"
	"strconv"
)

// RandDistinctPair draws two different integers uniformly from [a, b].
func RandDistinctPair(rng *rand.Rand, a, b int) (int, int, error) {
	if b <= a {
		return 0, 0, fmt.Errorf("range [%d, %d] has fewer than two integers", a, b)
	}
	n1 := a + rng.Intn(b-a+1)
	n2 := a + rng.Intn(b-a+1)
	for n1 == n2 {
		n2 = a + rng.Intn(b-a+1)
	}
	return n1, n2, nil
}

// IntFromBinStrLE reads s with its first character as bit 0.
func IntFromBinStrLE(s string) (uint64, error) {
	b := []byte(s)
	slices.Reverse(b)
	return IntFromBinStrBE(string(b))
}

// IntFromBinStrBE reads s with its last character as bit 0.
func IntFromBinStrBE(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty binary string")
	}
	return strconv.ParseUint(s, 2, 64)
}

// ContainsDuplicates reports whether some value appears twice in list.
func ContainsDuplicates[T comparable](list []T) bool {
	seen := make(map[T]struct{}, len(list))
	for _, v := range list {
		if _, ok := seen[v]; ok {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}
