//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstringByIndices(t *testing.T) {
	tests := []struct {
		name    string
		s       string
		indices []int
		reverse bool
		want    string
		wantErr bool
	}{
		{name: "forward", s: "abcdef", indices: []int{0, 2, 3}, want: "acd"},
		{name: "reverse", s: "abcdef", indices: []int{0, 2, 3}, reverse: true, want: "fdc"},
		{name: "empty indices", s: "abc", indices: []int{}, want: ""},
		{name: "out of range", s: "ab", indices: []int{2}, wantErr: true},
		{name: "negative", s: "ab", indices: []int{-1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SubstringByIndices(tt.s, tt.indices, tt.reverse)
			if tt.wantErr {
				assert.True(t, IsValidationError(err))
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregateByIndices(t *testing.T) {
	two := Counts{"00": 5, "01": 6, "10": 7, "11": 8}
	five := Counts{"01100": 12, "01101": 13, "01110": 14, "01111": 15}
	tests := []struct {
		name    string
		counts  Counts
		indices []int
		reverse bool
		want    Counts
		wantErr bool
	}{
		{name: "bit 0", counts: two, indices: []int{0}, want: Counts{"0": 11, "1": 15}},
		{name: "bit 1", counts: two, indices: []int{1}, want: Counts{"0": 12, "1": 14}},
		{name: "bit 0 reversed", counts: two, indices: []int{0}, reverse: true, want: Counts{"0": 12, "1": 14}},
		{name: "no indices", counts: two, indices: nil, want: Counts{}},
		{name: "empty counts", counts: Counts{}, indices: []int{0, 1}, want: Counts{}},
		{name: "three of five", counts: five, indices: []int{0, 1, 4}, want: Counts{"010": 26, "011": 28}},
		{
			name: "three of five reversed", counts: five, indices: []int{0, 1, 4}, reverse: true,
			want: Counts{"000": 12, "100": 13, "010": 14, "110": 15},
		},
		{name: "out of range", counts: two, indices: []int{1, 2}, reverse: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.counts.AggregateByIndices(tt.indices, tt.reverse)
			if tt.wantErr {
				assert.True(t, IsValidationError(err))
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregationKeepsTotal(t *testing.T) {
	counts := Counts{"0000": 3, "0110": 4, "1011": 5, "1111": 6}
	partition := [][]int{{0, 2}, {1}, {3}}
	for _, reverse := range []bool{false, true} {
		for _, indices := range partition {
			got, err := counts.AggregateByIndices(indices, reverse)
			assert.Nil(t, err)
			assert.Equal(t, counts.Total(), got.Total(), "indices %v reverse %v", indices, reverse)
		}
	}
}

func TestFirstAndLastBits(t *testing.T) {
	three := Counts{"000": 5, "010": 6, "100": 7, "110": 8}
	four := Counts{"0001": 2, "1000": 3, "1100": 4}
	tests := []struct {
		name    string
		counts  Counts
		n       int
		reverse bool
		first   Counts
		last    Counts
		wantErr bool
	}{
		{name: "empty", counts: Counts{}, n: 3, first: Counts{}, last: Counts{}},
		{
			name: "two of three", counts: three, n: 2,
			first: Counts{"00": 5, "01": 6, "10": 7, "11": 8},
			last:  Counts{"00": 12, "10": 14},
		},
		{
			name: "two of three reversed", counts: three, n: 2, reverse: true,
			first: Counts{"00": 12, "01": 14},
			last:  Counts{"00": 5, "10": 6, "01": 7, "11": 8},
		},
		{name: "zero bits", counts: three, n: 0, first: Counts{}, last: Counts{}},
		{
			name: "three of four reversed", counts: four, n: 3, reverse: true,
			first: Counts{"100": 2, "000": 3, "001": 4},
			last:  Counts{"000": 2, "001": 3, "011": 4},
		},
		{name: "too many bits", counts: three, n: 4, reverse: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := tt.counts.FirstBits(tt.n, tt.reverse)
			if tt.wantErr {
				assert.NotNil(t, err)
				_, err = tt.counts.LastBits(tt.n, tt.reverse)
				assert.NotNil(t, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tt.first, first)
			last, err := tt.counts.LastBits(tt.n, tt.reverse)
			assert.Nil(t, err)
			assert.Equal(t, tt.last, last)
		})
	}
}

func TestOutcomeSet(t *testing.T) {
	c := Counts{"000": 5, "010": 6, "100": 7, "110": 8}
	assert.ElementsMatch(t, []string{"000", "010", "100", "110"}, c.OutcomeSet(false).ToSlice())
	assert.ElementsMatch(t, []string{"000", "010", "001", "011"}, c.OutcomeSet(true).ToSlice())
	assert.Equal(t, 0, Counts{}.OutcomeSet(true).Cardinality())
}

func TestCountsHelpers(t *testing.T) {
	c := Counts{"10": 3, "01": 1}
	assert.Equal(t, uint64(4), c.Total())
	assert.Equal(t, []string{"01", "10"}, c.Outcomes())
	assert.Equal(t, uint32(3), c.Get("10"))
	assert.Equal(t, uint32(0), c.Get("11"))
	assert.Equal(t, `{"01":1,"10":3}`, c.String())
	assert.Contains(t, c.Pretty(), "\n")

	clone := c.Clone()
	clone["11"] = 9
	assert.Equal(t, uint32(0), c.Get("11"))
	assert.Equal(t, "ba", ReverseString("ab"))
}

func TestStatus(t *testing.T) {
	for _, s := range []Status{READY, RUNNING, SUCCEEDED, FAILED, CANCELLED} {
		got, err := ToStatus(s.String())
		assert.Nil(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ToStatus("lost")
	assert.EqualError(t, err, "unknown status: lost")
	assert.Equal(t, "unknown", Status(99).String())
}
