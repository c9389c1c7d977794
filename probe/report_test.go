package probe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Describe_RejectsNilFactory(t *testing.T) {
	_, err := Describe[int64](nil)
	assert.ErrorIs(t, err, ErrNilFactory)
}

func Test_Describe_ValueTypeArrayLayout(t *testing.T) {
	s := testSizer(t)

	rep, err := DescribeWith(s, func() int64 { return 1 << 40 })
	require.NoError(t, err)

	assert.True(t, rep.IsValueType)
	assert.Equal(t, "int64", rep.TypeName)

	// A densely packed int64 occupies its 8 payload bytes, give or take
	// allocator rounding; the standalone element may carry padding.
	assert.GreaterOrEqual(t, rep.PackedBytes, int64(8))
	assert.LessOrEqual(t, rep.PackedBytes, int64(16))
	assert.GreaterOrEqual(t, rep.AlignedBytes, int64(8))
	assert.GreaterOrEqual(t, rep.DeepBytes, int64(8))
}

func Test_Describe_DeepSizeSeesReferencePayload(t *testing.T) {
	s := testSizer(t)

	type labeled struct {
		ID    int64
		Label string
	}
	seq := 0
	rep, err := DescribeWith(s, func() labeled {
		seq++
		return labeled{ID: int64(seq), Label: fmt.Sprintf("label-%08d", seq)}
	})
	require.NoError(t, err)

	assert.True(t, rep.IsValueType)
	// Default-initialized elements carry an empty string; individually
	// produced elements each allocate a unique label payload.
	assert.Greater(t, rep.DeepBytes, rep.PackedBytes)
}

func Test_Describe_ReferenceSlice(t *testing.T) {
	s := testSizer(t)

	const elems = 16
	rep, err := DescribeWith(s, func() []int64 { return make([]int64, elems) })
	require.NoError(t, err)

	assert.False(t, rep.IsValueType)
	assert.Equal(t, s.Baseline().ObjectOverhead, rep.OverheadBytes)
	assert.Equal(t, rep.ContentBytes, clampBytes(rep.TotalBytes-rep.OverheadBytes))
	require.True(t, rep.HasItemCount)
	assert.Equal(t, elems, rep.ItemCount)
	assert.GreaterOrEqual(t, rep.BytesPerItem, 7.0)
}

func Test_Describe_EmptyCollectionGuardsDivision(t *testing.T) {
	s := testSizer(t)

	rep, err := DescribeWith(s, func() map[int]int { return map[int]int{} })
	require.NoError(t, err)

	require.True(t, rep.HasItemCount)
	assert.Equal(t, 0, rep.ItemCount)
	assert.Equal(t, 0.0, rep.BytesPerItem)
}

type lenCarrier struct {
	n int
}

func (l *lenCarrier) Len() int { return l.n }

func Test_ItemCount(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		wantCount int
		wantOK    bool
	}{
		{"slice", make([]int, 3), 3, true},
		{"map", map[string]int{"a": 1}, 1, true},
		{"string", "abcd", 4, true},
		{"len_method", &lenCarrier{n: 9}, 9, true},
		{"plain_pointer", &struct{ X int }{}, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			count, ok := itemCount(tc.value)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantCount, count)
		})
	}
}

func Test_ByteSizeDescription_CarriesTypeName(t *testing.T) {
	desc, err := ByteSizeDescription(func() []int64 { return make([]int64, 4) })
	require.NoError(t, err)

	assert.Contains(t, desc, "[]int64")
	assert.Contains(t, desc, "reference type")
}
