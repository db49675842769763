package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPad(t *testing.T) {
	tests := []struct {
		name       string
		seq        []int
		maxLen     int
		padding    Side
		truncating Side
		want       []int
	}{
		{"pad post", []int{1, 2}, 4, Post, Pre, []int{1, 2, 0, 0}},
		{"pad pre", []int{1, 2}, 4, Pre, Pre, []int{0, 0, 1, 2}},
		{"truncate pre keeps tail", []int{1, 2, 3, 4, 5}, 3, Post, Pre, []int{3, 4, 5}},
		{"truncate post keeps head", []int{1, 2, 3, 4, 5}, 3, Pre, Post, []int{1, 2, 3}},
		{"exact length", []int{7, 8}, 2, Pre, Pre, []int{7, 8}},
		{"empty", nil, 3, Pre, Pre, []int{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pad(tt.seq, tt.maxLen, tt.padding, tt.truncating)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPad_InvalidArguments(t *testing.T) {
	_, err := Pad([]int{1}, 0, Pre, Pre)
	assert.Error(t, err)

	_, err = Pad([]int{1}, 2, "middle", Pre)
	assert.Error(t, err)

	_, err = Pad([]int{1}, 2, Pre, "middle")
	assert.Error(t, err)
}
