package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShufflePreservesElements(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	shuffled := append([]int(nil), in...)

	require.NoError(t, Shuffle(shuffled))

	assert.ElementsMatch(t, in, shuffled)
}

func TestShuffleHandlesSmallSlices(t *testing.T) {
	require.NoError(t, Shuffle([]int{}))

	one := []int{42}
	require.NoError(t, Shuffle(one))
	assert.Equal(t, []int{42}, one)
}

func TestShuffleEventuallyReorders(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	for attempt := 0; attempt < 20; attempt++ {
		shuffled := append([]int(nil), in...)
		require.NoError(t, Shuffle(shuffled))
		for i := range in {
			if shuffled[i] != in[i] {
				return
			}
		}
	}
	t.Fatal("shuffle returned the identity permutation 20 times in a row")
}
