package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionMap(t *testing.T) {
	// Buckets tile the index range contiguously with imbalance at most one
	pm := NewPartitionMap(4, 10)
	require.Equal(t, 4, pm.ParallelDegree)
	var total, prevEnd int
	for n := 0; n < pm.ParallelDegree; n++ {
		kMin, kMax := pm.GetBucketRange(n)
		assert.Equal(t, prevEnd, kMin)
		size := kMax - kMin
		assert.Contains(t, []int{2, 3}, size)
		total += size
		prevEnd = kMax
	}
	assert.Equal(t, 10, total)
	assert.Equal(t, 10, prevEnd)
}

func TestPartitionMapClamping(t *testing.T) {
	// More buckets than items collapses to one item per bucket
	pm := NewPartitionMap(16, 3)
	assert.Equal(t, 3, pm.ParallelDegree)
	for n := 0; n < pm.ParallelDegree; n++ {
		kMin, kMax := pm.GetBucketRange(n)
		assert.Equal(t, 1, kMax-kMin)
	}

	// Non-positive degree falls back to the machine width
	pm = NewPartitionMap(0, 1<<20)
	assert.Greater(t, pm.ParallelDegree, 0)
}
