package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	Name     string
	Children []*node
}

func TestClone_DeepCopiesPlainStruct(t *testing.T) {
	type point struct{ X, Y int }
	p := point{1, 2}
	out := Clone(p).(point)
	out.X = 99
	assert.Equal(t, 1, p.X)
	assert.Equal(t, 99, out.X)
}

func TestClone_PreservesIntraGraphSharing(t *testing.T) {
	shared := &node{Name: "shared"}
	root := &node{Name: "root", Children: []*node{shared, shared}}

	out := Clone(root).(*node)
	require.Len(t, out.Children, 2)
	assert.Same(t, out.Children[0], out.Children[1])
	assert.NotSame(t, shared, out.Children[0])
}

func TestClone_TimeIsPreservedVerbatim(t *testing.T) {
	now := time.Now()
	out := Clone(now).(time.Time)
	assert.True(t, now.Equal(out))
}

func TestClone_MapAndSliceAreIndependent(t *testing.T) {
	in := map[string]any{"a": []int{1, 2, 3}}
	out := Clone(in).(map[string]any)
	out["a"].([]int)[0] = 99
	assert.Equal(t, 1, in["a"].([]int)[0])
}

func TestCloneMetadata_Nil(t *testing.T) {
	assert.Nil(t, CloneMetadata(nil))
}
