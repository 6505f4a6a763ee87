package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeForIsDeterministic(t *testing.T) {
	p := New(0, 8)
	first := p.NodeFor("vertex-123")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.NodeFor("vertex-123"))
	}
}

func TestNodeForDistributesAcrossNodes(t *testing.T) {
	p := New(0, 4)
	seen := make(map[uint32]bool)
	for i := 0; i < 200; i++ {
		v := string(rune('a' + i%26))
		seen[p.NodeFor(v)] = true
	}
	assert.Greater(t, len(seen), 1, "200 distinct-ish vertices should spread across more than one node")
}

func TestOwnsMatchesLocalNode(t *testing.T) {
	p := New(2, 4)
	v := "some-vertex"
	owns := p.Owns(v)
	assert.Equal(t, p.NodeFor(v) == 2, owns)
}

func TestFuncDelegatesToNodeFor(t *testing.T) {
	p := New(0, 4)
	f := p.Func()
	assert.Equal(t, p.NodeFor("x"), f("x"))
}
