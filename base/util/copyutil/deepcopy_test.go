package copyutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type node struct {
	Name     string
	Children []*node
	Next     *node
}

func TestDeepCopy(t *testing.T) {
	src := &node{Name: "root", Children: []*node{{Name: "child"}}}
	dst := DeepCopy(src)

	assert.Equal(t, src, dst)
	dst.Children[0].Name = "changed"
	assert.Equal(t, "child", src.Children[0].Name)
}

func TestCopyCircular(t *testing.T) {
	src := &node{Name: "a"}
	src.Next = src

	dst := CopyCircular(src)
	assert.Equal(t, "a", dst.Name)
	assert.Same(t, dst, dst.Next)
	assert.NotSame(t, src, dst)
}
