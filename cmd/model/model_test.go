package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGifVisibleTo(t *testing.T) {
	g := &Gif{UserID: 7, Privacy: "private"}
	assert.True(t, g.VisibleTo(7))
	assert.False(t, g.VisibleTo(8))
	assert.False(t, g.VisibleTo(0))

	g.Privacy = "unlisted"
	assert.True(t, g.VisibleTo(0))
}

func TestCollectionVisibleTo(t *testing.T) {
	c := &Collection{UserID: 3, IsPublic: false}
	assert.True(t, c.VisibleTo(3))
	assert.False(t, c.VisibleTo(4))
	c.IsPublic = true
	assert.True(t, c.VisibleTo(0))
}

func TestNewPage(t *testing.T) {
	p := NewPage[int](nil, 1, 20, 0)
	assert.NotNil(t, p.Items)
	assert.False(t, p.HasMore)

	p = NewPage([]int{1, 2}, 1, 2, 5)
	assert.True(t, p.HasMore)
	p = NewPage([]int{5}, 3, 2, 5)
	assert.False(t, p.HasMore)
}
