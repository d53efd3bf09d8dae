package geom

import "testing"

import "github.com/stretchr/testify/assert"

func TestEmpty(t *testing.T) {
	assert.True(t, New(0, 0, 0, 5).Empty())
	assert.True(t, New(0, 0, 5, 0).Empty())
	assert.True(t, New(5, 0, 0, 5).Empty())
	assert.False(t, New(0, 0, 5, 5).Empty())
}

func TestUnionEmptyPassthrough(t *testing.T) {
	a := Rect{}
	b := New(1, 2, 3, 4)
	assert.Equal(t, b, Union(a, b))
	assert.Equal(t, b, Union(b, a))
	assert.True(t, Union(Rect{}, Rect{}).Empty())
}

func TestUnionBoundingBox(t *testing.T) {
	a := New(0, 0, 10, 10)
	b := New(5, 5, 20, 8)
	got := Union(a, b)
	assert.Equal(t, New(0, 0, 20, 10), got)
}

func TestIntersectDisjoint(t *testing.T) {
	a := New(0, 0, 5, 5)
	b := New(10, 10, 20, 20)
	r, ok := Intersect(a, b)
	assert.False(t, ok)
	assert.True(t, r.Empty())
}

func TestIntersectOverlap(t *testing.T) {
	a := New(0, 0, 10, 10)
	b := New(5, 5, 15, 15)
	r, ok := Intersect(a, b)
	assert.True(t, ok)
	assert.Equal(t, New(5, 5, 10, 10), r)
}

func TestIntersectCommutative(t *testing.T) {
	a := New(0, 0, 10, 10)
	b := New(5, -2, 15, 6)
	r1, ok1 := Intersect(a, b)
	r2, ok2 := Intersect(b, a)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, r1, r2)
}

func TestUnionOfIntersectIdentity(t *testing.T) {
	a := New(0, 0, 10, 10)
	b := New(5, 5, 20, 20)
	inter, _ := Intersect(a, b)
	assert.Equal(t, a, Union(a, inter))
}

func TestOffsetAndInflate(t *testing.T) {
	r := New(0, 0, 10, 10)
	assert.Equal(t, New(3, -2, 13, 8), r.Offset(3, -2))
	assert.Equal(t, New(-1, -1, 11, 11), r.Inflate(1, 1))
	assert.Equal(t, New(2, 2, 8, 8), r.Inflate(-2, -2))
}

func TestWidthHeight(t *testing.T) {
	r := New(2, 3, 10, 20)
	assert.Equal(t, 8, r.Width())
	assert.Equal(t, 17, r.Height())
}
