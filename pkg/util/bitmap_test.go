package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitmap(t *testing.T) {
	mask := &Bitmap{}
	assert.True(t, mask.AllValid())
	assert.True(t, mask.RowIsValid(100))

	mask.SetInvalid(3)
	assert.False(t, mask.AllValid())
	assert.False(t, mask.RowIsValid(3))
	assert.True(t, mask.RowIsValid(2))

	mask.SetValid(3)
	assert.True(t, mask.RowIsValid(3))

	mask.Set(DefaultVectorSize+10, false)
	assert.False(t, mask.RowIsValid(DefaultVectorSize+10))
	assert.True(t, mask.RowIsValid(DefaultVectorSize+9))
	assert.True(t, mask.RowIsValid(DefaultVectorSize+11))

	mask.Resize(DefaultVectorSize+16, 2*DefaultVectorSize)
	assert.False(t, mask.RowIsValid(DefaultVectorSize+10))
	assert.True(t, mask.RowIsValid(2*DefaultVectorSize-1))
}

func TestRemoveIf(t *testing.T) {
	data := []int{1, 2, 3, 4, 5, 6}
	data = RemoveIf(data, func(v int) bool {
		return v%2 == 0
	})
	assert.Equal(t, []int{1, 3, 5}, data)
	assert.Empty(t, RemoveIf([]int{}, func(int) bool { return true }))
	assert.Equal(t, []int{1, 2, 3}, Concat([][]int{{1}, nil, {2, 3}}))
}
