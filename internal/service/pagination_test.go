package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestOffset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, Limit: 6}.offset())
	assert.Equal(t, 12, PageRequest{Page: 3, Limit: 6}.offset())
	assert.Equal(t, 0, PageRequest{Page: 0, Limit: 6}.offset())
	assert.Equal(t, 0, PageRequest{Page: 5}.offset())
	assert.Equal(t, math.MaxInt32, PageRequest{Page: math.MaxInt, Limit: 100}.offset())
}

func TestPageRequestLimit(t *testing.T) {
	assert.Equal(t, -1, PageRequest{}.limit())
	assert.Equal(t, 6, PageRequest{Limit: 6}.limit())
}
