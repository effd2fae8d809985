package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashIsStableHex(t *testing.T) {
	got := HashUserKey("guest:12345")
	assert.Equal(t, got, HashUserKey("guest:12345"))
	assert.Equal(t, got, Hash("guest:12345"))
	assert.Len(t, got, 64)
	for _, ch := range got {
		assert.True(t, (ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9'), "non-hex character %c", ch)
	}
	assert.NotEqual(t, got, Hash("guest:12346"))
}
