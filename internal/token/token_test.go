package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShortToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		tok, err := NewShortToken()
		require.NoError(t, err)
		assert.Len(t, tok, shortLen)
		for _, c := range tok {
			assert.True(t, strings.ContainsRune(shortAlphabet, c), "unexpected char %q", c)
		}
		seen[tok] = struct{}{}
	}
	// Not a collision guarantee, but 1000 draws from 62^8 repeating would
	// mean the generator is broken.
	assert.Equal(t, 1000, len(seen))
}

func TestNewStaticID(t *testing.T) {
	id := NewStaticID()
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, NewStaticID())
}
