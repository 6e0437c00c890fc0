package random

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	p, err := Password(24)
	require.NoError(t, err)
	assert.Len(t, p, 24)
	for _, r := range p {
		assert.True(t, strings.ContainsRune(passwordAlphabet, r), "unexpected %q", r)
	}

	p, err = Password(0)
	require.NoError(t, err)
	assert.Len(t, p, DefaultPasswordLength)

	q, err := Password(0)
	require.NoError(t, err)
	assert.NotEqual(t, p, q)
}
