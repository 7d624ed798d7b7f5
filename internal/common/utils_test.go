package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	t.Parallel()

	s1, err := MakeRandHexString(16)
	require.NoError(t, err)
	require.Len(t, s1, 32)

	s2, err := MakeRandHexString(16)
	require.NoError(t, err)
	require.NotEqual(t, s1, s2)
}

func TestMakeNumericCode(t *testing.T) {
	t.Parallel()

	code, err := MakeNumericCode(6)
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, c := range code {
		require.True(t, c >= '0' && c <= '9', "non-digit %q in code", c)
	}
}
