package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// light params keep the test fast
var testParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestPassword_RoundTrip(t *testing.T) {
	hash, err := HashPasswordWithParams("hunter2", testParams)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(hash), "$argon2id$v=19$"))

	ok, err := VerifyPassword("hunter2", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("hunter3", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPassword_SaltedHashesDiffer(t *testing.T) {
	a, err := HashPasswordWithParams("same", testParams)
	require.NoError(t, err)
	b, err := HashPasswordWithParams("same", testParams)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestPassword_MalformedHash(t *testing.T) {
	_, err := VerifyPassword("x", []byte("not-a-hash"))
	require.Error(t, err)

	_, err = VerifyPassword("x", []byte("$bcrypt$v=19$t=1,m=8,p=1$AA==$AA=="))
	require.Error(t, err)
}
