package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	a := New()

	encoded, err := a.GenerateFromPassword("hunter22ern")
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$v=19$")

	ok, err := a.VerifyPasswd("hunter22ern", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.VerifyPasswd("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	a := New()

	one, err := a.GenerateFromPassword("same password")
	require.NoError(t, err)

	two, err := a.GenerateFromPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, one, two)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	a := New()

	_, err := a.VerifyPasswd("whatever", "not-a-phc-string")
	assert.Error(t, err)

	_, err = a.VerifyPasswd("whatever", "$bcrypt$v=19$m=1,t=1,p=1$AAAA$BBBB")
	assert.Error(t, err)
}

func TestVerifyHonorsEmbeddedParams(t *testing.T) {
	a := New()

	encoded, err := a.GenerateFromPassword("some password")
	require.NoError(t, err)

	// A parameter bump must not break verification of old hashes
	bumped := &ArgonHash{
		Memory:      a.Memory * 2,
		Iterations:  a.Iterations + 1,
		Parallelism: a.Parallelism,
		SaltLength:  a.SaltLength,
		KeyLength:   a.KeyLength,
	}

	ok, err := bumped.VerifyPasswd("some password", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}
