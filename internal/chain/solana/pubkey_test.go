package solana

import (
	"crypto/ed25519"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

func TestParsePublicKey(t *testing.T) {
	t.Parallel()

	pk, err := ParsePublicKey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	require.NoError(t, err)
	assert.Equal(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", pk.String())
	assert.Equal(t, "Toke", pk.Short())
	assert.False(t, pk.IsZero())

	for _, bad := range []string{"", "0OIl", "abc", "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"} {
		_, err := ParsePublicKey(bad)
		require.Error(t, err, bad)
		assert.True(t, janitorerr.Is(err, janitorerr.ErrInvalidAddress))
		assert.False(t, IsValidAddress(bad))
	}
}

func TestPublicKey_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(TokenProgramID)
	require.NoError(t, err)
	assert.JSONEq(t, `"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"`, string(data))

	var back PublicKey
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, TokenProgramID, back)
}

func TestFindProgramAddress(t *testing.T) {
	t.Parallel()

	mint := MustParsePublicKey("So11111111111111111111111111111111111111112")
	seeds := [][]byte{[]byte("metadata"), MetadataProgramID[:], mint[:]}

	pda, bump, err := FindProgramAddress(seeds, MetadataProgramID)
	require.NoError(t, err)
	assert.False(t, IsOnCurve(pda[:]), "PDA must be off curve")

	again, err := CreateProgramAddress(append(seeds, []byte{bump}), MetadataProgramID)
	require.NoError(t, err)
	assert.Equal(t, pda, again)

	viaHelper, err := MetadataAddress(mint)
	require.NoError(t, err)
	assert.Equal(t, pda, viaHelper)
}

func TestCreateProgramAddress_SeedTooLong(t *testing.T) {
	t.Parallel()
	_, err := CreateProgramAddress([][]byte{make([]byte, 33)}, TokenProgramID)
	require.Error(t, err)
}

func TestIsOnCurve(t *testing.T) {
	t.Parallel()

	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	assert.True(t, IsOnCurve(pub), "wallet keys are curve points")
	assert.False(t, IsOnCurve([]byte{1, 2, 3}))
}
