package cli

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/hidden"
	"github.com/mrz1836/janitor/internal/output"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// withHiddenChain sets the shared --chain flag value for one test.
func withHiddenChain(t *testing.T, id chain.ID) {
	t.Helper()
	orig := hiddenChain
	t.Cleanup(func() { hiddenChain = orig })
	hiddenChain = id.String()
}

// NOT parallel: the hide commands share package-level flag variables.
func TestHideUnhideRoundTrip(t *testing.T) {
	withHiddenChain(t, chain.Base)
	cmd, cc, buf := testCommand(t, output.FormatText)

	require.NoError(t, runHide(cmd, []string{testUSDC}))
	assert.Contains(t, buf.String(), "Hidden")

	set, _, err := hidden.Load(cc.Factory.HiddenStore(chain.Base))
	require.NoError(t, err)
	assert.True(t, set.Contains(chain.Base, testUSDC))

	buf.Reset()
	require.NoError(t, runUnhide(cmd, []string{testUSDC}))
	assert.Contains(t, buf.String(), "visible again")

	buf.Reset()
	require.NoError(t, runUnhide(cmd, []string{testUSDC}))
	assert.Contains(t, buf.String(), "was not hidden")
}

func TestHide_InvalidAddress(t *testing.T) {
	withHiddenChain(t, chain.Base)
	cmd, _, _ := testCommand(t, output.FormatText)

	err := runHide(cmd, []string{"not-an-address"})
	require.ErrorIs(t, err, janitorerr.ErrInvalidAddress)
}

func TestHide_UnknownChain(t *testing.T) {
	withHiddenChain(t, chain.ID("dogecoin"))
	cmd, _, _ := testCommand(t, output.FormatText)

	require.Error(t, runHide(cmd, []string{testUSDC}))
}

func TestHidden_ListJSON(t *testing.T) {
	withHiddenChain(t, chain.Solana)
	cmd, cc, buf := testCommand(t, output.FormatJSON)

	require.NoError(t, hidden.Hide(cc.Factory.HiddenStore(chain.Solana), chain.Solana, testSolanaOwner))

	require.NoError(t, runHidden(cmd, nil))

	var got []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{testSolanaOwner}, got)
}

func TestHidden_EmptyJSONIsArray(t *testing.T) {
	withHiddenChain(t, chain.Base)
	cmd, _, buf := testCommand(t, output.FormatJSON)

	require.NoError(t, runHidden(cmd, nil))
	assert.JSONEq(t, "[]", buf.String())
}

func TestHidden_CorruptFileIsTreatedAsEmpty(t *testing.T) {
	withHiddenChain(t, chain.Base)
	cmd, cc, buf := testCommand(t, output.FormatText)

	store := hidden.NewFileStore(cc.Cfg.Home, chain.Base)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	require.NoError(t, runHidden(cmd, nil))
	assert.Contains(t, buf.String(), "No hidden tokens")
}
