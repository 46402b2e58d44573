package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"

	"github.com/mrz1836/janitor/internal/config"
	"github.com/mrz1836/janitor/internal/output"
)

// withMockPrompts replaces prompt functions for testing and restores on cleanup.
func withMockPrompts(t *testing.T, secret string, password []byte, confirm bool) {
	t.Helper()
	origPW := promptPasswordFn
	origNewPW := promptNewPasswordFn
	origConfirm := promptConfirmFn
	origPassphrase := promptPassphraseFn
	origSecret := promptSecretFn
	t.Cleanup(func() {
		promptPasswordFn = origPW
		promptNewPasswordFn = origNewPW
		promptConfirmFn = origConfirm
		promptPassphraseFn = origPassphrase
		promptSecretFn = origSecret
	})
	promptPasswordFn = func(_ string) ([]byte, error) {
		cp := make([]byte, len(password))
		copy(cp, password)
		return cp, nil
	}
	promptNewPasswordFn = func() ([]byte, error) {
		cp := make([]byte, len(password))
		copy(cp, password)
		return cp, nil
	}
	promptConfirmFn = func(string) bool { return confirm }
	promptPassphraseFn = func() (string, error) {
		return "testpassphrase", nil
	}
	promptSecretFn = func() (string, error) {
		return secret, nil
	}
}

// testCommand returns a command wired to a fresh context rooted in a temp
// home. Output is captured in the returned buffer.
func testCommand(t *testing.T, format output.Format) (*cobra.Command, *CommandContext, *bytes.Buffer) {
	t.Helper()

	c := config.Defaults()
	c.Home = t.TempDir()

	buf := new(bytes.Buffer)
	cc := NewCommandContext(c, config.NullLogger(), output.NewFormatter(format, buf))

	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetContext(context.Background())
	SetCmdContext(cmd, cc)
	return cmd, cc, buf
}
