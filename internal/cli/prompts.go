package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mrz1836/janitor/internal/chain"
	"github.com/mrz1836/janitor/internal/keystore"
	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// minPasswordLength is the shortest accepted keystore password.
const minPasswordLength = 8

// Prompt hooks, replaced in tests.
//
//nolint:gochecknoglobals // test seams for interactive input
var (
	promptPasswordFn    = promptPassword
	promptNewPasswordFn = promptNewPassword
	promptConfirmFn     = promptConfirmation
	promptPassphraseFn  = promptPassphrase
	promptSecretFn      = promptSecret
)

// promptPassword prompts for a password with hidden input.
// The caller is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return password, nil
}

// promptNewPassword prompts for a new password with confirmation.
// The caller is responsible for zeroing the returned bytes after use.
func promptNewPassword() ([]byte, error) {
	password, err := promptPasswordFn("Enter keystore password: ")
	if err != nil {
		return nil, err
	}

	if len(password) < minPasswordLength {
		keystore.Zero(password)
		return nil, janitorerr.WithSuggestion(
			janitorerr.ErrInvalidInput,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength),
		)
	}

	confirm, err := promptPasswordFn("Confirm password: ")
	if err != nil {
		keystore.Zero(password)
		return nil, err
	}
	defer keystore.Zero(confirm)

	if string(password) != string(confirm) {
		keystore.Zero(password)
		return nil, janitorerr.WithSuggestion(
			janitorerr.ErrInvalidInput,
			"passwords do not match",
		)
	}

	return password, nil
}

// promptPassphrase prompts for an optional BIP39 passphrase.
func promptPassphrase() (string, error) {
	outln(os.Stderr, "\nBIP39 passphrase (leave empty if the wallet has none):")

	passphrase, err := promptPasswordFn("Enter passphrase: ")
	if err != nil {
		return "", err
	}
	result := string(passphrase)
	keystore.Zero(passphrase)
	return result, nil
}

// promptSecret reads a mnemonic or private key without echoing it.
func promptSecret() (string, error) {
	outln(os.Stderr, "Enter a recovery phrase or private key.")
	outln(os.Stderr, "Input is hidden; paste all words on one line.")

	secret, err := promptPasswordFn("Secret: ")
	if err != nil {
		return "", err
	}
	result := strings.TrimSpace(string(secret))
	keystore.Zero(secret)
	if result == "" {
		return "", janitorerr.WithSuggestion(janitorerr.ErrInvalidInput, "no input provided")
	}
	return result, nil
}

// promptConfirmation asks a yes/no question on stderr. Anything but y/yes
// is a no.
func promptConfirmation(question string) bool {
	out(os.Stderr, "%s [y/N]: ", question)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	response := strings.ToLower(strings.TrimSpace(line))
	return response == "y" || response == "yes"
}

// signatureConfirm returns the ConfirmFunc used by signers: --yes approves
// everything, otherwise each transaction summary is shown and confirmed.
func signatureConfirm() chain.ConfirmFunc {
	if assumeYes {
		return chain.AutoApprove
	}
	return func(ctx context.Context, summary string) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		outln(os.Stderr)
		outln(os.Stderr, summary)
		return promptConfirmFn("Sign this transaction?"), nil
	}
}
