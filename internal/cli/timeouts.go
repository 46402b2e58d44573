package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

const (
	// scanTimeout bounds a scan including pagination and fallback reads.
	scanTimeout = 2 * time.Minute

	// actionTimeout bounds a cleanup command. Signature prompts wait on the
	// user, so this is generous.
	actionTimeout = 15 * time.Minute
)

// contextWithTimeout derives the deadline for one command from the command
// context. A positive --timeout replaces the command's default d.
func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	if timeout > 0 {
		d = timeout
	}
	return context.WithTimeout(base, d)
}
