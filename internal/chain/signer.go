package chain

import "context"

// ConfirmFunc asks the user to approve a single signature. Returning false
// means the user declined, which callers report as a rejection.
type ConfirmFunc func(ctx context.Context, summary string) (bool, error)

// AutoApprove approves every signature without prompting.
func AutoApprove(context.Context, string) (bool, error) {
	return true, nil
}
