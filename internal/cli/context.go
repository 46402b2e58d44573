package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrz1836/janitor/internal/config"
	"github.com/mrz1836/janitor/internal/output"
)

// cmdContextKey is the context key for CommandContext.
type cmdContextKey struct{}

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Log     *config.Logger
	Fmt     *output.Formatter
	Factory *Factory
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(
	c *config.Config,
	l *config.Logger,
	f *output.Formatter,
) *CommandContext {
	fc := c
	if fc == nil {
		fc = config.Defaults()
	}
	return &CommandContext{
		Cfg:     c,
		Log:     l,
		Fmt:     f,
		Factory: NewFactory(fc, l),
	}
}

// SetCmdContext attaches cc to the command's context.
func SetCmdContext(cmd *cobra.Command, cc *CommandContext) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	cmd.SetContext(context.WithValue(base, cmdContextKey{}, cc))
}

// GetCmdContext returns the CommandContext attached to cmd, falling back to
// the global one.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	if ctx := cmd.Context(); ctx != nil {
		if cc, ok := ctx.Value(cmdContextKey{}).(*CommandContext); ok {
			return cc
		}
	}
	return cmdCtx
}
