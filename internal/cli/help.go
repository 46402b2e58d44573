package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// walkCommands visits every command in the tree depth-first.
func walkCommands(cmd *cobra.Command, fn func(*cobra.Command)) {
	fn(cmd)
	for _, sub := range cmd.Commands() {
		walkCommands(sub, fn)
	}
}

// enrichParentLong lists the available subcommands of a parent such as
// "key" or "config" under its Long text. The root is left alone; cobra
// already prints grouped commands there.
func enrichParentLong(cmd *cobra.Command) {
	if !cmd.HasSubCommands() || !cmd.HasParent() {
		return
	}

	type row struct{ name, short string }
	var rows []row
	width := 0
	for _, sub := range cmd.Commands() {
		if !sub.IsAvailableCommand() {
			continue
		}
		name := sub.Name()
		if len(sub.Aliases) > 0 {
			name += " (" + strings.Join(sub.Aliases, ", ") + ")"
		}
		width = max(width, len(name))
		rows = append(rows, row{name, sub.Short})
	}
	if len(rows) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(cmd.Long)
	sb.WriteString("\n\nSubcommands:\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, r.name, r.short)
	}
	fmt.Fprintf(&sb, "\nRun '%s <subcommand> --help' for details.", cmd.CommandPath())

	cmd.Long = sb.String()
}
