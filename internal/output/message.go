package output

import (
	"fmt"
	"io"
)

// Message prefixes for human-facing status lines.
const (
	prefixInfo    = "ℹ️  "
	prefixWarn    = "⚠️  "
	prefixSuccess = "✅ "
)

// Infof prints an informational line.
func Infof(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, prefixInfo+fmt.Sprintf(format, args...))
}

// Warnf prints a warning line. Callers usually pass stderr.
func Warnf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, prefixWarn+fmt.Sprintf(format, args...))
}

// Successf prints a success line.
func Successf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, prefixSuccess+fmt.Sprintf(format, args...))
}
