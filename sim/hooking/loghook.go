package hooking

import (
	"log"
	"strings"
)

// LogHookBase provides the common logic for all hooks that turn hook
// invocations into log lines. Lines can be nested with Begin and End.
type LogHookBase struct {
	*log.Logger

	depth int
}

// Begin nests the lines that follow one level deeper.
func (h *LogHookBase) Begin() {
	h.depth++
}

// End returns to the previous nesting level.
func (h *LogHookBase) End() {
	if h.depth > 0 {
		h.depth--
	}
}

// Logf prints an indented line.
func (h *LogHookBase) Logf(format string, args ...any) {
	h.Printf(strings.Repeat("  ", h.depth)+format, args...)
}
