package tui

import (
	"github.com/blackwell-systems/shelfread/internal/util"
	"github.com/spf13/cobra"
)

// ShouldUseTUI reports whether cmd should take over the terminal. It needs a
// TTY on stdout, and none of --no-interactive, --no-tui or --json set.
func ShouldUseTUI(cmd *cobra.Command) bool {
	if !util.IsTTY() {
		return false
	}
	for _, name := range []string{"no-interactive", "no-tui", "json"} {
		if v, err := cmd.Flags().GetBool(name); err == nil && v {
			return false
		}
	}
	return true
}
