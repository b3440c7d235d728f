package app

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/config"
	"github.com/blackwell-systems/shelfread/internal/logging"
	"github.com/spf13/cobra"
)

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell autocompletion scripts",
		Long: `Generate autocompletion scripts for your shell.

Examples:
  # Bash (add to ~/.bashrc)
  source <(shelfread completion bash)

  # Zsh (add to ~/.zshrc)
  source <(shelfread completion zsh)

  # Fish
  shelfread completion fish > ~/.config/fish/completions/shelfread.fish

  # PowerShell
  shelfread completion powershell | Out-String | Invoke-Expression

Book ids are completed for info, open, position and bookmarks.`,
		Args:                  cobra.ExactArgs(1),
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return cmd.Help()
			}
		},
	}

	return cmd
}

// completeBookIDs offers catalog ids for the first positional argument.
// Completion runs without the root pre-run, so the catalog is loaded here
// and a failure just yields no suggestions.
func completeBookIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	c, err := config.Load(config.ResolvePath(flagConfig))
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	var ids []string
	for _, b := range catalog.NewLoader(c.Catalog, client, logging.Discard()).Load(ctx) {
		if strings.HasPrefix(b.ID, toComplete) {
			ids = append(ids, b.ID+"\t"+b.Title)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
