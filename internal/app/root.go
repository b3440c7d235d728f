package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blackwell-systems/shelfread/internal/config"
	"github.com/blackwell-systems/shelfread/internal/logging"
	"github.com/blackwell-systems/shelfread/internal/tui"
	"github.com/blackwell-systems/shelfread/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config

	flagNoColor       bool
	flagNoInteractive bool
	flagConfig        string
)

var rootCmd = &cobra.Command{
	Use:   "shelfread",
	Short: "Read PDF books from a catalog and pick up where you left off",
	Long: `shelfread lists a catalog of PDF books, downloads (or streams) the one
you pick, and remembers the last page you read and your bookmarks.

Reading state is kept in a local key-value store and can be served over
HTTP with 'shelfread serve' so another device can resume.

Run 'shelfread' with no arguments to launch the interactive menu.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tui.ShouldUseTUI(cmd) {
			return tui.Run(cmd.Context(), tuiDeps(), tui.Start{View: tui.ViewHub})
		}
		return cmd.Help()
	},
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeServices()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// Commands that must work without a usable config or store.
var standalone = map[string]bool{
	"init":       true,
	"version":    true,
	"completion": true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagNoInteractive, "no-interactive", false, "Disable interactive TUI mode")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/shelfread/config.yml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		util.InitColor(flagNoColor)

		if standalone[cmd.Name()] {
			return nil
		}

		var err error
		cfg, err = config.Load(config.ResolvePath(flagConfig))
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logging.SetLevel(cfg.Log.Level)

		return openServices(cmd.Context())
	}

	rootCmd.AddCommand(
		newInitCmd(),
		newBrowseCmd(),
		newSearchCmd(),
		newInfoCmd(),
		newOpenCmd(),
		newPositionCmd(),
		newBookmarksCmd(),
		newCacheCmd(),
		newCatalogCmd(),
		newServeCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)
}

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// fail prints a red error line.
func fail(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.RedString("✗"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(format string, a ...interface{}) {
	fmt.Println(color.CyanString(fmt.Sprintf(format, a...)))
}

func printField(label, value string) {
	fmt.Printf("  %-14s %s\n", color.CyanString(label+":"), value)
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for n := n / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
