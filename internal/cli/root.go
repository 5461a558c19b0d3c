// Package cli implements gridctl, the command-line companion of the list
// screens: it lists the registered pages, previews a page in the terminal
// and exports whole result sets to spreadsheets.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fulfillment/internal/core"
	"github.com/JonMunkholm/fulfillment/internal/logging"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gridctl",
		Short: "Inspect and export the fulfillment list screens",
		Long: `gridctl reads the same page registry and record tables as the web
server. Database settings come from the environment (DATABASE_URL) or a
.env file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging on stderr")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("pages-file", "", "TOML page overrides to apply (default: $TABLE_PAGES_FILE)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor || os.Getenv("NO_COLOR") != "" {
			setNoColor()
		}

		level := "warn"
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = "debug"
		}
		logger = logging.New(cmd.ErrOrStderr(), level, "text")

		path, _ := cmd.Flags().GetString("pages-file")
		if path == "" {
			path = os.Getenv("TABLE_PAGES_FILE")
		}
		if path == "" {
			return nil
		}
		file, err := core.LoadPagesFile(path)
		if err != nil {
			return err
		}
		keys, err := core.ApplyPages(file)
		if err != nil {
			return err
		}
		logger.Debug("page overrides applied", "path", path, "pages", keys)
		return nil
	}

	cmd.AddCommand(
		newPagesCmd(),
		newPreviewCmd(),
		newExportCmd(),
	)
	return cmd
}

// Execute runs the root command and prints any error to stderr, mapped to
// its user message when one is known.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		msg := err.Error()
		if core.IsUserFacing(err) {
			msg = core.FormatUserError(err)
		}
		fmt.Fprintln(os.Stderr, paint(errorStyle, "error: ")+msg)
		return err
	}
	return nil
}
