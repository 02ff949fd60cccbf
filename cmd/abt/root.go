package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/colorprofile"
	"github.com/spf13/cobra"

	"github.com/raphi011/abt/internal/boards"
	"github.com/raphi011/abt/internal/config"
	"github.com/raphi011/abt/internal/log"
	"github.com/raphi011/abt/internal/output"
	"github.com/raphi011/abt/internal/ui/styles"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	logFile    string
	configPath string

	// Shared state injected into commands
	cfg    *config.Config
	logger = log.New(os.Stderr, false, false)
)

// Command group IDs for organizing help output
const (
	GroupBoard   = "board"
	GroupCards   = "cards"
	GroupUtility = "utility"
	GroupConfig  = "config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "abt",
	Short: "Azure Boards in the terminal",
	Long: `abt is a terminal dashboard for Azure DevOps Boards.

Without a subcommand it opens the interactive dashboard: sprints on the
left, the selected sprint's cards on the right, each card annotated with
its parent Feature and Epic and the sprint it was first planned in.

The subcommands expose the same data for scripts.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2, // Enable typo suggestions
	Args:                       cobra.NoArgs,
	PersistentPreRunE:          setup,
	RunE:                       runDashboard,
}

// setup builds the logger and loads the config before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	logger = log.New(os.Stderr, verbose, quiet)
	if logFile != "" {
		z, err := log.NewFileSink(logFile, true)
		if err != nil {
			return err
		}
		logger = logger.WithZap(z)
	}
	cmd.SetContext(log.WithLogger(cmd.Context(), logger))

	// Completion and help work without a config.
	switch cmd.Name() {
	case "completion", "__complete", "help", "version":
		return nil
	case "init":
		// config init creates the file Load would read.
		return nil
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	loaded, err := config.Load(config.LoadOptions{Path: configPath, WorkDir: workDir})
	if err != nil {
		return err
	}
	cfg = &loaded
	styles.Init(cfg.Theme)

	logger.Debug("config loaded", "path", cfg.Path, "organisation", cfg.Organisation, "project", cfg.Project, "team", cfg.Team)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Create context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Add output printer (stdout for primary data). Colors are downsampled
	// to what stdout supports, and dropped when it is piped.
	ctx = output.WithPrinter(ctx, colorprofile.NewWriter(os.Stdout, os.Environ()))
	ctx = log.WithLogger(ctx, log.New(os.Stderr, false, false))

	// Store context for commands to use
	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(1)
	}
}

// errorHint suggests a next step for well-known failures.
func errorHint(err error) string {
	switch {
	case errors.Is(err, config.ErrConfig):
		return "Run 'abt config init' to create a config file, or set the ABT_* environment variables"
	case errors.Is(err, boards.ErrUnauthorized):
		return "Check that the token is valid and has Work Items (Read & Write) scope"
	case errors.Is(err, context.Canceled):
		return ""
	default:
		return "Run 'abt -h' for help"
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show HTTP requests and debug events")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append structured debug logs to `file`")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.config/abt/config.toml)")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	_ = rootCmd.MarkPersistentFlagFilename("log-file")
	_ = rootCmd.MarkPersistentFlagFilename("config", "toml")

	// Version flag
	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Add command groups for organized help output
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupBoard, Title: "Board Commands:"},
		&cobra.Group{ID: GroupCards, Title: "Card Commands:"},
		&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Board commands
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newSprintsCmd())
	rootCmd.AddCommand(newCardsCmd())
	rootCmd.AddCommand(newEpicsCmd())

	// Card commands
	rootCmd.AddCommand(newStateCmd())
	rootCmd.AddCommand(newMoveCmd())
	rootCmd.AddCommand(newChildrenCmd())
	rootCmd.AddCommand(newOpenCmd())

	// Utility commands
	rootCmd.AddCommand(newVersionCmd())

	// Config commands
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())
}
