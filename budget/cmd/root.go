package cmd

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/araddon/dateparse"
	"github.com/howeyc/budget"
	"github.com/howeyc/budget/budget/config"
	"github.com/howeyc/budget/budget/datafile"
	"github.com/howeyc/budget/budget/internal/fastcolor"
	"github.com/howeyc/budget/budget/internal/logger"
	"github.com/ivanpirog/coloredcobra"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	ErrBadDate = errors.New("unable to parse date argument")
)

var configFilePath string
var dataFilePath string
var logLevel string
var colorMode string

var cfg config.Config

// now is the only clock the commands read.
var now = time.Now

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "budget",
	Short:         "Recurring transactions and shared expenses for a household budget",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd)
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	coloredcobra.Init(&coloredcobra.Config{
		RootCmd:  rootCmd,
		Headings: coloredcobra.HiCyan + coloredcobra.Bold + coloredcobra.Underline,
		Commands: coloredcobra.HiYellow + coloredcobra.Bold,
		Example:  coloredcobra.Italic,
		ExecName: coloredcobra.Bold,
		Flags:    coloredcobra.Bold,
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log := logger.New(os.Stderr, zerolog.InfoLevel)
		log.Error().Err(err).Msg("budget")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFilePath, "config", "", "Configuration file (default $BUDGET_CONFIG or the user config dir).")
	rootCmd.PersistentFlags().StringVarP(&dataFilePath, "file", "f", "", "Data file (overrides config and $BUDGET_DATA_FILE).")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error.")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "", "Color output: auto, always or never.")
}

func setup(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(configFilePath)
	if err != nil {
		return err
	}
	if dataFilePath != "" {
		cfg.DataFile = dataFilePath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if colorMode != "" {
		cfg.Color = colorMode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.New(cmd.ErrOrStderr(), level)

	switch cfg.Color {
	case config.ColorAlways:
		fastcolor.SetEnabled(true)
	case config.ColorNever:
		fastcolor.SetEnabled(false)
	default:
		f, ok := cmd.OutOrStdout().(*os.File)
		fastcolor.SetEnabled(ok && isatty.IsTerminal(f.Fd()))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx, log))
	return nil
}

func loadData() (*datafile.File, error) {
	return datafile.Load(cfg.DataFile)
}

func saveData(f *datafile.File) error {
	return datafile.Save(cfg.DataFile, f)
}

func newScheduler(log zerolog.Logger) *budget.Scheduler {
	return budget.NewScheduler(
		budget.WithMaxIterations(cfg.MaxIterations),
		budget.WithDefaults(cfg.TemplateDefaults()),
		budget.WithLogger(log),
	)
}

// parseDay turns a lenient date argument into YYYY-MM-DD. An empty
// argument means today.
func parseDay(s string) (string, error) {
	if s == "" {
		return now().Format(budget.DateLayout), nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return "", ErrBadDate
	}
	return t.Format(budget.DateLayout), nil
}

// terminalWidth returns the width of stdout, or def if it is not a terminal.
func terminalWidth(def int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if tw, _, err := term.GetSize(fd); err == nil {
			return tw
		}
	}
	return def
}
