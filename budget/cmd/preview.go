package cmd

import (
	"errors"

	"github.com/howeyc/budget"
	"github.com/howeyc/budget/budget/internal/logger"
	"github.com/spf13/cobra"
)

var ErrEmptyWindow = errors.New("preview window ends before it starts")

var previewFrom, previewTo string
var previewDays int

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "List upcoming recurring transactions without saving them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		from, err := parseDay(previewFrom)
		if err != nil {
			return err
		}
		to := budget.AddDays(from, previewDays)
		if previewTo != "" {
			if to, err = parseDay(previewTo); err != nil {
				return err
			}
		}
		if budget.CompareDates(to, from) < 0 {
			return ErrEmptyWindow
		}

		f, err := loadData()
		if err != nil {
			return err
		}
		rows := newScheduler(logger.FromContext(cmd.Context())).Preview(f.Data.Recurring, from, to)
		PrintRegister(cmd.OutOrStdout(), rows, terminalWidth(80))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVar(&previewFrom, "from", "", "First day of the window (default today).")
	previewCmd.Flags().StringVar(&previewTo, "to", "", "Last day of the window.")
	previewCmd.Flags().IntVar(&previewDays, "days", 30, "Window length when --to is not given.")
}
