package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/howeyc/budget"
	"github.com/spf13/cobra"
)

var ErrCheckFailed = errors.New("data file has invalid records")

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate transactions, transfers and recurring rules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := loadData()
		if err != nil {
			return err
		}
		if problems := Check(cmd.OutOrStdout(), f.Data.Expenses, f.Data.Recurring); problems > 0 {
			return fmt.Errorf("%d problem(s): %w", problems, ErrCheckFailed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// Check writes one line per problem found and returns how many there were.
func Check(w io.Writer, txs []budget.Transaction, rules []budget.RecurrenceRule) int {
	buf := bufio.NewWriter(w)
	defer buf.Flush()

	problems := 0
	seen := make(map[string]bool, len(txs))
	for _, t := range txs {
		if t.ID != "" && seen[t.ID] {
			fmt.Fprintf(buf, "transaction %s: duplicate id%s", t.ID, newLine)
			problems++
		}
		seen[t.ID] = true
		if err := t.Validate(); err != nil {
			fmt.Fprintf(buf, "transaction %s: %s%s", t.ID, err, newLine)
			problems++
		}
	}
	if err := budget.ValidateTransfers(txs); err != nil {
		fmt.Fprintf(buf, "%s%s", err, newLine)
		problems++
	}
	for _, r := range rules {
		for _, d := range []string{r.StartDate, r.NextDate} {
			if d != "" && !budget.IsDate(d) {
				fmt.Fprintf(buf, "rule %s: %s: %s%s", r.ID, d, budget.ErrInvalidDate, newLine)
				problems++
			}
		}
	}
	if problems == 0 {
		buf.WriteString("ok" + newLine)
	}
	return problems
}
