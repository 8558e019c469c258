package cmd

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/hako/durafmt"
	"github.com/howeyc/budget"
	"github.com/howeyc/budget/budget/internal/logger"
	"github.com/spf13/cobra"
)

var applyToday string
var applyDryRun bool

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Materialize every recurring transaction due up to today",
	Long: `Walks each active recurring rule from its next date up to today,
appending one transaction per due date that is not already in the log.
Running it twice for the same day adds nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := logger.FromContext(cmd.Context())

		today, err := parseDay(applyToday)
		if err != nil {
			return err
		}
		f, err := loadData()
		if err != nil {
			return err
		}

		res := newScheduler(log).Apply(f.Data.Recurring, f.Data.Expenses, today)
		PrintApplied(cmd.OutOrStdout(), res, today)

		if applyDryRun || (res.Added == 0 && !rulesChanged(f.Data.Recurring, res.Rules)) {
			return nil
		}
		f.Data.Expenses = res.Transactions
		f.Data.Recurring = res.Rules
		if err := saveData(f); err != nil {
			return err
		}
		log.Info().Int("added", res.Added).Str("file", cfg.DataFile).Msg("saved")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVarP(&applyToday, "today", "t", "", "Reference date (default is the current local date).")
	applyCmd.Flags().BoolVarP(&applyDryRun, "dry-run", "n", false, "Report what would be added without saving.")
}

func rulesChanged(before, after []budget.RecurrenceRule) bool {
	if len(before) != len(after) {
		return true
	}
	for i := range before {
		if before[i].NextDate != after[i].NextDate {
			return true
		}
	}
	return false
}

// PrintApplied lists the occurrences added per rule with how far behind
// the rule was, followed by any rule cut short by the iteration limit.
func PrintApplied(w io.Writer, res budget.Applied, today string) {
	buf := bufio.NewWriter(w)
	defer buf.Flush()

	type ruleAdded struct {
		count  int
		oldest string
	}
	perRule := make(map[string]*ruleAdded)
	var order []string
	for _, t := range res.Transactions[:res.Added] {
		ra, ok := perRule[t.RecurringID]
		if !ok {
			ra = &ruleAdded{oldest: t.Date}
			perRule[t.RecurringID] = ra
			order = append(order, t.RecurringID)
		}
		ra.count++
		if t.Date < ra.oldest {
			ra.oldest = t.Date
		}
	}
	slices.Sort(order)

	titles := make(map[string]string, len(res.Rules))
	for _, r := range res.Rules {
		titles[r.ID] = r.Title
	}

	for _, id := range order {
		ra := perRule[id]
		fmt.Fprintf(buf, "%s: %d added", ruleName(titles, id), ra.count)
		if lag := lagSince(ra.oldest, today); lag != "" {
			fmt.Fprintf(buf, " (%s behind)", lag)
		}
		buf.WriteString(newLine)
	}
	for _, id := range res.Truncated {
		fmt.Fprintf(buf, "%s: stopped at the iteration limit, run apply again%s", ruleName(titles, id), newLine)
	}
	fmt.Fprintf(buf, "%d occurrence(s) added%s", res.Added, newLine)
}

func ruleName(titles map[string]string, id string) string {
	if t := titles[id]; t != "" {
		return t
	}
	return id
}

// lagSince formats the time between two YYYY-MM-DD dates, or "" if there
// is none.
func lagSince(from, to string) string {
	a, errA := time.Parse(budget.DateLayout, from)
	b, errB := time.Parse(budget.DateLayout, to)
	if errA != nil || errB != nil || !b.After(a) {
		return ""
	}
	return durafmt.Parse(b.Sub(a)).LimitFirstN(2).String()
}
