package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/howeyc/budget"
	"github.com/howeyc/budget/budget/internal/fastcolor"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var showSettled bool

// debtsCmd represents the debts command
var debtsCmd = &cobra.Command{
	Use:   "debts",
	Short: "Show who owes whom",
	Long: `Nets every expense shared with a person against the reimbursements
received, and prints what each person owes (positive) or is owed (negative).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := loadData()
		if err != nil {
			return err
		}
		summary := budget.Summarize(budget.ComputeBalances(f.Data.Expenses), f.Data.People, cfg.Language())
		PrintDebts(cmd.OutOrStdout(), summary, showSettled, terminalWidth(60))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(debtsCmd)

	debtsCmd.Flags().BoolVarP(&showSettled, "all", "a", false, "Also list people who are settled.")
}

func themeColor(hex string, fallback fastcolor.Color) fastcolor.Color {
	c, err := fastcolor.Hex(hex)
	if err != nil {
		return fallback
	}
	return c
}

// PrintDebts prints the summary formatted to a window of columns.
func PrintDebts(w io.Writer, s budget.Summary, printSettled bool, columns int) {
	// 14 columns for the balance, rest for the name
	if columns < 20 {
		columns = 20
	}
	nameWidth := columns - 15

	colorReceive := themeColor(cfg.Theme.Receive, fastcolor.FgGreen)
	colorGive := themeColor(cfg.Theme.Give, fastcolor.FgRed)
	colorName := fastcolor.Bold
	colorReset := fastcolor.Reset

	amtColor := func(d decimal.Decimal) fastcolor.Color {
		switch {
		case d.GreaterThan(budget.SettledEpsilon):
			return colorReceive
		case d.LessThan(budget.SettledEpsilon.Neg()):
			return colorGive
		}
		return colorReset
	}
	line := func(buf *bufio.Writer, name string, nameColor fastcolor.Color, d decimal.Decimal) {
		nameColor.WriteStringFixed(buf, name, nameWidth, false)
		buf.WriteString(" ")
		amtColor(d).WriteStringFixed(buf, d.StringFixedBank(2), 14, true)
		buf.WriteString(newLine)
	}

	buf := bufio.NewWriter(w)
	defer buf.Flush()

	if len(s.Rows) == 0 {
		buf.WriteString("No shared expenses." + newLine)
		return
	}
	for _, r := range s.Rows {
		if !printSettled && budget.IsSettled(r.Balance) {
			continue
		}
		line(buf, r.Person, colorName, r.Balance)
	}
	fmt.Fprintln(buf, strings.Repeat("-", columns))
	line(buf, fmt.Sprintf("To receive (%d)", len(s.ToReceive)), colorReset, s.TotalReceive)
	line(buf, fmt.Sprintf("To give (%d)", len(s.ToGive)), colorReset, s.TotalGive)
	line(buf, "Net", colorReset, s.Net)
}
