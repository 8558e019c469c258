package cmd

import (
	"bufio"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/howeyc/budget"
	"github.com/howeyc/budget/budget/internal/fastcolor"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const (
	newLine = "\n"
)

var startString, endString string
var columnWidth int
var columnWide bool
var kindFilter string
var personFilter string
var spaceStr string

// printCmd represents the print command
var printCmd = &cobra.Command{
	Use:   "print [text-filter]...",
	Short: "Print transactions of the log",
	Long: `Prints transactions in date order. Each positional argument keeps
transactions whose title, category or note contains it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadData()
		if err != nil {
			return err
		}
		txs, err := filterTransactions(f.Data.Expenses)
		if err != nil {
			return err
		}

		columns := columnWidth
		if columnWide && columnWidth == 80 {
			columns = terminalWidth(132)
		}
		PrintLedger(cmd.OutOrStdout(), txs, args, columns)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(printCmd)

	printCmd.Flags().StringVarP(&startString, "begin-date", "b", "", "Begin date of transaction processing.")
	printCmd.Flags().StringVarP(&endString, "end-date", "e", "", "End date of transaction processing.")
	printCmd.Flags().StringVar(&kindFilter, "kind", "", "Only show transactions of this kind.")
	printCmd.Flags().StringVar(&personFilter, "person", "", "Only show transactions involving this person.")
	printCmd.Flags().IntVar(&columnWidth, "columns", 80, "Set a column width for output.")
	printCmd.Flags().BoolVar(&columnWide, "wide", false, "Wide output (use terminal width).")
}

func filterTransactions(log []budget.Transaction) ([]budget.Transaction, error) {
	var begin, end string
	var err error
	if startString != "" {
		if begin, err = parseDay(startString); err != nil {
			return nil, err
		}
	}
	if endString != "" {
		if end, err = parseDay(endString); err != nil {
			return nil, err
		}
	}

	var out []budget.Transaction
	for _, t := range log {
		if begin != "" && t.Date < begin {
			continue
		}
		if end != "" && t.Date > end {
			continue
		}
		if kindFilter != "" && string(t.Kind) != kindFilter {
			continue
		}
		if personFilter != "" && strings.TrimSpace(t.Person) != strings.TrimSpace(personFilter) {
			continue
		}
		out = append(out, t)
	}

	slices.SortStableFunc(out, func(a, b budget.Transaction) int {
		return budget.CompareDates(a.Date, b.Date)
	})
	return out, nil
}

// signedAmount is the transaction's effect on the household's accounts.
func signedAmount(t budget.Transaction) decimal.Decimal {
	switch t.Kind {
	case budget.KindExpense, budget.KindTransferOut:
		return t.Amount.Neg()
	}
	return t.Amount
}

func payee(t budget.Transaction) string {
	if t.Title != "" {
		return t.Title
	}
	return t.Category
}

// WriteTransaction writes a transaction formatted to fit in specified column width.
func WriteTransaction(w io.StringWriter, trans budget.Transaction, columns int) {
	if len(spaceStr) < columns {
		spaceStr = strings.Repeat(" ", columns)
	}

	w.WriteString(trans.Date)
	w.WriteString(spaceStr[:1])
	w.WriteString(payee(trans))
	if len(trans.Note) > 0 {
		spaceCount := columns - 12 - utf8.RuneCountInString(payee(trans))
		if spaceCount < 1 {
			spaceCount = 1
		}
		w.WriteString(spaceStr[:spaceCount])
		w.WriteString("; ")
		w.WriteString(trans.Note)
	}
	w.WriteString(newLine)

	account := trans.Bank + ":" + trans.AccountType
	if trans.Category != "" && trans.Title != "" {
		account += ":" + trans.Category
	}
	outBalanceString := signedAmount(trans).StringFixedBank(2)
	spaceCount := columns - 4 - utf8.RuneCountInString(account) - utf8.RuneCountInString(outBalanceString)
	if spaceCount < 1 {
		spaceCount = 1
	}
	w.WriteString(spaceStr[:4])
	w.WriteString(account)
	w.WriteString(spaceStr[:spaceCount])
	w.WriteString(outBalanceString)
	w.WriteString(newLine)

	var tags []string
	if p := strings.TrimSpace(trans.Person); p != "" {
		tags = append(tags, "person:"+p)
	}
	if trans.LinkedExpenseID != "" {
		tags = append(tags, "settles:"+trans.LinkedExpenseID)
	}
	if trans.TransferID != "" {
		tags = append(tags, "transfer:"+trans.TransferID)
	}
	if trans.RecurringID != "" {
		tags = append(tags, "recurring:"+trans.RecurringID)
	}
	if len(tags) > 0 {
		w.WriteString(spaceStr[:4])
		w.WriteString("; ")
		w.WriteString(strings.Join(tags, " "))
		w.WriteString(newLine)
	}
	w.WriteString(newLine)
}

// PrintLedger prints every transaction matching one of the filters.
func PrintLedger(w io.Writer, txs []budget.Transaction, filterArr []string, columns int) {
	buf := bufio.NewWriter(w)
	for _, trans := range txs {
		inFilter := len(filterArr) == 0
		for _, filter := range filterArr {
			if strings.Contains(trans.Title, filter) ||
				strings.Contains(trans.Category, filter) ||
				strings.Contains(trans.Note, filter) {
				inFilter = true
			}
		}
		if inFilter {
			WriteTransaction(buf, trans, columns)
		}
	}
	buf.Flush()
}

// PrintRegister prints one line per transaction with a running total.
func PrintRegister(w io.Writer, txs []budget.Transaction, columns int) {
	// 3 10-width columns (date, amount, running-total) and 4 spaces
	if columns < 35 {
		columns = 35
	}
	remainingWidth := columns - (10 * 3) - (4 * 1)
	col1width := remainingWidth / 2
	col2width := remainingWidth - col1width

	colorNeg := fastcolor.FgRed
	colorPayee := fastcolor.Bold
	colorAccount := fastcolor.FgBlue
	colorReset := fastcolor.Reset

	buf := bufio.NewWriter(w)
	runningBalance := decimal.Zero
	for _, trans := range txs {
		amount := signedAmount(trans)
		runningBalance = runningBalance.Add(amount)

		balamtColor := colorReset
		if amount.Sign() < 0 {
			balamtColor = colorNeg
		}
		runamtColor := colorReset
		if runningBalance.Sign() < 0 {
			runamtColor = colorNeg
		}

		buf.WriteString(trans.Date)
		buf.WriteString(" ")
		colorPayee.WriteStringFixed(buf, payee(trans), col1width, false)
		buf.WriteString(" ")
		colorAccount.WriteStringFixed(buf, trans.Bank+":"+trans.AccountType, col2width, false)
		buf.WriteString(" ")
		balamtColor.WriteStringFixed(buf, amount.StringFixedBank(2), 10, true)
		buf.WriteString(" ")
		runamtColor.WriteStringFixed(buf, runningBalance.StringFixedBank(2), 10, true)
		buf.WriteString(newLine)
	}
	buf.Flush()
}
