package budget

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SettledEpsilon is the magnitude below which a balance counts as settled
// when splitting people into creditors and debtors.
var SettledEpsilon = decimal.New(5, -3)

// Balances maps a counterparty name to what they owe the user. A positive
// balance means the counterparty owes the user, a negative one means the
// user owes the counterparty.
type Balances map[string]decimal.Decimal

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

// linkedReimbursements sums reimbursement amounts by the expense they settle.
func linkedReimbursements(transactions []Transaction) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		if t.Kind != KindReimbursement || t.LinkedExpenseID == "" {
			continue
		}
		sums[t.LinkedExpenseID] = sums[t.LinkedExpenseID].Add(t.Amount)
	}
	return sums
}

// ComputeBalances derives the net balance of every counterparty named in
// transactions.
//
// An expense tagged with a person contributes its amount minus every
// reimbursement linked to it; over-reimbursement yields a negative
// contribution. A reimbursement is charged to its own person when it has no
// link, or when the expense it links to carries no person. Transfers and
// income are ignored. Balances are not rounded.
func ComputeBalances(transactions []Transaction) Balances {
	reimbursed := linkedReimbursements(transactions)
	expensePerson := make(map[string]string)
	for _, t := range transactions {
		if t.ID != "" {
			expensePerson[t.ID] = normalizeName(t.Person)
		}
	}

	balances := make(Balances)
	for _, t := range transactions {
		if t.Kind != KindExpense {
			continue
		}
		person := normalizeName(t.Person)
		if person == "" {
			continue
		}
		outstanding := t.Amount.Sub(reimbursed[t.ID])
		balances[person] = balances[person].Add(outstanding)
	}

	for _, t := range transactions {
		if t.Kind != KindReimbursement {
			continue
		}
		if t.LinkedExpenseID != "" && expensePerson[t.LinkedExpenseID] != "" {
			// Already netted against the expense above.
			continue
		}
		person := normalizeName(t.Person)
		if person == "" {
			continue
		}
		balances[person] = balances[person].Sub(t.Amount)
	}
	return balances
}

// Outstanding returns what remains unpaid on a single expense: its amount
// minus every reimbursement linked to it. It is zero if no transaction has
// the id or it is not an expense.
func Outstanding(transactions []Transaction, expenseID string) decimal.Decimal {
	for _, t := range transactions {
		if t.ID == expenseID && t.Kind == KindExpense {
			return t.Amount.Sub(linkedReimbursements(transactions)[expenseID])
		}
	}
	return decimal.Zero
}

// IsSettled reports whether balance is within SettledEpsilon of zero.
func IsSettled(balance decimal.Decimal) bool {
	return balance.Abs().LessThanOrEqual(SettledEpsilon)
}

// DebtRow is one counterparty in a Summary.
type DebtRow struct {
	Person  string
	Balance decimal.Decimal
}

// Summary splits balances into people who owe the user and people the user
// owes.
type Summary struct {
	// Rows lists every known or indebted person, largest balance first.
	Rows []DebtRow
	// ToReceive are rows whose balance is above SettledEpsilon.
	ToReceive []DebtRow
	// ToGive are rows whose balance is below -SettledEpsilon.
	ToGive []DebtRow

	TotalReceive decimal.Decimal
	// TotalGive is the sum of ToGive and is zero or negative.
	TotalGive decimal.Decimal
	Net       decimal.Decimal
}

// Summarize merges known people with the names in balances. Known people
// without a balance appear with zero. Rows are ordered by absolute balance,
// ties by name collated for lang; the zero language.Tag collates as French.
func Summarize(balances Balances, known []string, lang language.Tag) Summary {
	if lang == language.Und {
		lang = language.French
	}
	col := collate.New(lang)

	names := make(map[string]struct{}, len(known)+len(balances))
	for _, n := range known {
		if n = normalizeName(n); n != "" {
			names[n] = struct{}{}
		}
	}
	for n := range balances {
		if n = normalizeName(n); n != "" {
			names[n] = struct{}{}
		}
	}

	var s Summary
	s.Rows = make([]DebtRow, 0, len(names))
	for n := range names {
		s.Rows = append(s.Rows, DebtRow{Person: n, Balance: balances[n]})
	}
	slices.SortFunc(s.Rows, func(a, b DebtRow) int {
		if c := b.Balance.Abs().Cmp(a.Balance.Abs()); c != 0 {
			return c
		}
		if c := col.CompareString(a.Person, b.Person); c != 0 {
			return c
		}
		return strings.Compare(a.Person, b.Person)
	})

	for _, r := range s.Rows {
		switch {
		case r.Balance.GreaterThan(SettledEpsilon):
			s.ToReceive = append(s.ToReceive, r)
			s.TotalReceive = s.TotalReceive.Add(r.Balance)
		case r.Balance.LessThan(SettledEpsilon.Neg()):
			s.ToGive = append(s.ToGive, r)
			s.TotalGive = s.TotalGive.Add(r.Balance)
		}
	}
	s.Net = s.TotalReceive.Add(s.TotalGive)
	return s
}
