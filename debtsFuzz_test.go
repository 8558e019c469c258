//go:build go1.18

package budget

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func FuzzComputeBalancesConservation(f *testing.F) {
	f.Add(int64(10000), int64(4000), int64(3000), "Alice")
	f.Add(int64(500), int64(900), int64(0), " Bob ")
	f.Add(int64(1), int64(0), int64(0), "")
	f.Fuzz(func(t *testing.T, amount, first, second int64, person string) {
		txs := []Transaction{
			{ID: "e", Kind: KindExpense, Amount: decimal.New(amount, -2), Person: person},
			{ID: "r1", Kind: KindReimbursement, Amount: decimal.New(first, -2), Person: person, LinkedExpenseID: "e"},
			{ID: "r2", Kind: KindReimbursement, Amount: decimal.New(second, -2), Person: person, LinkedExpenseID: "e"},
		}

		total := decimal.Zero
		for _, b := range ComputeBalances(txs) {
			total = total.Add(b)
		}

		want := decimal.Zero
		if strings.TrimSpace(person) != "" {
			want = decimal.New(amount, -2).Sub(decimal.New(first, -2)).Sub(decimal.New(second, -2))
		}
		if !total.Equal(want) {
			t.Errorf("ledger is not conservative: got %s, want %s", total, want)
		}
	})
}
