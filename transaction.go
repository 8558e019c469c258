package budget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount      = errors.New("amount must be positive")
	ErrUnknownKind            = errors.New("unknown transaction kind")
	ErrInvalidDate            = errors.New("date must be a YYYY-MM-DD calendar date")
	ErrLinkOnNonReimbursement = errors.New("only a reimbursement may link to an expense")
	ErrTransferLegMissing     = errors.New("transfer is missing a leg")
	ErrTransferLegCount       = errors.New("transfer has more than two legs")
	ErrTransferAmountMismatch = errors.New("transfer legs differ in amount")
)

// TransferCategory is the category given to both legs of a transfer.
const TransferCategory = "Transfer"

// Validate returns nil if t is well formed, otherwise the first problem
// found. The engine itself tolerates every one of these problems; Validate
// exists for hosts that want to reject records at entry time.
func (t *Transaction) Validate() error {
	switch t.Kind {
	case KindExpense, KindIncome, KindTransferOut, KindTransferIn, KindReimbursement:
	default:
		return ErrUnknownKind
	}
	if !t.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if !IsDate(t.Date) {
		return ErrInvalidDate
	}
	if t.LinkedExpenseID != "" && t.Kind != KindReimbursement {
		return ErrLinkOnNonReimbursement
	}
	return nil
}

// NewTransferPair returns the two legs of a transfer between accounts.
// Both share a fresh TransferID and the absolute amount. Transfers carry no
// person and count as neither income nor expense.
func NewTransferPair(amount decimal.Decimal, date string, from, to Account, note string) (out, in Transaction) {
	transferID := uuid.NewString()
	amount = amount.Abs()
	note = strings.TrimSpace(note)

	out = Transaction{
		ID:          uuid.NewString(),
		Kind:        KindTransferOut,
		TransferID:  transferID,
		Amount:      amount,
		Category:    TransferCategory,
		Bank:        from.Bank,
		AccountType: from.AccountType,
		Date:        date,
		Note:        note,
	}
	in = out
	in.ID = uuid.NewString()
	in.Kind = KindTransferIn
	in.Bank = to.Bank
	in.AccountType = to.AccountType
	return out, in
}

// NewReimbursement returns a reimbursement of amount. linkedExpenseID may be
// empty, in which case the reimbursement settles person directly.
func NewReimbursement(linkedExpenseID string, amount decimal.Decimal, date string, acct Account, note, person string) Transaction {
	return Transaction{
		ID:              uuid.NewString(),
		Kind:            KindReimbursement,
		LinkedExpenseID: linkedExpenseID,
		Amount:          amount.Abs(),
		Category:        DefaultTemplate.Category,
		Bank:            orDefault(acct.Bank, DefaultTemplate.Bank),
		AccountType:     orDefault(acct.AccountType, DefaultTemplate.AccountType),
		Date:            date,
		Note:            strings.TrimSpace(note),
		Person:          normalizeName(person),
	}
}

// RemoveTransaction returns log without the transaction id. Removing either
// leg of a transfer removes both legs.
func RemoveTransaction(log []Transaction, id string) []Transaction {
	var transferID string
	for _, t := range log {
		if t.ID == id && (t.Kind == KindTransferOut || t.Kind == KindTransferIn) {
			transferID = t.TransferID
			break
		}
	}

	out := make([]Transaction, 0, len(log))
	for _, t := range log {
		if t.ID == id || (transferID != "" && t.TransferID == transferID) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ValidateTransfers checks that every TransferID groups exactly one
// outgoing and one incoming leg of equal amount. The error names the first
// broken transfer in log order.
func ValidateTransfers(log []Transaction) error {
	type pair struct {
		out, in []Transaction
	}
	var order []string
	pairs := make(map[string]*pair)
	for _, t := range log {
		if t.TransferID == "" || (t.Kind != KindTransferOut && t.Kind != KindTransferIn) {
			continue
		}
		p, ok := pairs[t.TransferID]
		if !ok {
			p = &pair{}
			pairs[t.TransferID] = p
			order = append(order, t.TransferID)
		}
		if t.Kind == KindTransferOut {
			p.out = append(p.out, t)
		} else {
			p.in = append(p.in, t)
		}
	}

	for _, id := range order {
		p := pairs[id]
		switch {
		case len(p.out) > 1 || len(p.in) > 1:
			return fmt.Errorf("transfer %s: %w", id, ErrTransferLegCount)
		case len(p.out) == 0 || len(p.in) == 0:
			return fmt.Errorf("transfer %s: %w", id, ErrTransferLegMissing)
		case !p.out[0].Amount.Equal(p.in[0].Amount):
			return fmt.Errorf("transfer %s: %w", id, ErrTransferAmountMismatch)
		}
	}
	return nil
}
