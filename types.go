package budget

import (
	"github.com/shopspring/decimal"
)

// Kind is the direction of a money movement.
type Kind string

const (
	KindExpense       Kind = "expense"
	KindIncome        Kind = "income"
	KindTransferOut   Kind = "transfer_out"
	KindTransferIn    Kind = "transfer_in"
	KindReimbursement Kind = "reimbursement"
)

// Transaction is one money movement in the transaction log. Dates are
// calendar dates in YYYY-MM-DD form with no time component.
//
// LinkedExpenseID is only set on reimbursements that settle a specific
// expense. TransferID is shared by both legs of a transfer. RecurringID is
// only set on transactions materialized from a RecurrenceRule.
type Transaction struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Title       string          `json:"title,omitempty"`
	Category    string          `json:"category"`
	Bank        string          `json:"bank"`
	AccountType string          `json:"accountType"`
	Date        string          `json:"date"`
	Note        string          `json:"note"`
	Person      string          `json:"person"`

	LinkedExpenseID string `json:"linkedExpenseId,omitempty"`
	TransferID      string `json:"transferId,omitempty"`
	RecurringID     string `json:"recurringId,omitempty"`

	// IsPreview marks synthetic rows produced by PreviewRecurring. They are
	// never part of the committed log.
	IsPreview bool `json:"isRecurringPreview,omitempty"`
}

// ScheduleType selects which fields of a Schedule are meaningful.
type ScheduleType string

const (
	ScheduleMonthly  ScheduleType = "monthly"
	ScheduleInterval ScheduleType = "interval"
)

// Schedule is the cadence of a RecurrenceRule. Monthly schedules use
// DayOfMonth and IntervalMonths, interval schedules use IntervalDays.
type Schedule struct {
	Type           ScheduleType `json:"type"`
	DayOfMonth     int          `json:"dayOfMonth,omitempty"`
	IntervalMonths int          `json:"intervalMonths,omitempty"`
	IntervalDays   int          `json:"intervalDays,omitempty"`
}

// Monthly returns a schedule on the given day every n months.
func Monthly(dayOfMonth, everyMonths int) Schedule {
	return Schedule{Type: ScheduleMonthly, DayOfMonth: dayOfMonth, IntervalMonths: everyMonths}
}

// Every returns a schedule repeating every n days.
func Every(days int) Schedule {
	return Schedule{Type: ScheduleInterval, IntervalDays: days}
}

// Next returns the occurrence following date. An unknown schedule type
// returns date unchanged.
func (s Schedule) Next(date string) string {
	switch s.Type {
	case ScheduleMonthly:
		return AddMonthsKeepingDay(date, s.IntervalMonths, s.DayOfMonth)
	case ScheduleInterval:
		return AddDays(date, s.IntervalDays)
	}
	return date
}

// RecurrenceRule is a template for transactions that repeat on a schedule.
// NextDate is the cursor: the next date due to be generated. An empty
// NextDate means the rule has not been initialized and starts at StartDate.
type RecurrenceRule struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Kind        Kind            `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Bank        string          `json:"bank"`
	AccountType string          `json:"accountType"`
	Note        string          `json:"note"`
	Schedule    Schedule        `json:"schedule"`
	StartDate   string          `json:"startDate"`
	NextDate    string          `json:"nextDate"`
	Active      bool            `json:"active"`
}

// Account identifies one side of a transfer.
type Account struct {
	Bank        string
	AccountType string
}
