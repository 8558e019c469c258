package budget

import (
	"strings"
)

// Defaults are the template values used when a rule leaves a field blank.
type Defaults struct {
	Title       string
	Category    string
	Bank        string
	AccountType string
}

// DefaultTemplate is used when no Defaults are configured.
var DefaultTemplate = Defaults{
	Title:       "Recurring",
	Category:    "Other",
	Bank:        "Cash",
	AccountType: "Checking",
}

const defaultIntervalDays = 14

func (d Defaults) orBuiltin() Defaults {
	if d.Title == "" {
		d.Title = DefaultTemplate.Title
	}
	if d.Category == "" {
		d.Category = DefaultTemplate.Category
	}
	if d.Bank == "" {
		d.Bank = DefaultTemplate.Bank
	}
	if d.AccountType == "" {
		d.AccountType = DefaultTemplate.AccountType
	}
	return d
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}

// NormalizeRule returns r with every missing or invalid field defaulted.
// today stands in for a missing start date; it is never read from the clock.
func NormalizeRule(r RecurrenceRule, today string, defaults Defaults) RecurrenceRule {
	defaults = defaults.orBuiltin()

	if !IsDate(r.StartDate) {
		r.StartDate = today
	}
	if !IsDate(r.NextDate) {
		r.NextDate = r.StartDate
	}

	r.Title = orDefault(r.Title, defaults.Title)
	r.Category = orDefault(r.Category, defaults.Category)
	r.Bank = orDefault(r.Bank, defaults.Bank)
	r.AccountType = orDefault(r.AccountType, defaults.AccountType)
	r.Note = strings.TrimSpace(r.Note)
	if r.Kind != KindIncome {
		r.Kind = KindExpense
	}
	r.Amount = r.Amount.Round(2)

	s := &r.Schedule
	switch s.Type {
	case ScheduleMonthly:
		s.IntervalMonths = max(1, s.IntervalMonths)
		s.DayOfMonth = min(31, max(1, s.DayOfMonth))
	case ScheduleInterval:
		if s.IntervalDays == 0 {
			s.IntervalDays = defaultIntervalDays
		}
		s.IntervalDays = max(1, s.IntervalDays)
	}
	return r
}

// occurrence builds the transaction a rule produces on date.
func occurrence(r RecurrenceRule, date string) Transaction {
	return Transaction{
		Title:       r.Title,
		Kind:        r.Kind,
		Amount:      r.Amount,
		Category:    r.Category,
		Bank:        r.Bank,
		AccountType: r.AccountType,
		Date:        date,
		Note:        r.Note,
		RecurringID: r.ID,
	}
}
