package budget

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("tx-%d", n)
	}
}

func rent() RecurrenceRule {
	return RecurrenceRule{
		ID:          "rent",
		Title:       "Rent",
		Kind:        KindExpense,
		Amount:      decimal.RequireFromString("950.004"),
		Category:    "Housing",
		Bank:        "Main",
		AccountType: "Checking",
		Schedule:    Monthly(31, 1),
		StartDate:   "2024-01-31",
		Active:      true,
	}
}

func daily(id, start string) RecurrenceRule {
	return RecurrenceRule{
		ID:        id,
		Title:     "Coffee",
		Kind:      KindExpense,
		Amount:    decimal.NewFromInt(3),
		Schedule:  Every(1),
		StartDate: start,
		Active:    true,
	}
}

func dates(txs []Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.Date
	}
	return out
}

func TestApplyCatchUpDaily(t *testing.T) {
	s := NewScheduler(WithIDFunc(counterIDs()))
	res := s.Apply([]RecurrenceRule{daily("coffee", "2024-03-01")}, nil, "2024-03-11")

	if res.Added != 11 {
		t.Fatalf("expected 11 occurrences, got %d", res.Added)
	}
	if len(res.Transactions) != 11 {
		t.Fatalf("expected 11 transactions, got %d", len(res.Transactions))
	}
	if got := res.Rules[0].NextDate; got != "2024-03-12" {
		t.Errorf("expected cursor 2024-03-12, got %s", got)
	}
	// newest first
	if res.Transactions[0].Date != "2024-03-11" || res.Transactions[10].Date != "2024-03-01" {
		t.Errorf("unexpected order: %v", dates(res.Transactions))
	}
	for _, tx := range res.Transactions {
		if tx.RecurringID != "coffee" {
			t.Errorf("expected recurringId coffee, got %q", tx.RecurringID)
		}
		if tx.Category != DefaultTemplate.Category || tx.Bank != DefaultTemplate.Bank || tx.AccountType != DefaultTemplate.AccountType {
			t.Errorf("expected template defaults, got %+v", tx)
		}
	}
}

func TestApplyIdempotent(t *testing.T) {
	s := NewScheduler(WithIDFunc(counterIDs()))
	rules := []RecurrenceRule{rent(), daily("coffee", "2024-02-20")}
	existing := []Transaction{
		{ID: "manual", Kind: KindExpense, Amount: decimal.NewFromInt(12), Date: "2024-02-01"},
	}

	first := s.Apply(rules, existing, "2024-03-05")
	if first.Added == 0 {
		t.Fatal("expected first call to add occurrences")
	}

	second := s.Apply(first.Rules, first.Transactions, "2024-03-05")
	if second.Added != 0 {
		t.Fatalf("expected second call to add nothing, added %d", second.Added)
	}
	if !reflect.DeepEqual(first.Transactions, second.Transactions) {
		t.Error("expected identical transaction log on second call")
	}
	if !reflect.DeepEqual(first.Rules, second.Rules) {
		t.Error("expected identical rules on second call")
	}

	// Re-running against the uncommitted state must not duplicate either.
	replay := s.Apply(rules, first.Transactions, "2024-03-05")
	if replay.Added != 0 {
		t.Fatalf("expected replay on old rules to add nothing, added %d", replay.Added)
	}
}

func TestApplyNoDuplicateOccurrences(t *testing.T) {
	s := NewScheduler(WithIDFunc(counterIDs()))
	rules := []RecurrenceRule{
		rent(),
		daily("coffee", "2024-01-01"),
		{ID: "gym", Kind: KindExpense, Amount: decimal.NewFromInt(30), Schedule: Every(7), StartDate: "2024-01-03", Active: true},
		{ID: "salary", Kind: KindIncome, Amount: decimal.NewFromInt(2500), Schedule: Monthly(25, 1), StartDate: "2024-01-25", Active: true},
	}

	var log []Transaction
	for _, today := range []string{"2024-01-15", "2024-02-10", "2024-02-10", "2024-04-30", "2024-04-01"} {
		res := s.Apply(rules, log, today)
		rules, log = res.Rules, res.Transactions
	}

	keys := make(map[string]bool)
	for _, tx := range log {
		key := tx.RecurringID + "|" + tx.Date
		if keys[key] {
			t.Fatalf("duplicate occurrence %s", key)
		}
		keys[key] = true
	}
	if len(log) != 121+4+17+4 {
		t.Errorf("expected %d occurrences, got %d", 121+4+17+4, len(log))
	}
}

func TestApplyMonthlyClamp(t *testing.T) {
	tests := []struct {
		name  string
		start string
		today string
		want  []string
	}{
		{
			name:  "leap year",
			start: "2024-01-31",
			today: "2024-04-30",
			want:  []string{"2024-04-30", "2024-03-31", "2024-02-29", "2024-01-31"},
		},
		{
			name:  "common year",
			start: "2023-01-31",
			today: "2023-03-31",
			want:  []string{"2023-03-31", "2023-02-28", "2023-01-31"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rent()
			r.StartDate = tt.start
			res := NewScheduler(WithIDFunc(counterIDs())).Apply([]RecurrenceRule{r}, nil, tt.today)
			if got := dates(res.Transactions); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected dates %v, got %v", tt.want, got)
			}
			for _, tx := range res.Transactions {
				if !tx.Amount.Equal(decimal.RequireFromString("950")) {
					t.Errorf("expected amount rounded to 950, got %s", tx.Amount)
				}
			}
		})
	}
}

func TestApplyInactiveRule(t *testing.T) {
	r := daily("paused", "2020-01-01")
	r.Active = false
	r.NextDate = "2020-06-01"

	res := ApplyRecurring([]RecurrenceRule{r}, nil, "2024-01-01")
	if res.Added != 0 || len(res.Transactions) != 0 {
		t.Fatalf("expected no occurrences for inactive rule, got %d", res.Added)
	}
	if res.Rules[0].NextDate != "2020-06-01" {
		t.Errorf("expected cursor to stay at 2020-06-01, got %s", res.Rules[0].NextDate)
	}
}

func TestApplySkipsExistingOccurrence(t *testing.T) {
	existing := []Transaction{
		{ID: "old", Kind: KindExpense, Amount: decimal.NewFromInt(3), Date: "2024-03-02", RecurringID: "coffee"},
	}
	res := NewScheduler(WithIDFunc(counterIDs())).Apply([]RecurrenceRule{daily("coffee", "2024-03-01")}, existing, "2024-03-03")

	if res.Added != 2 {
		t.Fatalf("expected 2 new occurrences, got %d", res.Added)
	}
	want := []string{"2024-03-03", "2024-03-01", "2024-03-02"}
	if got := dates(res.Transactions); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if res.Rules[0].NextDate != "2024-03-04" {
		t.Errorf("expected cursor 2024-03-04, got %s", res.Rules[0].NextDate)
	}
}

func TestApplyFutureRule(t *testing.T) {
	r := daily("later", "2024-05-01")
	res := ApplyRecurring([]RecurrenceRule{r}, nil, "2024-04-01")
	if res.Added != 0 {
		t.Fatalf("expected nothing for a future rule, got %d", res.Added)
	}
	if res.Rules[0].NextDate != "2024-05-01" {
		t.Errorf("expected cursor initialized to start date, got %q", res.Rules[0].NextDate)
	}
}

func TestApplyDefaultsMissingDates(t *testing.T) {
	r := daily("fresh", "")
	r.NextDate = "garbage"

	res := NewScheduler(WithIDFunc(counterIDs())).Apply([]RecurrenceRule{r}, nil, "2024-04-01")
	if res.Added != 1 || res.Transactions[0].Date != "2024-04-01" {
		t.Fatalf("expected one occurrence on the reference date, got %v", dates(res.Transactions))
	}
	if res.Rules[0].NextDate != "2024-04-02" {
		t.Errorf("expected cursor 2024-04-02, got %s", res.Rules[0].NextDate)
	}
}

func TestApplyNonAdvancingSchedule(t *testing.T) {
	r := daily("broken", "2024-01-01")
	r.Schedule = Schedule{Type: "yearly"}

	res := NewScheduler(WithIDFunc(counterIDs())).Apply([]RecurrenceRule{r}, nil, "2024-02-01")
	if res.Added != 1 {
		t.Fatalf("expected a single occurrence before the guard stops, got %d", res.Added)
	}
	if res.Rules[0].NextDate != "2024-01-01" {
		t.Errorf("expected cursor to stay at 2024-01-01, got %s", res.Rules[0].NextDate)
	}
	if len(res.Truncated) != 0 {
		t.Errorf("non-advancing schedule is not a truncation, got %v", res.Truncated)
	}

	again := NewScheduler().Apply(res.Rules, res.Transactions, "2024-02-01")
	if again.Added != 0 {
		t.Errorf("expected stuck rule not to duplicate, added %d", again.Added)
	}
}

func TestApplyIterationCeiling(t *testing.T) {
	s := NewScheduler(WithIDFunc(counterIDs()), WithMaxIterations(5))
	rules := []RecurrenceRule{daily("coffee", "2024-03-01"), daily("tea", "2024-03-10")}

	res := s.Apply(rules, nil, "2024-03-11")
	if res.Added != 5+2 {
		t.Fatalf("expected 7 occurrences, got %d", res.Added)
	}
	if !reflect.DeepEqual(res.Truncated, []string{"coffee"}) {
		t.Errorf("expected coffee to be truncated, got %v", res.Truncated)
	}
	if res.Rules[0].NextDate != "2024-03-06" {
		t.Errorf("expected truncated cursor 2024-03-06, got %s", res.Rules[0].NextDate)
	}

	res = s.Apply(res.Rules, res.Transactions, "2024-03-11")
	if res.Added != 5 {
		t.Fatalf("expected catch-up to resume with 5 more, got %d", res.Added)
	}
	res = s.Apply(res.Rules, res.Transactions, "2024-03-11")
	if res.Added != 1 || len(res.Truncated) != 0 {
		t.Fatalf("expected final occurrence without truncation, got %d %v", res.Added, res.Truncated)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	rules := []RecurrenceRule{rent()}
	log := []Transaction{{ID: "a", Kind: KindIncome, Amount: decimal.NewFromInt(5), Date: "2024-01-02"}}
	rulesBefore := append([]RecurrenceRule(nil), rules...)
	logBefore := append([]Transaction(nil), log...)

	ApplyRecurring(rules, log, "2024-06-30")

	if !reflect.DeepEqual(rules, rulesBefore) {
		t.Error("rules were modified")
	}
	if !reflect.DeepEqual(log, logBefore) {
		t.Error("transactions were modified")
	}
}

func TestApplyInvalidReferenceDate(t *testing.T) {
	log := []Transaction{{ID: "a", Date: "2024-01-02"}}
	res := ApplyRecurring([]RecurrenceRule{daily("coffee", "2024-01-01")}, log, "tomorrow")
	if res.Added != 0 || len(res.Transactions) != 1 {
		t.Fatalf("expected untouched log, got %+v", res)
	}
	if res.Rules[0].NextDate != "" {
		t.Errorf("expected cursor untouched, got %q", res.Rules[0].NextDate)
	}
}

func TestPreviewRecurring(t *testing.T) {
	rules := []RecurrenceRule{
		rent(),
		{ID: "gym", Title: "Gym", Kind: KindExpense, Amount: decimal.NewFromInt(30), Schedule: Every(14), StartDate: "2024-01-01", NextDate: "2024-01-29", Active: true},
		{ID: "off", Kind: KindExpense, Amount: decimal.NewFromInt(1), Schedule: Every(1), StartDate: "2024-01-01", Active: false},
	}
	before := append([]RecurrenceRule(nil), rules...)

	got := PreviewRecurring(rules, "2024-02-01", "2024-03-31")

	want := []struct{ id, date string }{
		{"gym", "2024-02-12"},
		{"gym", "2024-02-26"},
		{"rent", "2024-02-29"},
		{"gym", "2024-03-11"},
		{"gym", "2024-03-25"},
		{"rent", "2024-03-31"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d preview rows, got %d: %v", len(want), len(got), dates(got))
	}
	for i, w := range want {
		if got[i].RecurringID != w.id || got[i].Date != w.date {
			t.Errorf("row %d: expected %s on %s, got %s on %s", i, w.id, w.date, got[i].RecurringID, got[i].Date)
		}
		if !got[i].IsPreview {
			t.Errorf("row %d: expected IsPreview", i)
		}
		if got[i].ID != PreviewID(w.id, w.date) || !strings.HasPrefix(got[i].ID, "prev_") {
			t.Errorf("row %d: unexpected id %q", i, got[i].ID)
		}
	}
	if !reflect.DeepEqual(rules, before) {
		t.Error("preview modified the rules")
	}
}

func TestPreviewRecurringEdgeCases(t *testing.T) {
	if got := PreviewRecurring([]RecurrenceRule{daily("a", "2024-01-01")}, "", "2024-01-05"); got != nil {
		t.Errorf("expected nil for empty from date, got %v", got)
	}
	if got := PreviewRecurring([]RecurrenceRule{daily("a", "2024-01-01")}, "2024-01-05", "2024-01-01"); len(got) != 0 {
		t.Errorf("expected nothing for an inverted range, got %v", dates(got))
	}

	stuck := daily("stuck", "2024-01-01")
	stuck.Schedule = Schedule{}
	if got := PreviewRecurring([]RecurrenceRule{stuck}, "2024-02-01", "2024-02-10"); len(got) != 0 {
		t.Errorf("expected a schedule that cannot reach the window to emit nothing, got %v", dates(got))
	}

	stuck.StartDate = "2024-02-03"
	if got := PreviewRecurring([]RecurrenceRule{stuck}, "2024-02-01", "2024-02-10"); len(got) != 1 {
		t.Errorf("expected a single row for a non-advancing schedule, got %v", dates(got))
	}

	noStart := daily("new", "")
	got := PreviewRecurring([]RecurrenceRule{noStart}, "2024-02-01", "2024-02-03")
	if want := []string{"2024-02-01", "2024-02-02", "2024-02-03"}; !reflect.DeepEqual(dates(got), want) {
		t.Errorf("expected missing start to default to from date, got %v", dates(got))
	}
}
