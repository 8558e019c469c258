package budget

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultMaxIterations bounds how many schedule steps a single rule may take
// in one call. It covers more than 27 years of a daily rule.
const DefaultMaxIterations = 10000

// Scheduler materializes recurrence rules into transactions. The zero value
// is not usable; construct one with NewScheduler. A Scheduler is never
// modified after construction and may be shared between goroutines.
type Scheduler struct {
	maxIterations int
	newID         func() string
	defaults      Defaults
	log           zerolog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMaxIterations sets the per-rule iteration ceiling. Values below 1 are
// ignored.
func WithMaxIterations(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithIDFunc sets the generator used for ids of materialized transactions.
func WithIDFunc(f func() string) Option {
	return func(s *Scheduler) {
		if f != nil {
			s.newID = f
		}
	}
}

// WithDefaults sets the template values for blank rule fields.
func WithDefaults(d Defaults) Option {
	return func(s *Scheduler) {
		s.defaults = d.orBuiltin()
	}
}

// WithLogger sets the logger used to report truncated rules.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

// NewScheduler returns a Scheduler with uuid ids, the built-in defaults and
// a disabled logger, modified by opts.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		maxIterations: DefaultMaxIterations,
		newID:         uuid.NewString,
		defaults:      DefaultTemplate,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultScheduler = NewScheduler()

// Applied is the outcome of Scheduler.Apply. Transactions and Rules are new
// slices; the caller commits them by replacing its stored state.
type Applied struct {
	// Transactions is the full log with new occurrences prepended, the most
	// recently generated first.
	Transactions []Transaction
	// Rules holds every input rule in input order with its cursor advanced.
	Rules []RecurrenceRule
	// Added is the number of newly materialized occurrences.
	Added int
	// Truncated lists ids of rules that hit the iteration ceiling. Their
	// cursors still moved forward, so the next call resumes the catch-up.
	Truncated []string
}

// occurrenceIndex records which dates each rule has already produced.
type occurrenceIndex map[string]map[string]struct{}

func newOccurrenceIndex(log []Transaction) occurrenceIndex {
	idx := make(occurrenceIndex)
	for _, t := range log {
		if t.RecurringID != "" && t.Date != "" {
			idx.add(t.RecurringID, t.Date)
		}
	}
	return idx
}

func (idx occurrenceIndex) has(ruleID, date string) bool {
	_, ok := idx[ruleID][date]
	return ok
}

func (idx occurrenceIndex) add(ruleID, date string) {
	dates, ok := idx[ruleID]
	if !ok {
		dates = make(map[string]struct{})
		idx[ruleID] = dates
	}
	dates[date] = struct{}{}
}

// ApplyRecurring runs the default Scheduler. See Scheduler.Apply.
func ApplyRecurring(rules []RecurrenceRule, transactions []Transaction, today string) Applied {
	return defaultScheduler.Apply(rules, transactions, today)
}

// PreviewRecurring runs the default Scheduler. See Scheduler.Preview.
func PreviewRecurring(rules []RecurrenceRule, from, to string) []Transaction {
	return defaultScheduler.Preview(rules, from, to)
}

// Apply materializes every occurrence due on or before today that is not
// already in the log, and advances each active rule's cursor past today.
//
// An occurrence is identified by (rule id, date) and is looked up in the
// log passed in, so calling Apply again on its own output, or on the old
// state after a failed commit, adds nothing twice. Inactive rules are left
// alone apart from initializing an empty cursor. Neither input slice is
// modified.
func (s *Scheduler) Apply(rules []RecurrenceRule, transactions []Transaction, today string) Applied {
	res := Applied{
		Rules: slices.Clone(rules),
	}
	if res.Rules == nil {
		res.Rules = []RecurrenceRule{}
	}
	if !IsDate(today) {
		s.log.Warn().Str("today", today).Msg("invalid reference date, no rules applied")
		res.Transactions = slices.Clone(transactions)
		return res
	}

	seen := newOccurrenceIndex(transactions)
	var added []Transaction

	for i := range res.Rules {
		r := NormalizeRule(res.Rules[i], today, s.defaults)
		cursor := r.NextDate

		if r.Active && CompareDates(cursor, today) <= 0 {
			var n int
			var truncated bool
			cursor, n, truncated = s.walk(r, cursor, today, func(date string) {
				if seen.has(r.ID, date) {
					return
				}
				t := occurrence(r, date)
				t.ID = s.newID()
				added = append(added, t)
				seen.add(r.ID, date)
			})
			if truncated {
				res.Truncated = append(res.Truncated, r.ID)
				s.log.Warn().
					Str("rule_id", r.ID).
					Str("next_date", cursor).
					Int("max_iterations", s.maxIterations).
					Msg("recurrence catch-up cut off")
			}
			s.log.Debug().Str("rule_id", r.ID).Int("steps", n).Str("next_date", cursor).Msg("rule applied")
		}

		res.Rules[i].NextDate = cursor
	}

	res.Added = len(added)
	res.Transactions = make([]Transaction, 0, len(added)+len(transactions))
	for i := len(added) - 1; i >= 0; i-- {
		res.Transactions = append(res.Transactions, added[i])
	}
	res.Transactions = append(res.Transactions, transactions...)
	return res
}

// walk calls visit for every date from cursor up to and including until,
// stepping by r's schedule. It returns the first date after until, the
// number of steps taken, and whether the iteration ceiling stopped it. A
// step that does not move forward ends the walk at the current date.
func (s *Scheduler) walk(r RecurrenceRule, cursor, until string, visit func(date string)) (string, int, bool) {
	steps := 0
	for CompareDates(cursor, until) <= 0 {
		visit(cursor)

		next := r.Schedule.Next(cursor)
		if CompareDates(next, cursor) <= 0 {
			return cursor, steps, false
		}
		cursor = next

		steps++
		if steps >= s.maxIterations {
			return cursor, steps, CompareDates(cursor, until) <= 0
		}
	}
	return cursor, steps, false
}

// PreviewID is the synthetic id of a preview row. Real transaction ids are
// uuids and never carry this prefix.
func PreviewID(ruleID, date string) string {
	return "prev_" + ruleID + "_" + date
}

// Preview lists the occurrences every active rule would produce between
// from and to inclusive, starting at each rule's cursor. Rules and the log
// are not touched. Rows have IsPreview set and an id from PreviewID, and are
// ordered by date then rule id.
func (s *Scheduler) Preview(rules []RecurrenceRule, from, to string) []Transaction {
	if !IsDate(from) || !IsDate(to) {
		return nil
	}

	var out []Transaction
	for _, r0 := range rules {
		if !r0.Active {
			continue
		}
		r := NormalizeRule(r0, from, s.defaults)

		// Fast-forward to from without emitting.
		cursor := r.NextDate
		if CompareDates(cursor, from) < 0 {
			cursor, _, _ = s.walk(r, cursor, AddDays(from, -1), func(string) {})
		}
		if CompareDates(cursor, from) < 0 {
			// The schedule could not reach the window.
			continue
		}

		s.walk(r, cursor, to, func(date string) {
			t := occurrence(r, date)
			t.ID = PreviewID(r.ID, date)
			t.IsPreview = true
			out = append(out, t)
		})
	}

	slices.SortStableFunc(out, func(a, b Transaction) int {
		if c := CompareDates(a.Date, b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.RecurringID, b.RecurringID)
	})
	return out
}
