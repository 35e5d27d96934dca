package leave

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
)

// LedgerPolicy holds the accrual constants of the leave ledger.
type LedgerPolicy struct {
	MonthlyAccrual  int
	CarryForwardCap int
	MonthlyCap      int
}

// DefaultLedgerPolicy accrues one day a month (twelve a year), carries at most
// one unused day into the next month and lets at most two days be used in a month.
func DefaultLedgerPolicy() LedgerPolicy {
	return LedgerPolicy{MonthlyAccrual: 1, CarryForwardCap: 1, MonthlyCap: 2}
}

type ledgerDay struct {
	month     int
	candidate bool
	order     time.Time
	appID     string
	date      time.Time
	leaveType leave.LeaveType
}

// Ledger derives leave balances from an employee's join date and approved
// applications. Nothing is accumulated: every balance is recomputed from the
// first relevant month, so identical inputs always yield identical rows.
type Ledger struct {
	policy     LedgerPolicy
	employeeID string
	joinMonth  int
	days       []ledgerDay
}

// NewLedger builds a ledger over the approved applications in apps; other
// statuses never affect the balance. When two applications claim the same
// date only the first in ledger order counts it.
func NewLedger(policy LedgerPolicy, employeeID string, joinDate time.Time, apps []leave.LeaveApplication) *Ledger {
	join := calendar.DateOf(joinDate)
	l := &Ledger{
		policy:     policy,
		employeeID: employeeID,
		joinMonth:  calendar.MonthIndex(join.Year(), join.Month()),
	}
	for _, app := range apps {
		if app.Status != leave.StatusApproved {
			continue
		}
		l.add(app, false)
	}
	l.sortDays()
	return l
}

func (l *Ledger) add(app leave.LeaveApplication, candidate bool) {
	for _, d := range app.LeaveDates {
		d = calendar.DateOf(d)
		l.days = append(l.days, ledgerDay{
			month:     calendar.MonthIndex(d.Year(), d.Month()),
			candidate: candidate,
			order:     app.LedgerOrder(),
			appID:     app.ID,
			date:      d,
			leaveType: app.LeaveType,
		})
	}
}

func (l *Ledger) sortDays() {
	sort.SliceStable(l.days, func(i, j int) bool {
		a, b := l.days[i], l.days[j]
		if a.month != b.month {
			return a.month < b.month
		}
		if a.candidate != b.candidate {
			return !a.candidate
		}
		if !a.order.Equal(b.order) {
			return a.order.Before(b.order)
		}
		if a.appID != b.appID {
			return a.appID < b.appID
		}
		return a.date.Before(b.date)
	})

	seen := make(map[time.Time]bool, len(l.days))
	kept := l.days[:0]
	for _, d := range l.days {
		if seen[d.date] {
			continue
		}
		seen[d.date] = true
		kept = append(kept, d)
	}
	l.days = kept
}

// Balance returns the ledger row for the given month.
func (l *Ledger) Balance(year int, month time.Month) leave.LeaveBalance {
	var last leave.LeaveBalance
	l.walk(calendar.MonthIndex(year, month), func(b leave.LeaveBalance) {
		last = b
	})
	return last
}

// History returns every row from the first month the ledger knows about up
// to and including the given month.
func (l *Ledger) History(year int, month time.Month) []leave.LeaveBalance {
	var rows []leave.LeaveBalance
	l.walk(calendar.MonthIndex(year, month), func(b leave.LeaveBalance) {
		rows = append(rows, b)
	})
	return rows
}

func (l *Ledger) walk(target int, visit func(leave.LeaveBalance)) {
	start := l.joinMonth
	if len(l.days) > 0 && l.days[0].month < start {
		start = l.days[0].month
	}
	if target < start {
		start = target
	}

	remaining := 0
	next := 0
	for m := start; m <= target; m++ {
		b := leave.LeaveBalance{
			EmployeeID:  l.employeeID,
			Year:        m / 12,
			Month:       time.Month(m%12 + 1),
			LeaveUsed:   map[leave.LeaveType]int{},
			Allocations: []leave.DayAllocation{},
		}
		if m >= l.joinMonth {
			b.MonthlyCredit = l.policy.MonthlyAccrual
		}
		b.CarriedForward = min(l.policy.CarryForwardCap, remaining)
		b.Forfeited = remaining - b.CarriedForward

		available := b.Available()
		for ; next < len(l.days) && l.days[next].month == m; next++ {
			d := l.days[next]
			paid := d.leaveType.DrawsOnBalance() &&
				b.PaidDays < l.policy.MonthlyCap &&
				b.PaidDays < available
			if paid {
				b.PaidDays++
			} else {
				b.LOPDays++
			}
			b.LeaveUsed[d.leaveType]++
			b.Allocations = append(b.Allocations, leave.DayAllocation{
				Date:          d.date,
				ApplicationID: d.appID,
				LeaveType:     d.leaveType,
				Paid:          paid,
			})
		}
		sort.SliceStable(b.Allocations, func(i, j int) bool {
			return b.Allocations[i].Date.Before(b.Allocations[j].Date)
		})

		b.BalanceRemaining = available - b.PaidDays
		remaining = b.BalanceRemaining
		visit(b)
	}
}

// Split is the paid and loss-of-pay day count of one application.
type Split struct {
	PaidDays int
	LOPDays  int
}

// Splits returns the split of every application in the ledger, walked to the
// last month that holds a leave day.
func (l *Ledger) Splits() map[string]Split {
	out := map[string]Split{}
	if len(l.days) == 0 {
		return out
	}
	l.walk(l.days[len(l.days)-1].month, func(b leave.LeaveBalance) {
		for _, a := range b.Allocations {
			sp := out[a.ApplicationID]
			if a.Paid {
				sp.PaidDays++
			} else {
				sp.LOPDays++
			}
			out[a.ApplicationID] = sp
		}
	})
	return out
}

// Repricing is the change a candidate causes to an application already in
// the ledger, typically by using the carry-forward a later month relied on.
type Repricing struct {
	ApplicationID string
	Before        Split
	After         Split
}

// Quote is the paid and loss-of-pay split a candidate application would get
// if it were approved now, and the applications it would reprice.
type Quote struct {
	PaidDays    int
	LOPDays     int
	Allocations []leave.DayAllocation
	Repriced    []Repricing
}

// Quote allocates candidate after every application already in the ledger
// without mutating the ledger.
func (l *Ledger) Quote(candidate leave.LeaveApplication) Quote {
	trial := &Ledger{
		policy:     l.policy,
		employeeID: l.employeeID,
		joinMonth:  l.joinMonth,
		days:       append([]ledgerDay(nil), l.days...),
	}
	trial.add(candidate, true)
	trial.sortDays()

	q := Quote{Allocations: []leave.DayAllocation{}}
	if len(candidate.LeaveDates) == 0 {
		return q
	}
	last := calendar.DateOf(candidate.LeaveDates[0])
	for _, d := range candidate.LeaveDates {
		if d.After(last) {
			last = calendar.DateOf(d)
		}
	}
	for _, b := range trial.History(last.Year(), last.Month()) {
		for _, a := range b.Allocations {
			if a.ApplicationID != candidate.ID {
				continue
			}
			q.Allocations = append(q.Allocations, a)
			if a.Paid {
				q.PaidDays++
			} else {
				q.LOPDays++
			}
		}
	}

	before, after := l.Splits(), trial.Splits()
	for id, was := range before {
		if now := after[id]; now != was {
			q.Repriced = append(q.Repriced, Repricing{ApplicationID: id, Before: was, After: now})
		}
	}
	sort.Slice(q.Repriced, func(i, j int) bool {
		return q.Repriced[i].ApplicationID < q.Repriced[j].ApplicationID
	})
	return q
}
