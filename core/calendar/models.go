package calendar

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lessonflow/core"
)

const (
	MinTermNumber = 1
	MaxTermNumber = 4

	daysPerWeek = 7
)

var (
	// errors
	ErrTermDatesNotFound = core.NewNotFoundError("term dates not found")
	ErrTermNotFound      = core.NewNotFoundError("term not found")
	ErrTermOutOfRange    = core.NewOutOfRangeError("term number must be between 1 and 4")
	ErrWeekOutOfRange    = core.NewOutOfRangeError("week number out of range")
	ErrNotMonday         = core.NewOutOfRangeError("week start must be a Monday")
	ErrNoMoreTermDates   = core.NewOutOfRangeError("no more term dates")

	// term dates validation errors
	ErrNoTerms             = errors.New("at least one term is required")
	ErrDuplicateTerm       = errors.New("duplicate term number")
	ErrTermEndsBeforeStart = errors.New("term ends before it starts")
	ErrTermYearMismatch    = errors.New("term does not start in the given year")
	ErrOverlappingTerms    = errors.New("terms overlap")
)

type (
	// SchoolTerm is one of the (up to) 4 terms of a calendar year. Start and End are inclusive calendar dates.
	SchoolTerm struct {
		Number int
		Start  time.Time
		End    time.Time
	}

	// SchoolHoliday is an inclusive date range that lies outside any term.
	SchoolHoliday struct {
		Start time.Time
		End   time.Time
	}

	// Week identifies a Monday based week within a term.
	Week struct {
		Year   int
		Term   int
		Number int
		Start  time.Time
	}
)

func (t SchoolTerm) Contains(date time.Time) bool {
	return !date.Before(t.Start) && !date.After(t.End)
}

// Weeks is the number of (possibly partial) Monday based weeks the term spans.
func (t SchoolTerm) Weeks() int {
	return t.weekOf(t.End)
}

// weekOf returns the week of the term containing date. Weeks run Monday to Sunday, the first one being the
// week of the term's first day.
func (t SchoolTerm) weekOf(date time.Time) int {
	return floorDiv(daysBetween(mondayOf(t.Start), mondayOf(date)), daysPerWeek) + 1
}

// weekStart returns the first school day of a term week: its Monday, or the term start for week 1.
func (t SchoolTerm) weekStart(number int) time.Time {
	start := mondayOf(t.Start).AddDate(0, 0, daysPerWeek*(number-1))
	if start.Before(t.Start) {
		return t.Start
	}
	return start
}

func (h SchoolHoliday) Days() int {
	return daysBetween(h.Start, h.End) + 1
}

// daysBetween returns the number of days from a to b; a and b must be UTC midnight dates.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// floorDiv rounds towards negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mondayOf returns the Monday of the week containing date; Sunday belongs to the preceding Monday.
func mondayOf(date time.Time) time.Time {
	if date.Weekday() == time.Sunday {
		return date.AddDate(0, 0, -6)
	}
	return date.AddDate(0, 0, -int(date.Weekday()-time.Monday))
}
