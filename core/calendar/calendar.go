package calendar

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trezcool/lessonflow/core"
)

type (
	// Calendar answers term/week questions over the registered term dates.
	// Reads are lock free: every write builds a new table and swaps it in whole.
	Calendar struct {
		mu    sync.Mutex // serializes writers
		table atomic.Value
	}

	// termTable maps a calendar year to its terms; never mutated once stored.
	termTable map[int]*yearTerms

	yearTerms struct {
		terms []SchoolTerm // sorted by Number, which is also date order
		weeks []int        // weeks[i] is the week count of terms[i]
	}
)

func New() *Calendar {
	c := &Calendar{}
	c.table.Store(termTable{})
	return c
}

func (c *Calendar) load() termTable {
	return c.table.Load().(termTable)
}

// Load replaces all the registered term dates. Nothing is replaced if any year is invalid.
func (c *Calendar) Load(dates map[int][]SchoolTerm) error {
	tbl := make(termTable, len(dates))
	for year, terms := range dates {
		yt, err := prepareYear(year, terms)
		if err != nil {
			return err
		}
		tbl[year] = yt
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.table.Store(tbl)
	return nil
}

// SetTermDates replaces the whole term list of a year.
func (c *Calendar) SetTermDates(year int, terms []SchoolTerm) error {
	yt, err := prepareYear(year, terms)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.load()
	tbl := make(termTable, len(old)+1)
	for y, t := range old {
		tbl[y] = t
	}
	tbl[year] = yt
	c.table.Store(tbl)
	return nil
}

// ValidateTermDates checks terms the way SetTermDates does, without registering them.
func ValidateTermDates(year int, terms []SchoolTerm) error {
	_, err := prepareYear(year, terms)
	return err
}

func prepareYear(year int, terms []SchoolTerm) (*yearTerms, error) {
	invalid := func(err error, t SchoolTerm) error {
		return core.NewValidationError(err, core.FieldError{
			Field: "terms",
			Error: fmt.Sprintf("term %d: %s", t.Number, err),
		})
	}

	if len(terms) == 0 {
		return nil, core.NewValidationError(ErrNoTerms, core.FieldError{Field: "terms", Error: ErrNoTerms.Error()})
	}

	sorted := make([]SchoolTerm, 0, len(terms))
	seen := make(map[int]bool, len(terms))
	for _, t := range terms {
		if t.Number < MinTermNumber || t.Number > MaxTermNumber {
			return nil, ErrTermOutOfRange
		}
		if seen[t.Number] {
			return nil, invalid(ErrDuplicateTerm, t)
		}
		seen[t.Number] = true

		t.Start, t.End = core.Date(t.Start), core.Date(t.End)
		if t.End.Before(t.Start) {
			return nil, invalid(ErrTermEndsBeforeStart, t)
		}
		if t.Start.Year() != year {
			return nil, invalid(ErrTermYearMismatch, t)
		}
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	yt := &yearTerms{terms: sorted, weeks: make([]int, len(sorted))}
	for i, t := range sorted {
		if i > 0 && !t.Start.After(sorted[i-1].End) {
			return nil, invalid(ErrOverlappingTerms, t)
		}
		yt.weeks[i] = t.Weeks()
	}
	return yt, nil
}

// Years returns the registered years in ascending order.
func (c *Calendar) Years() []int {
	tbl := c.load()
	years := make([]int, 0, len(tbl))
	for y := range tbl {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Terms returns a copy of the terms registered for year.
func (c *Calendar) Terms(year int) ([]SchoolTerm, error) {
	yt, err := c.load().year(year)
	if err != nil {
		return nil, err
	}
	terms := make([]SchoolTerm, len(yt.terms))
	copy(terms, yt.terms)
	return terms, nil
}

func (c *Calendar) WeeksInTerm(year, term int) (int, error) {
	_, weeks, err := c.load().term(year, term)
	return weeks, err
}

// GetTermNumber returns the term a date belongs to. A date in a holiday gap belongs to the upcoming term,
// a date before the first term to the first term and a date after the last term to the last term.
func (c *Calendar) GetTermNumber(date time.Time) (int, error) {
	date = core.Date(date)
	yt, err := c.load().year(date.Year())
	if err != nil {
		return 0, err
	}
	return yt.termAt(date).Number, nil
}

// GetWeekNumber returns the 1-based week of the term starting on weekStart, which must be a Monday
// or the first day of the term.
func (c *Calendar) GetWeekNumber(year, term int, weekStart time.Time) (int, error) {
	t, weeks, err := c.load().term(year, term)
	if err != nil {
		return 0, err
	}
	weekStart = core.Date(weekStart)
	if weekStart.Weekday() != time.Monday && !weekStart.Equal(t.Start) {
		return 0, ErrNotMonday
	}

	week := t.weekOf(weekStart)
	if week < 1 || week > weeks {
		return 0, ErrWeekOutOfRange
	}
	return week, nil
}

// GetWeekNumberForDate returns the week number of the week containing date.
func (c *Calendar) GetWeekNumberForDate(date time.Time) (int, error) {
	w, err := c.Resolve(date)
	if err != nil {
		return 0, err
	}
	return w.Number, nil
}

// Resolve returns the term week containing date.
func (c *Calendar) Resolve(date time.Time) (Week, error) {
	return c.load().resolve(core.Date(date))
}

// GetWeekStart returns the first day of a term week.
func (c *Calendar) GetWeekStart(year, term, week int) (time.Time, error) {
	w, err := c.load().week(year, term, week)
	if err != nil {
		return time.Time{}, err
	}
	return w.Start, nil
}

// IsSchoolHoliday reports whether date lies outside every term of its (registered) year.
func (c *Calendar) IsSchoolHoliday(date time.Time) (bool, error) {
	date = core.Date(date)
	yt, err := c.load().year(date.Year())
	if err != nil {
		return false, err
	}
	for _, t := range yt.terms {
		if t.Contains(date) {
			return false, nil
		}
	}
	return true, nil
}

// Holidays returns the gaps between Jan 1, the terms and Dec 31 of year.
func (c *Calendar) Holidays(year int) ([]SchoolHoliday, error) {
	yt, err := c.load().year(year)
	if err != nil {
		return nil, err
	}

	var holidays []SchoolHoliday
	cursor := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, t := range yt.terms {
		if t.Start.After(cursor) {
			holidays = append(holidays, SchoolHoliday{Start: cursor, End: t.Start.AddDate(0, 0, -1)})
		}
		cursor = t.End.AddDate(0, 0, 1)
	}
	if yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC); !cursor.After(yearEnd) {
		holidays = append(holidays, SchoolHoliday{Start: cursor, End: yearEnd})
	}
	return holidays, nil
}

// termTable lookups

func (tbl termTable) year(year int) (*yearTerms, error) {
	yt, ok := tbl[year]
	if !ok {
		return nil, ErrTermDatesNotFound
	}
	return yt, nil
}

func (tbl termTable) term(year, number int) (SchoolTerm, int, error) {
	if number < MinTermNumber || number > MaxTermNumber {
		return SchoolTerm{}, 0, ErrTermOutOfRange
	}
	yt, err := tbl.year(year)
	if err != nil {
		return SchoolTerm{}, 0, err
	}
	i := yt.index(number)
	if i < 0 {
		return SchoolTerm{}, 0, ErrTermNotFound
	}
	return yt.terms[i], yt.weeks[i], nil
}

func (tbl termTable) week(year, term, number int) (Week, error) {
	t, weeks, err := tbl.term(year, term)
	if err != nil {
		return Week{}, err
	}
	if number < 1 || number > weeks {
		return Week{}, ErrWeekOutOfRange
	}
	return newWeek(year, t, number), nil
}

func (tbl termTable) resolve(date time.Time) (Week, error) {
	if yt, ok := tbl[date.Year()]; ok {
		for _, t := range yt.terms {
			if t.Contains(date) {
				return newWeek(date.Year(), t, t.weekOf(date)), nil
			}
		}
	}

	// outside any term: only the days sharing a week with a term resolve
	monday := mondayOf(date)
	yt, err := tbl.year(monday.Year())
	if err != nil {
		return Week{}, err
	}
	t := yt.termAt(monday)
	if mondayOf(t.Start).After(monday) {
		return Week{}, ErrWeekOutOfRange
	}
	return tbl.week(monday.Year(), t.Number, t.weekOf(monday))
}

func (yt *yearTerms) index(number int) int {
	for i, t := range yt.terms {
		if t.Number == number {
			return i
		}
	}
	return -1
}

func (yt *yearTerms) termAt(date time.Time) SchoolTerm {
	for _, t := range yt.terms {
		if !date.After(t.End) {
			return t
		}
	}
	return yt.terms[len(yt.terms)-1]
}

func newWeek(year int, t SchoolTerm, number int) Week {
	return Week{
		Year:   year,
		Term:   t.Number,
		Number: number,
		Start:  t.weekStart(number),
	}
}
