package calendar

// NextWeek returns the week following w, moving to the next term (or the first term of the next year) after
// the last week of a term. It fails with ErrNoMoreTermDates when no later term is registered.
func (c *Calendar) NextWeek(w Week) (Week, error) {
	tbl := c.load()
	_, weeks, err := tbl.term(w.Year, w.Term)
	if err != nil {
		return Week{}, err
	}
	if w.Number < 1 || w.Number > weeks {
		return Week{}, ErrWeekOutOfRange
	}
	if w.Number < weeks {
		return tbl.week(w.Year, w.Term, w.Number+1)
	}

	year, t, err := tbl.nextTerm(w.Year, w.Term)
	if err != nil {
		return Week{}, err
	}
	return newWeek(year, t, 1), nil
}

// PreviousWeek returns the week preceding w, moving to the last week of the previous term when needed.
func (c *Calendar) PreviousWeek(w Week) (Week, error) {
	tbl := c.load()
	_, weeks, err := tbl.term(w.Year, w.Term)
	if err != nil {
		return Week{}, err
	}
	if w.Number < 1 || w.Number > weeks {
		return Week{}, ErrWeekOutOfRange
	}
	if w.Number > 1 {
		return tbl.week(w.Year, w.Term, w.Number-1)
	}

	year, t, err := tbl.previousTerm(w.Year, w.Term)
	if err != nil {
		return Week{}, err
	}
	return newWeek(year, t, t.Weeks()), nil
}

// WeekInNextTerm returns the same week number in the next term, clamped to that term's last week.
func (c *Calendar) WeekInNextTerm(w Week) (Week, error) {
	tbl := c.load()
	if _, err := tbl.week(w.Year, w.Term, w.Number); err != nil {
		return Week{}, err
	}
	year, t, err := tbl.nextTerm(w.Year, w.Term)
	if err != nil {
		return Week{}, err
	}
	return newWeek(year, t, min(w.Number, t.Weeks())), nil
}

// WeekInPreviousTerm returns the same week number in the previous term, clamped to that term's last week.
func (c *Calendar) WeekInPreviousTerm(w Week) (Week, error) {
	tbl := c.load()
	if _, err := tbl.week(w.Year, w.Term, w.Number); err != nil {
		return Week{}, err
	}
	year, t, err := tbl.previousTerm(w.Year, w.Term)
	if err != nil {
		return Week{}, err
	}
	return newWeek(year, t, min(w.Number, t.Weeks())), nil
}

// nextTerm never rolls over to an unregistered year.
func (tbl termTable) nextTerm(year, number int) (int, SchoolTerm, error) {
	yt, err := tbl.year(year)
	if err != nil {
		return 0, SchoolTerm{}, err
	}
	if i := yt.index(number); i >= 0 && i+1 < len(yt.terms) {
		return year, yt.terms[i+1], nil
	}
	if next, ok := tbl[year+1]; ok {
		return year + 1, next.terms[0], nil
	}
	return 0, SchoolTerm{}, ErrNoMoreTermDates
}

func (tbl termTable) previousTerm(year, number int) (int, SchoolTerm, error) {
	yt, err := tbl.year(year)
	if err != nil {
		return 0, SchoolTerm{}, err
	}
	if i := yt.index(number); i > 0 {
		return year, yt.terms[i-1], nil
	}
	if prev, ok := tbl[year-1]; ok {
		return year - 1, prev.terms[len(prev.terms)-1], nil
	}
	return 0, SchoolTerm{}, ErrNoMoreTermDates
}
