package planner

// headerRows is the number of display rows above the first period.
const headerRows = 1

type (
	// run is a maximal sequence of consecutive template periods of the same kind (break or not),
	// as [first, last] indexes into the template.
	run struct {
		first, last int
		isBreak     bool
	}

	// span is a contiguous range of template indexes, [first, last], covered by a cell.
	span struct {
		first, last int
	}
)

// runs segments periods[from:] into maximal same-kind runs.
func runs(periods []TemplatePeriod, from int) []run {
	var rs []run
	for i := from; i < len(periods); i++ {
		isBreak := periods[i].IsBreak()
		if n := len(rs); n > 0 && rs[n-1].isBreak == isBreak {
			rs[n-1].last = i
			continue
		}
		rs = append(rs, run{first: i, last: i, isBreak: isBreak})
	}
	return rs
}

// indexOf returns the template index of the period with the given start period, or -1.
func indexOf(periods []TemplatePeriod, startPeriod int) int {
	for i, p := range periods {
		if p.StartPeriod == startPeriod {
			return i
		}
	}
	return -1
}

// lessonSpans walks the template from startPeriod and returns the spans covering `duration` instructional
// periods, one span per run: breaks end a span and are skipped.
func lessonSpans(periods []TemplatePeriod, startPeriod, duration int) ([]span, error) {
	if duration < 1 {
		return nil, ErrDurationOutOfRange
	}
	from := indexOf(periods, startPeriod)
	if from < 0 {
		return nil, ErrStartPeriodNotFound
	}

	var spans []span
	remaining := duration
	for _, r := range runs(periods, from) {
		if r.isBreak {
			continue
		}
		taken := min(r.last-r.first+1, remaining)
		spans = append(spans, span{first: r.first, last: r.first + taken - 1})
		if remaining -= taken; remaining == 0 {
			return spans, nil
		}
	}
	return nil, ErrDurationExceedsTemplate
}

// rowSpan translates a template span into display rows: template index i is row i+1+headerRows,
// and the end is exclusive.
func (s span) rowSpan() RowSpan {
	return RowSpan{Start: s.first + 1 + headerRows, End: s.last + 2 + headerRows}
}

// SetRowSpans recomputes the display rows of the cell after its duration changes from oldDuration to
// newDuration periods. On error the cell is left unchanged.
func (c *GridCell) SetRowSpans(oldDuration, newDuration int, periods []TemplatePeriod) error {
	if c.Type == Break {
		return ErrBreakRowSpans
	}
	if oldDuration == newDuration {
		return nil
	}

	spans, err := lessonSpans(periods, c.StartPeriod, newDuration)
	if err != nil {
		return err
	}
	rowSpans := make([]RowSpan, 0, len(spans))
	for _, s := range spans {
		rowSpans = append(rowSpans, s.rowSpan())
	}
	c.RowSpans = rowSpans
	c.NumberOfPeriods = newDuration
	return nil
}

// LayoutDay returns the initial grid of a day: one single period cell per template period.
func LayoutDay(day DayTemplate) DayLayout {
	layout := DayLayout{Weekday: day.Weekday, Cells: make([]GridCell, 0, len(day.Periods))}
	for i := range day.Periods {
		layout.Cells = append(layout.Cells, singleCell(day.Periods, i))
	}
	return layout
}

func singleCell(periods []TemplatePeriod, i int) GridCell {
	return GridCell{
		Type:            periods[i].Type,
		StartPeriod:     periods[i].StartPeriod,
		NumberOfPeriods: 1,
		RowSpans:        []RowSpan{span{first: i, last: i}.rowSpan()},
	}
}

// ChangeDuration changes the duration of the cell starting at startPeriod and re-flows the day: periods the
// cell now covers are absorbed, other cells are kept unless they collide with it, and freed periods get
// single period cells. On error the layout is left unchanged.
func (l *DayLayout) ChangeDuration(startPeriod, newDuration int, periods []TemplatePeriod) error {
	changed, err := l.Cell(startPeriod)
	if err != nil {
		return err
	}
	changed.RowSpans = append([]RowSpan(nil), changed.RowSpans...)
	if err = changed.SetRowSpans(changed.NumberOfPeriods, newDuration, periods); err != nil {
		return err
	}
	idxs, err := cellIndexes(periods, changed)
	if err != nil {
		return err
	}
	occupied := make(map[int]bool, len(periods))
	occupy(occupied, idxs)

	existing := make(map[int]GridCell, len(l.Cells))
	for _, c := range l.Cells {
		existing[c.StartPeriod] = c
	}

	cells := make([]GridCell, 0, len(periods))
	for i, p := range periods {
		if p.StartPeriod == changed.StartPeriod {
			cells = append(cells, changed)
			continue
		}
		if occupied[i] {
			continue
		}
		if c, ok := existing[p.StartPeriod]; ok {
			if idxs, ok := freeIndexes(occupied, periods, c); ok {
				occupy(occupied, idxs)
				cells = append(cells, c)
				continue
			}
		}
		cell := singleCell(periods, i)
		occupied[i] = true
		cells = append(cells, cell)
	}

	l.Cells = cells
	return nil
}

// cellIndexes returns the template indexes covered by c.
func cellIndexes(periods []TemplatePeriod, c GridCell) ([]int, error) {
	if c.Type == Break || c.NumberOfPeriods <= 1 {
		i := indexOf(periods, c.StartPeriod)
		if i < 0 {
			return nil, ErrStartPeriodNotFound
		}
		return []int{i}, nil
	}
	spans, err := lessonSpans(periods, c.StartPeriod, c.NumberOfPeriods)
	if err != nil {
		return nil, err
	}
	var idxs []int
	for _, s := range spans {
		for i := s.first; i <= s.last; i++ {
			idxs = append(idxs, i)
		}
	}
	return idxs, nil
}

// freeIndexes returns the template indexes covered by c when none of them is occupied.
func freeIndexes(occupied map[int]bool, periods []TemplatePeriod, c GridCell) ([]int, bool) {
	idxs, err := cellIndexes(periods, c)
	if err != nil {
		return nil, false
	}
	for _, i := range idxs {
		if occupied[i] {
			return nil, false
		}
	}
	return idxs, true
}

func occupy(occupied map[int]bool, idxs []int) {
	for _, i := range idxs {
		occupied[i] = true
	}
}
