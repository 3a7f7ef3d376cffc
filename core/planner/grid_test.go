package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dayTemplate is [Lesson, Lesson, Break, Lesson, Lesson, Break, Lesson, Lesson], start periods 1 to 8.
func dayTemplate() []TemplatePeriod {
	types := []PeriodType{Lesson, Lesson, Break, Lesson, Lesson, Break, Lesson, Lesson}
	periods := make([]TemplatePeriod, 0, len(types))
	start := time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC)
	for i, typ := range types {
		end := start.Add(45 * time.Minute)
		periods = append(periods, TemplatePeriod{
			Type:        typ,
			StartPeriod: i + 1,
			StartTime:   start.Format("15:04"),
			EndTime:     end.Format("15:04"),
		})
		start = end
	}
	return periods
}

func lessonCell(startPeriod int) GridCell {
	return GridCell{
		Type:            Lesson,
		StartPeriod:     startPeriod,
		NumberOfPeriods: 1,
		RowSpans:        []RowSpan{{Start: startPeriod + 1, End: startPeriod + 2}},
	}
}

func TestGridCell_SetRowSpans(t *testing.T) {
	periods := dayTemplate()

	tests := []struct {
		name        string
		cell        GridCell
		oldDuration int
		newDuration int
		want        []RowSpan
		wantErr     error
	}{
		{name: "duration 3 splits at the break", cell: lessonCell(1), oldDuration: 1, newDuration: 3, want: []RowSpan{{2, 4}, {5, 6}}},
		{name: "duration 6 spans three runs", cell: lessonCell(1), oldDuration: 1, newDuration: 6, want: []RowSpan{{2, 4}, {5, 7}, {8, 10}}},
		{name: "duration 2 fits the first run", cell: lessonCell(1), oldDuration: 1, newDuration: 2, want: []RowSpan{{2, 4}}},
		{name: "shrink", cell: lessonCell(1), oldDuration: 6, newDuration: 1, want: []RowSpan{{2, 3}}},
		{name: "from second period", cell: lessonCell(2), oldDuration: 1, newDuration: 2, want: []RowSpan{{3, 4}, {5, 6}}},
		{name: "from fifth period", cell: lessonCell(5), oldDuration: 1, newDuration: 3, want: []RowSpan{{6, 7}, {8, 10}}},
		{name: "leading break skipped", cell: lessonCell(3), oldDuration: 1, newDuration: 2, want: []RowSpan{{5, 7}}},
		{
			name: "non-instructional time", cell: GridCell{Type: Nit, StartPeriod: 7, NumberOfPeriods: 1},
			oldDuration: 1, newDuration: 2, want: []RowSpan{{8, 10}},
		},
		{name: "same duration", cell: lessonCell(1), oldDuration: 2, newDuration: 2, want: []RowSpan{{2, 3}}},
		{
			name: "break", cell: GridCell{Type: Break, StartPeriod: 3, NumberOfPeriods: 1, RowSpans: []RowSpan{{4, 5}}},
			oldDuration: 1, newDuration: 2, want: []RowSpan{{4, 5}}, wantErr: ErrBreakRowSpans,
		},
		{name: "exceeds template", cell: lessonCell(1), oldDuration: 1, newDuration: 7, want: []RowSpan{{2, 3}}, wantErr: ErrDurationExceedsTemplate},
		{name: "exceeds from last period", cell: lessonCell(8), oldDuration: 1, newDuration: 2, want: []RowSpan{{9, 10}}, wantErr: ErrDurationExceedsTemplate},
		{name: "zero duration", cell: lessonCell(1), oldDuration: 1, newDuration: 0, want: []RowSpan{{2, 3}}, wantErr: ErrDurationOutOfRange},
		{name: "unknown start period", cell: lessonCell(9), oldDuration: 1, newDuration: 2, want: []RowSpan{{10, 11}}, wantErr: ErrStartPeriodNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := tt.cell
			err := cell.SetRowSpans(tt.oldDuration, tt.newDuration, periods)
			if err != tt.wantErr {
				t.Errorf("SetRowSpans() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.want, cell.RowSpans)
			if tt.wantErr == nil && tt.oldDuration != tt.newDuration {
				assert.Equal(t, tt.newDuration, cell.NumberOfPeriods)
			} else {
				assert.Equal(t, tt.cell.NumberOfPeriods, cell.NumberOfPeriods)
			}
		})
	}
}

func TestGridCell_SetRowSpans_coversDuration(t *testing.T) {
	periods := dayTemplate()

	for start := 1; start <= len(periods); start++ {
		if periods[start-1].IsBreak() {
			continue
		}
		for duration := 1; ; duration++ {
			cell := lessonCell(start)
			if err := cell.SetRowSpans(0, duration, periods); err != nil {
				assert.Equal(t, ErrDurationExceedsTemplate, err)
				break
			}

			rows := 0
			for i, rs := range cell.RowSpans {
				rows += rs.Rows()
				if i > 0 {
					assert.Greater(t, rs.Start, cell.RowSpans[i-1].End, "spans must be ascending and separated by a break")
				}
			}
			assert.Equal(t, duration, rows, "start %d duration %d: %v", start, duration, cell.RowSpans)
		}
	}
}

func TestLayoutDay(t *testing.T) {
	layout := LayoutDay(DayTemplate{Weekday: time.Tuesday, Periods: dayTemplate()})

	assert.Equal(t, time.Tuesday, layout.Weekday)
	require.Len(t, layout.Cells, 8)
	for i, c := range layout.Cells {
		assert.Equal(t, i+1, c.StartPeriod)
		assert.Equal(t, 1, c.NumberOfPeriods)
		assert.Equal(t, []RowSpan{{Start: i + 2, End: i + 3}}, c.RowSpans)
	}
	assert.Equal(t, Break, layout.Cells[2].Type)
}

func startPeriods(l DayLayout) []int {
	starts := make([]int, 0, len(l.Cells))
	for _, c := range l.Cells {
		starts = append(starts, c.StartPeriod)
	}
	return starts
}

func TestDayLayout_ChangeDuration(t *testing.T) {
	periods := dayTemplate()

	t.Run("absorbs covered periods", func(t *testing.T) {
		layout := LayoutDay(DayTemplate{Weekday: time.Monday, Periods: periods})
		require.NoError(t, layout.ChangeDuration(1, 3, periods))

		assert.Equal(t, []int{1, 3, 5, 6, 7, 8}, startPeriods(layout))
		cell, _ := layout.Cell(1)
		assert.Equal(t, []RowSpan{{2, 4}, {5, 6}}, cell.RowSpans)
		assert.Equal(t, 3, cell.NumberOfPeriods)
	})

	t.Run("frees periods when shrinking", func(t *testing.T) {
		layout := LayoutDay(DayTemplate{Weekday: time.Monday, Periods: periods})
		require.NoError(t, layout.ChangeDuration(1, 6, periods))
		assert.Equal(t, []int{1, 3, 6}, startPeriods(layout))

		require.NoError(t, layout.ChangeDuration(1, 1, periods))
		assert.Equal(t, LayoutDay(DayTemplate{Weekday: time.Monday, Periods: periods}), layout)
	})

	t.Run("replaces a colliding cell", func(t *testing.T) {
		layout := LayoutDay(DayTemplate{Weekday: time.Monday, Periods: periods})
		require.NoError(t, layout.ChangeDuration(4, 2, periods))
		assert.Equal(t, []int{1, 2, 3, 4, 6, 7, 8}, startPeriods(layout))

		require.NoError(t, layout.ChangeDuration(1, 3, periods))
		assert.Equal(t, []int{1, 3, 5, 6, 7, 8}, startPeriods(layout))
		cell, _ := layout.Cell(5)
		assert.Equal(t, 1, cell.NumberOfPeriods)
		assert.Equal(t, []RowSpan{{6, 7}}, cell.RowSpans)
	})

	t.Run("keeps independent cells", func(t *testing.T) {
		layout := LayoutDay(DayTemplate{Weekday: time.Monday, Periods: periods})
		require.NoError(t, layout.ChangeDuration(7, 2, periods))
		require.NoError(t, layout.ChangeDuration(1, 2, periods))

		assert.Equal(t, []int{1, 3, 4, 5, 6, 7}, startPeriods(layout))
		cell, _ := layout.Cell(7)
		assert.Equal(t, []RowSpan{{8, 10}}, cell.RowSpans)
	})

	t.Run("replaces a cell that no longer fits the template", func(t *testing.T) {
		layout := LayoutDay(DayTemplate{Weekday: time.Monday, Periods: periods})
		layout.Cells = layout.Cells[:7]
		layout.Cells[6] = GridCell{Type: Lesson, StartPeriod: 7, NumberOfPeriods: 5, RowSpans: []RowSpan{{8, 10}}}

		require.NoError(t, layout.ChangeDuration(1, 2, periods))
		assert.Equal(t, []int{1, 3, 4, 5, 6, 7, 8}, startPeriods(layout))
		cell, _ := layout.Cell(7)
		assert.Equal(t, lessonCell(7), cell)
	})

	t.Run("errors leave the layout unchanged", func(t *testing.T) {
		layout := LayoutDay(DayTemplate{Weekday: time.Monday, Periods: periods})
		want := LayoutDay(DayTemplate{Weekday: time.Monday, Periods: periods})

		assert.Equal(t, ErrDurationExceedsTemplate, layout.ChangeDuration(1, 7, periods))
		assert.Equal(t, ErrBreakRowSpans, layout.ChangeDuration(3, 2, periods))
		assert.Equal(t, ErrCellNotFound, layout.ChangeDuration(9, 2, periods))
		assert.Equal(t, want, layout)
	})
}

func TestWeekTemplate_Day(t *testing.T) {
	tmpl := WeekTemplate{Periods: dayTemplate()}

	for _, d := range SchoolDays {
		day, err := tmpl.Day(d)
		require.NoError(t, err)
		assert.Equal(t, d, day.Weekday)
		assert.Len(t, day.Periods, 8)
	}
	_, err := tmpl.Day(time.Saturday)
	assert.Equal(t, ErrNotSchoolDay, err)
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Weekday
		wantErr bool
	}{
		{in: "monday", want: time.Monday},
		{in: " Friday ", want: time.Friday},
		{in: "wed", want: time.Wednesday},
		{in: "sunday", want: time.Sunday},
		{in: "mo", wantErr: true},
		{in: "funday", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseWeekday() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseWeekday() = %v, want %v", got, tt.want)
			}
		})
	}
}
