package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lessonflow/core"
)

// PeriodType is the kind of a period: a lesson, a break or non-instructional time.
type PeriodType string

const (
	Lesson PeriodType = "LESSON"
	Break  PeriodType = "BREAK"
	Nit    PeriodType = "NIT"
)

var (
	// errors
	ErrTemplateNotFound        = core.NewNotFoundError("week template not found")
	ErrLayoutNotFound          = core.NewNotFoundError("day layout not found")
	ErrCellNotFound            = core.NewNotFoundError("grid cell not found")
	ErrStartPeriodNotFound     = core.NewNotFoundError("start period not found in day template")
	ErrNotSchoolDay            = core.NewOutOfRangeError("day templates only exist for Monday to Friday")
	ErrDurationOutOfRange      = core.NewOutOfRangeError("duration must be at least 1 period")
	ErrDurationExceedsTemplate = core.NewOutOfRangeError("duration exceeds day template")
	ErrBreakRowSpans           = core.NewInvalidOperationError("row spans of a break cannot be changed")
	ErrTemplateChanged         = core.NewInvalidOperationError("week template changed while its layout was being edited")

	ErrTemplateNameExists = errors.New("a week template with this name already exists")
)

type (
	// TemplatePeriod is one slot of a day template.
	TemplatePeriod struct {
		Type        PeriodType  `json:"type" validate:"required,oneof=LESSON BREAK"`
		StartPeriod int         `json:"start_period" validate:"min=1"`
		Name        null.String `json:"name"`
		StartTime   string      `json:"start_time" validate:"required,wallclock"`
		EndTime     string      `json:"end_time" validate:"required,wallclock"`
	}

	// WeekTemplate holds the ordered periods shared by every school day of the week.
	WeekTemplate struct {
		ID        string           `json:"id"`
		Name      string           `json:"name"`
		Periods   []TemplatePeriod `json:"periods"`
		CreatedAt time.Time        `json:"created_at"`
		UpdatedAt time.Time        `json:"updated_at"`
	}

	// DayTemplate wraps the shared period list for one weekday.
	DayTemplate struct {
		Weekday time.Weekday
		Periods []TemplatePeriod
	}

	// NewTemplate contains information needed to create or replace a WeekTemplate.
	NewTemplate struct {
		Name    string           `json:"name" validate:"required,max=100,alphanum_"`
		Periods []TemplatePeriod `json:"periods" validate:"required,min=1,dive"`
	}

	// RowSpan is a half-open [Start, End) range of display grid rows. Row 1 is the header row.
	RowSpan struct {
		Start int `json:"start"`
		End   int `json:"end"`
	}

	// GridCell is a period placed on the planner grid.
	GridCell struct {
		Type            PeriodType `json:"type"`
		StartPeriod     int        `json:"start_period"`
		NumberOfPeriods int        `json:"number_of_periods"`
		RowSpans        []RowSpan  `json:"row_spans"`
	}

	// DayLayout is the grid of one weekday of a WeekTemplate.
	DayLayout struct {
		Weekday time.Weekday `json:"weekday"`
		Cells   []GridCell   `json:"cells"`
	}
)

// Day returns the template of a school day.
func (tmpl WeekTemplate) Day(weekday time.Weekday) (DayTemplate, error) {
	if !IsSchoolDay(weekday) {
		return DayTemplate{}, ErrNotSchoolDay
	}
	return DayTemplate{Weekday: weekday, Periods: tmpl.Periods}, nil
}

func (p TemplatePeriod) IsBreak() bool {
	return p.Type == Break
}

func (rs RowSpan) Rows() int {
	return rs.End - rs.Start
}

func (rs RowSpan) String() string {
	return fmt.Sprintf("(%d,%d)", rs.Start, rs.End)
}

// Cell returns the cell starting at startPeriod.
func (l DayLayout) Cell(startPeriod int) (GridCell, error) {
	for _, c := range l.Cells {
		if c.StartPeriod == startPeriod {
			return c, nil
		}
	}
	return GridCell{}, ErrCellNotFound
}

// SchoolDays are the weekdays a template applies to.
var SchoolDays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

func IsSchoolDay(weekday time.Weekday) bool {
	return weekday >= time.Monday && weekday <= time.Friday
}

// ParseWeekday parses a weekday name ("monday", "Mon", ...).
func ParseWeekday(s string) (time.Weekday, error) {
	s = core.CleanString(s, true /* lower */)
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) == 3 && strings.HasPrefix(name, s)) {
			return d, nil
		}
	}
	return 0, core.NewOutOfRangeError(fmt.Sprintf("invalid weekday %q", s))
}
