package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lessonflow/core"
	"github.com/trezcool/lessonflow/core/calendar"
	"github.com/trezcool/lessonflow/core/planner"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

var errInvalidParams = errors.New("invalid parameters")

// intParam parses a required integer from a path param (param=true) or a query param.
func intParam(ctx echo.Context, name string, param bool) (int, error) {
	s := ctx.QueryParam(name)
	if param {
		s = ctx.Param(name)
	}
	if s == "" {
		return 0, core.NewValidationError(errInvalidParams, core.FieldError{Field: name, Error: "this field is required"})
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, core.NewValidationError(errInvalidParams, core.FieldError{Field: name, Error: "must be an integer"})
	}
	return v, nil
}

func dateParam(ctx echo.Context, name string) (time.Time, error) {
	s := ctx.QueryParam(name)
	if s == "" {
		return time.Time{}, core.NewValidationError(errInvalidParams, core.FieldError{Field: name, Error: "this field is required"})
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return time.Time{}, core.NewValidationError(errInvalidParams, core.FieldError{Field: name, Error: "must be a date formatted as YYYY-MM-DD"})
	}
	return d, nil
}

// bindWeek reads the year, term and week query params.
func bindWeek(ctx echo.Context) (calendar.Week, error) {
	var w calendar.Week
	var err error
	if w.Year, err = intParam(ctx, "year", false); err != nil {
		return calendar.Week{}, err
	}
	if w.Term, err = intParam(ctx, "term", false); err != nil {
		return calendar.Week{}, err
	}
	if w.Number, err = intParam(ctx, "week", false); err != nil {
		return calendar.Week{}, err
	}
	return w, nil
}

func weekdayParam(ctx echo.Context) (time.Weekday, error) {
	weekday, err := planner.ParseWeekday(ctx.Param("weekday"))
	if err != nil {
		return 0, core.NewValidationError(errInvalidParams, core.FieldError{Field: "weekday", Error: err.Error()})
	}
	return weekday, nil
}
