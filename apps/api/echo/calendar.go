package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lessonflow/core"
	"github.com/trezcool/lessonflow/core/calendar"
)

type (
	calendarApi struct {
		svc      *calendar.Service
		validate *validator.Validate
	}

	TermRequest struct {
		Number int    `json:"term" validate:"required"`
		Start  string `json:"start" validate:"required,isodate"`
		End    string `json:"end" validate:"required,isodate"`
	}

	TermDatesRequest struct {
		Terms []TermRequest `json:"terms" validate:"required,dive"`
	}

	TermResponse struct {
		Number int    `json:"term"`
		Start  string `json:"start"`
		End    string `json:"end"`
		Weeks  int    `json:"weeks"`
	}

	HolidayResponse struct {
		Start string `json:"start"`
		End   string `json:"end"`
		Days  int    `json:"days"`
	}

	WeekResponse struct {
		Year  int    `json:"year"`
		Term  int    `json:"term"`
		Week  int    `json:"week"`
		Start string `json:"start"`
	}

	ResolveResponse struct {
		WeekResponse
		Date      string `json:"date"`
		IsHoliday bool   `json:"is_holiday"`
	}
)

func registerCalendarAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *calendar.Service, validate *validator.Validate) {
	api := calendarApi{svc: svc, validate: validate}

	cg := g.Group("/calendar")
	cg.GET("/years", api.years)
	cg.GET("/years/:year/terms", api.terms)
	cg.PUT("/years/:year/terms", api.saveTerms, jwt, requireAdmin)
	cg.GET("/years/:year/holidays", api.holidays)
	cg.GET("/resolve", api.resolve)
	cg.GET("/week-start", api.weekStart)

	wg := cg.Group("/weeks")
	wg.GET("/next", api.navigate(svc.NextWeek))
	wg.GET("/previous", api.navigate(svc.PreviousWeek))
	wg.GET("/next-term", api.navigate(svc.WeekInNextTerm))
	wg.GET("/previous-term", api.navigate(svc.WeekInPreviousTerm))
}

func (req TermDatesRequest) terms() []calendar.SchoolTerm {
	terms := make([]calendar.SchoolTerm, 0, len(req.Terms))
	for _, t := range req.Terms {
		start, _ := core.ParseDate(t.Start) // checked by the isodate tag
		end, _ := core.ParseDate(t.End)
		terms = append(terms, calendar.SchoolTerm{Number: t.Number, Start: start, End: end})
	}
	return terms
}

func newWeekResponse(w calendar.Week) WeekResponse {
	return WeekResponse{Year: w.Year, Term: w.Term, Week: w.Number, Start: core.FormatDate(w.Start)}
}

func (api *calendarApi) termsResponse(year int) ([]TermResponse, error) {
	terms, err := api.svc.Terms(year)
	if err != nil {
		return nil, err
	}
	resp := make([]TermResponse, 0, len(terms))
	for _, t := range terms {
		resp = append(resp, TermResponse{
			Number: t.Number,
			Start:  core.FormatDate(t.Start),
			End:    core.FormatDate(t.End),
			Weeks:  t.Weeks(),
		})
	}
	return resp, nil
}

// Handlers

func (api *calendarApi) years(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"years": api.svc.Years()})
}

func (api *calendarApi) terms(ctx echo.Context) error {
	year, err := intParam(ctx, "year", true)
	if err != nil {
		return err
	}
	resp, err := api.termsResponse(year)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *calendarApi) saveTerms(ctx echo.Context) error {
	year, err := intParam(ctx, "year", true)
	if err != nil {
		return err
	}
	var data TermDatesRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TermDatesRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	if err = api.svc.SaveTermDates(ctx.Request().Context(), year, data.terms()); err != nil {
		return err
	}
	resp, err := api.termsResponse(year)
	if err != nil {
		return errors.Wrap(err, "getting saved terms")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *calendarApi) holidays(ctx echo.Context) error {
	year, err := intParam(ctx, "year", true)
	if err != nil {
		return err
	}
	holidays, err := api.svc.Holidays(year)
	if err != nil {
		return err
	}
	resp := make([]HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		resp = append(resp, HolidayResponse{Start: core.FormatDate(h.Start), End: core.FormatDate(h.End), Days: h.Days()})
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *calendarApi) resolve(ctx echo.Context) error {
	date, err := dateParam(ctx, "date")
	if err != nil {
		return err
	}
	w, err := api.svc.Resolve(date)
	if err != nil {
		return err
	}
	holiday, err := api.svc.IsSchoolHoliday(date)
	if err != nil && !core.IsNotFound(err) {
		return errors.Wrap(err, "checking school holiday")
	}
	return ctx.JSON(http.StatusOK, ResolveResponse{
		WeekResponse: newWeekResponse(w),
		Date:         core.FormatDate(date),
		IsHoliday:    holiday,
	})
}

func (api *calendarApi) weekStart(ctx echo.Context) error {
	w, err := bindWeek(ctx)
	if err != nil {
		return err
	}
	start, err := api.svc.GetWeekStart(w.Year, w.Term, w.Number)
	if err != nil {
		return err
	}
	w.Start = start
	return ctx.JSON(http.StatusOK, newWeekResponse(w))
}

func (api *calendarApi) navigate(move func(calendar.Week) (calendar.Week, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		w, err := bindWeek(ctx)
		if err != nil {
			return err
		}
		next, err := move(w)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, newWeekResponse(next))
	}
}
