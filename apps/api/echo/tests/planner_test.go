package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/lessonflow/apps/api/echo"
	"github.com/trezcool/lessonflow/core/planner"
)

func newTemplate(name string) planner.NewTemplate {
	period := func(typ planner.PeriodType, start int, from, to string) planner.TemplatePeriod {
		return planner.TemplatePeriod{Type: typ, StartPeriod: start, StartTime: from, EndTime: to}
	}
	return planner.NewTemplate{
		Name: name,
		Periods: []planner.TemplatePeriod{
			period(planner.Lesson, 1, "08:00", "08:45"),
			period(planner.Lesson, 2, "08:45", "09:30"),
			period(planner.Break, 3, "09:30", "09:50"),
			period(planner.Lesson, 4, "09:50", "10:35"),
		},
	}
}

func createTemplate(t *testing.T, app testApp, name string) planner.WeekTemplate {
	tmpl, err := app.plnSvc.CreateTemplate(context.Background(), newTemplate(name))
	require.NoError(t, err)
	return tmpl
}

func Test_plannerApi_templates(t *testing.T) {
	app := setup(t)
	token := app.token(t, false)

	beta := createTemplate(t, app, "beta")
	alpha := createTemplate(t, app, "alpha")

	app.run(t, []httpTest{
		{name: "auth required", path: "/v1/planner/templates", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "bad token", path: "/v1/planner/templates", token: "not.a.jwt",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{name: "query", path: "/v1/planner/templates", token: token, wantData: marchallObj(t, []planner.WeekTemplate{alpha, beta})},
		{
			name: "query ordered", path: "/v1/planner/templates?ordering=-name", token: token,
			wantData: marchallObj(t, []planner.WeekTemplate{beta, alpha}),
		},
		{
			name: "query (bad ordering)", path: "/v1/planner/templates?ordering=secret", token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"ordering":"unknown field secret"}`),
		},
		{name: "retrieve", path: "/v1/planner/templates/" + alpha.ID, token: token, wantData: marchallObj(t, alpha)},
		{
			name: "retrieve (unknown)", path: "/v1/planner/templates/missing", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "week template not found"}),
		},
		{
			name: "create (duplicate name)", method: http.MethodPost, path: "/v1/planner/templates", token: token,
			body:     marchallObj(t, newTemplate("Alpha")),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"name":"a week template with this name already exists"}`),
		},
		{
			name: "create (invalid)", method: http.MethodPost, path: "/v1/planner/templates", token: token,
			body:     []byte(`{"name":"","periods":[]}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"this field is required","periods":"periods must contain at least 1 item"}`),
		},
		{
			name: "update (unknown)", method: http.MethodPut, path: "/v1/planner/templates/missing", token: token,
			body:     marchallObj(t, newTemplate("gamma")),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "week template not found"}),
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/planner/templates/" + beta.ID, token: token, wantCode: http.StatusNoContent},
		{
			name: "delete (again)", method: http.MethodDelete, path: "/v1/planner/templates/" + beta.ID, token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "week template not found"}),
		},
	})

	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/planner/templates", token, marchallObj(t, newTemplate(" gamma ")))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var tmpl planner.WeekTemplate
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tmpl))
		assert.NotEmpty(t, tmpl.ID)
		assert.Equal(t, "gamma", tmpl.Name)
		assert.Len(t, tmpl.Periods, 4)
	})

	t.Run("update", func(t *testing.T) {
		nt := newTemplate("alpha v2")
		nt.Periods = nt.Periods[:2]
		req, rec := newAuthRequest(http.MethodPut, "/v1/planner/templates/"+alpha.ID, token, marchallObj(t, nt))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var tmpl planner.WeekTemplate
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tmpl))
		assert.Equal(t, alpha.ID, tmpl.ID)
		assert.Equal(t, "alpha v2", tmpl.Name)
		assert.Len(t, tmpl.Periods, 2)
	})
}

func Test_plannerApi_layouts(t *testing.T) {
	app := setup(t)
	token := app.token(t, false)
	tmpl := createTemplate(t, app, "standard")
	path := "/v1/planner/templates/" + tmpl.ID + "/days/"

	day, err := tmpl.Day(time.Monday)
	require.NoError(t, err)
	initial := planner.LayoutDay(day)

	changed := planner.LayoutDay(day)
	require.NoError(t, changed.ChangeDuration(2, 2, day.Periods))

	duration := func(startPeriod, n int) []byte {
		return marchallObj(t, DurationRequest{StartPeriod: startPeriod, Duration: n})
	}

	app.run(t, []httpTest{
		{name: "initial layout", path: path + "monday", token: token, wantData: marchallObj(t, initial)},
		{
			name: "weekend", path: path + "saturday", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "day templates only exist for Monday to Friday"}),
		},
		{
			name: "bad weekday", path: path + "someday", token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"weekday":"invalid weekday \"someday\""}`),
		},
		{
			name: "change duration", method: http.MethodPost, path: path + "mon/duration", token: token,
			body: duration(2, 2), wantData: marchallObj(t, changed),
		},
		{name: "stored layout", path: path + "Monday", token: token, wantData: marchallObj(t, changed)},
		{name: "other days untouched", path: path + "tuesday", token: token, wantData: marchallObj(t, planner.DayLayout{
			Weekday: time.Tuesday, Cells: initial.Cells,
		})},
		{
			name: "break cell", method: http.MethodPost, path: path + "monday/duration", token: token, body: duration(3, 2),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "row spans of a break cannot be changed"}),
		},
		{
			name: "exceeds template", method: http.MethodPost, path: path + "monday/duration", token: token, body: duration(1, 4),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "duration exceeds day template"}),
		},
		{
			name: "zero duration", method: http.MethodPost, path: path + "monday/duration", token: token, body: duration(1, 0),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "duration must be at least 1 period"}),
		},
		{
			name: "unknown cell", method: http.MethodPost, path: path + "monday/duration", token: token, body: duration(4, 1),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "grid cell not found"}),
		},
		{
			name: "unknown template", method: http.MethodPost, path: "/v1/planner/templates/missing/days/monday/duration",
			token: token, body: duration(1, 1),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "week template not found"}),
		},
	})
}
