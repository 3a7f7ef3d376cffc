package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/lessonflow/core/planner"
)

type (
	plannerApi struct {
		svc *planner.Service
	}

	DurationRequest struct {
		StartPeriod int `json:"start_period"`
		Duration    int `json:"duration"`
	}
)

func registerPlannerAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *planner.Service) {
	api := plannerApi{svc: svc}

	tg := g.Group("/planner/templates", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create)

	// detail endpoints
	dg := tg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/days/:weekday", api.dayLayout)
	dg.POST("/days/:weekday/duration", api.changeDuration)
}

// Handlers

func (api *plannerApi) query(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	tmpls, err := api.svc.QueryTemplates(ctx.Request().Context(), ord.Orderings)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tmpls)
}

func (api *plannerApi) create(ctx echo.Context) error {
	var data planner.NewTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTemplate")
	}
	tmpl, err := api.svc.CreateTemplate(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tmpl)
}

func (api *plannerApi) retrieve(ctx echo.Context) error {
	tmpl, err := api.svc.GetTemplate(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tmpl)
}

func (api *plannerApi) update(ctx echo.Context) error {
	var data planner.NewTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTemplate")
	}
	tmpl, err := api.svc.UpdateTemplate(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tmpl)
}

func (api *plannerApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteTemplate(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *plannerApi) dayLayout(ctx echo.Context) error {
	weekday, err := weekdayParam(ctx)
	if err != nil {
		return err
	}
	layout, err := api.svc.GetDayLayout(ctx.Request().Context(), ctx.Param("id"), weekday)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, layout)
}

func (api *plannerApi) changeDuration(ctx echo.Context) error {
	weekday, err := weekdayParam(ctx)
	if err != nil {
		return err
	}
	var data DurationRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DurationRequest")
	}

	layout, err := api.svc.ChangeDuration(ctx.Request().Context(), ctx.Param("id"), weekday, data.StartPeriod, data.Duration)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, layout)
}
