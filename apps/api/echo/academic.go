package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edusuite/honoris/core/academic"
)

type academicApi struct {
	svc *academic.Service
}

func registerAcademicAPI(g *echo.Group, svc *academic.Service) {
	api := academicApi{svc: svc}

	ag := g.Group("/academic")
	ag.GET("/levels", api.queryLevels)
	ag.GET("/levels/:id/scale", api.retrieveScale)
	ag.GET("/levels/:id/periods", api.queryPeriods)
	ag.POST("/levels/:id/periods", api.createPeriod)
}

// Handlers

func (api *academicApi) queryLevels(ctx echo.Context) error {
	levels, err := api.svc.Levels(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, levels)
}

func (api *academicApi) retrieveScale(ctx echo.Context) error {
	scale, err := api.svc.ScaleForLevel(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, scale)
}

func (api *academicApi) queryPeriods(ctx echo.Context) error {
	periods, err := api.svc.GradingPeriodsByLevel(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, periods)
}

func (api *academicApi) createPeriod(ctx echo.Context) error {
	var data academic.NewGradingPeriod
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGradingPeriod")
	}
	data.LevelID = ctx.Param("id")

	p, err := api.svc.CreateGradingPeriod(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, p)
}
