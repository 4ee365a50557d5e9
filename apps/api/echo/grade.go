package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/grade"
)

type gradeApi struct {
	svc *grade.Service
}

func registerGradeAPI(g *echo.Group, svc *grade.Service) {
	api := gradeApi{svc: svc}

	gg := g.Group("/grades")
	gg.POST("", api.create)
	gg.GET("", api.query)
	gg.POST("/submit", api.submit)
	gg.GET("/summary", api.summary)
	gg.GET("/:id", api.retrieve)
	gg.PUT("/:id", api.update)
}

type SubmitRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

func (r *SubmitRequest) Validate() error { return core.Validate.Struct(r) }

// Handlers

func (api *gradeApi) create(ctx echo.Context) error {
	var data grade.NewStudentGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudentGrade")
	}

	g, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *gradeApi) query(ctx echo.Context) error {
	filter := grade.QueryFilter{
		StudentID:  ctx.QueryParam("student"),
		LevelID:    ctx.QueryParam("level"),
		SchoolYear: ctx.QueryParam("year"),
		PeriodID:   ctx.QueryParam("period"),
	}
	grades, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	g, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gradeApi) update(ctx echo.Context) error {
	var data grade.UpdateStudentGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudentGrade")
	}

	g, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gradeApi) submit(ctx echo.Context) error {
	var data SubmitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.Submit(ctx.Request().Context(), data.IDs...); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradeApi) summary(ctx echo.Context) error {
	studentID := ctx.QueryParam("student")
	levelID := ctx.QueryParam("level")
	schoolYear := ctx.QueryParam("year")
	if studentID == "" || levelID == "" || schoolYear == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "student, level and year query params are required")
	}

	summary, err := api.svc.Aggregate(ctx.Request().Context(), studentID, levelID, schoolYear)
	if err != nil {
		if errors.Cause(err) == grade.ErrNoData {
			return echo.NewHTTPError(http.StatusNotFound, "no grade data for scope")
		}
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}
