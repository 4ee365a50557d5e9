package echoapi

import (
	"bytes"
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/honor"
	"github.com/edusuite/honoris/core/student"
)

type honorApi struct {
	svc *honor.Service
}

func registerHonorAPI(g *echo.Group, svc *honor.Service) {
	api := honorApi{svc: svc}

	hg := g.Group("/honors")
	hg.GET("/types", api.queryTypes)
	hg.POST("/criteria", api.createCriterion)
	hg.GET("/criteria", api.queryCriteria)
	hg.POST("/generate", api.generate)
	hg.POST("/recalculate", api.recalculate)
	hg.GET("/rankings", api.rankings)
	hg.GET("/distribution", api.distribution)
	hg.GET("/export", api.export)

	rg := hg.Group("/results")
	rg.GET("", api.queryResults)
	rg.GET("/:id", api.retrieveResult)
	rg.POST("/:id/approve", api.approve)
	rg.POST("/:id/reject", api.reject)
	rg.POST("/:id/override", api.override)
	rg.POST("/:id/revoke", api.revoke)
	rg.POST("/:id/restore", api.restore)
}

type (
	GenerateRequest struct {
		LevelID    string `json:"level_id" validate:"required"`
		SchoolYear string `json:"school_year"`
		Section    string `json:"section"`
		Department string `json:"department"`
		Course     string `json:"course"`
	}

	RecalculateRequest struct {
		StudentID  string `json:"student_id" validate:"required"`
		LevelID    string `json:"level_id" validate:"required"`
		SchoolYear string `json:"school_year" validate:"required,schoolyear"`
	}

	DecisionRequest struct {
		Actor string `json:"actor" validate:"required"`
	}

	OverrideRequest struct {
		HonorTypeID string `json:"honor_type_id" validate:"required"`
		Actor       string `json:"actor" validate:"required"`
		Reason      string `json:"reason" validate:"required"`
	}
)

func (r *GenerateRequest) Validate() error    { return core.Validate.Struct(r) }
func (r *RecalculateRequest) Validate() error { return core.Validate.Struct(r) }
func (r *DecisionRequest) Validate() error    { return core.Validate.Struct(r) }
func (r *OverrideRequest) Validate() error    { return core.Validate.Struct(r) }

// Handlers

func (api *honorApi) queryTypes(ctx echo.Context) error {
	types, err := api.svc.Types(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, types)
}

func (api *honorApi) createCriterion(ctx echo.Context) error {
	var data honor.NewCriterion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCriterion")
	}

	c, err := api.svc.CreateCriterion(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *honorApi) queryCriteria(ctx echo.Context) error {
	levelID := ctx.QueryParam("level")
	if levelID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "level query param is required")
	}

	criteria, err := api.svc.CriteriaForLevel(ctx.Request().Context(), levelID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, criteria)
}

func (api *honorApi) generate(ctx echo.Context) error {
	var data GenerateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	filter := student.QueryFilter{
		Section:    data.Section,
		Department: data.Department,
		Course:     data.Course,
	}
	summary, err := api.svc.Generate(ctx.Request().Context(), data.LevelID, data.SchoolYear, filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *honorApi) recalculate(ctx echo.Context) error {
	var data RecalculateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecalculateRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	quals, err := api.svc.Recalculate(ctx.Request().Context(), data.StudentID, data.LevelID, data.SchoolYear)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, quals)
}

func (api *honorApi) rankings(ctx echo.Context) error {
	levelID := ctx.QueryParam("level")
	if levelID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "level query param is required")
	}

	ranked, err := api.svc.Rank(
		ctx.Request().Context(), levelID, ctx.QueryParam("year"), boolQueryParam(ctx, "include_inactive"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ranked)
}

func (api *honorApi) distribution(ctx echo.Context) error {
	levelID := ctx.QueryParam("level")
	if levelID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "level query param is required")
	}

	counts, err := api.svc.Distribution(ctx.Request().Context(), levelID, ctx.QueryParam("year"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *honorApi) export(ctx echo.Context) error {
	levelID := ctx.QueryParam("level")
	if levelID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "level query param is required")
	}

	rows, err := api.svc.ExportRows(
		ctx.Request().Context(), levelID, ctx.QueryParam("year"), boolQueryParam(ctx, "include_inactive"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = honor.WriteCSV(&buf, rows); err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="honor_roll.csv"`)
	return ctx.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

func (api *honorApi) queryResults(ctx echo.Context) error {
	filter := honor.ResultFilter{
		LevelID:         ctx.QueryParam("level"),
		SchoolYear:      ctx.QueryParam("year"),
		StudentID:       ctx.QueryParam("student"),
		HonorTypeID:     ctx.QueryParam("type"),
		IncludeInactive: boolQueryParam(ctx, "include_inactive"),
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	results, err := api.svc.Results(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *honorApi) retrieveResult(ctx echo.Context) error {
	r, err := api.svc.ResultByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *honorApi) approve(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Approve)
}

func (api *honorApi) reject(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Reject)
}

func (api *honorApi) decide(ctx echo.Context, fn func(c context.Context, id, actor string) (honor.Result, error)) error {
	var data DecisionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DecisionRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	r, err := fn(ctx.Request().Context(), ctx.Param("id"), data.Actor)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *honorApi) override(ctx echo.Context) error {
	var data OverrideRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to OverrideRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	r, err := api.svc.Override(ctx.Request().Context(), ctx.Param("id"), data.HonorTypeID, data.Actor, data.Reason)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *honorApi) revoke(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Revoke)
}

func (api *honorApi) restore(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Restore)
}
