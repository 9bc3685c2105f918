package controller

import (
	"net/url"
	"strings"

	"pazuzu-registry/internal/dto"
	apperrors "pazuzu-registry/internal/pkg/errors"
	"pazuzu-registry/internal/pkg/serverutils"
	"pazuzu-registry/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFeatureController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	ListPaged(ctx *fiber.Ctx) error
	Sorted(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Approve(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type featureController struct {
	service service.IFeatureService
}

func NewFeatureController(service service.IFeatureService) IFeatureController {
	return &featureController{service: service}
}

func (c *featureController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/features")
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get("/paged", c.ListPaged)
	h.Get("/sorted", c.Sorted)
	h.Get("/:name", c.Show)
	h.Put("/:name", c.Update)
	h.Put("/:name/approve", c.Approve)
	h.Delete("/:name", c.Delete)
}

func (c *featureController) List(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.UserContext(), ctx.Query("name"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list features", res))
}

func (c *featureController) ListPaged(ctx *fiber.Ctx) error {
	query := dto.ListFeaturesPagedQuery{Offset: 0, Limit: 50}
	if err := ctx.QueryParser(&query); err != nil {
		return apperrors.ErrValidation("invalid query: " + err.Error())
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.service.ListPaged(ctx.UserContext(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list features", res))
}

// Sorted takes a comma separated list: /features/sorted?names=app,tool
func (c *featureController) Sorted(ctx *fiber.Ctx) error {
	var names []string
	for _, n := range strings.Split(ctx.Query("names"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	res, err := c.service.Sorted(ctx.UserContext(), names)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success sort features", res))
}

func (c *featureController) Show(ctx *fiber.Ctx) error {
	name, err := nameParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.UserContext(), name)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show feature", res))
}

func (c *featureController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateFeatureRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.ErrValidation("invalid request body: " + err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Success create feature", res))
}

func (c *featureController) Update(ctx *fiber.Ctx) error {
	name, err := nameParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateFeatureRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.ErrValidation("invalid request body: " + err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.UserContext(), name, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update feature", res))
}

func (c *featureController) Approve(ctx *fiber.Ctx) error {
	name, err := nameParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Approve(ctx.UserContext(), name)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success approve feature", res))
}

func (c *featureController) Delete(ctx *fiber.Ctx) error {
	name, err := nameParam(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), name); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete feature", nil))
}

func nameParam(ctx *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(ctx.Params("name"))
	if err != nil {
		return "", apperrors.ErrValidation("invalid feature name in path")
	}
	return name, nil
}
