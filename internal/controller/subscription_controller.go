package controller

import (
	"context"

	"eventhub-accounting-be/internal/dto"
	"eventhub-accounting-be/internal/pkg/serverutils"
	"eventhub-accounting-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISubscriptionController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
}

type subscriptionController struct {
	service service.SubscriptionService
}

func NewSubscriptionController(service service.SubscriptionService) ISubscriptionController {
	return &subscriptionController{service: service}
}

func (c *subscriptionController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/subscriptions")

	// Public
	h.Get("/plans", c.GetPlans)

	// Authenticated
	h.Get("/me", jwtMiddleware, c.GetCurrent)
	h.Post("/trial", jwtMiddleware, c.StartTrial)
	h.Post("/purchase", jwtMiddleware, c.Purchase)
	h.Get("/upgrade/quote", jwtMiddleware, c.QuoteUpgrade)
	h.Post("/upgrade", jwtMiddleware, c.Upgrade)
	h.Post("/renew", jwtMiddleware, c.Renew)
}

// @Summary List active subscription plans
// @Tags Subscription
// @Produce json
// @Success 200 {object} []dto.PlanResponse
// @Router /api/subscriptions/plans [get]
func (c *subscriptionController) GetPlans(ctx *fiber.Ctx) error {
	plans, err := c.service.GetPlans(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plans retrieved", plans))
}

// @Summary Current subscription with this month's usage
// @Tags Subscription
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SubscriptionResponse
// @Router /api/subscriptions/me [get]
func (c *subscriptionController) GetCurrent(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetCurrent(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription retrieved", res))
}

func (c *subscriptionController) StartTrial(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.StartTrial(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Trial started", res))
}

// @Summary Price an upgrade without applying it
// @Tags Subscription
// @Security BearerAuth
// @Produce json
// @Param plan_id query string true "Target plan"
// @Success 200 {object} dto.UpgradeQuoteResponse
// @Router /api/subscriptions/upgrade/quote [get]
func (c *subscriptionController) QuoteUpgrade(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	var req dto.UpgradeQuoteRequest
	if err := ctx.QueryParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid plan_id"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.QuoteUpgrade(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Upgrade quote", res))
}

func (c *subscriptionController) Purchase(ctx *fiber.Ctx) error {
	return c.change(ctx, c.service.Purchase, "Subscription purchased")
}

func (c *subscriptionController) Upgrade(ctx *fiber.Ctx) error {
	return c.change(ctx, c.service.Upgrade, "Subscription upgraded")
}

func (c *subscriptionController) Renew(ctx *fiber.Ctx) error {
	return c.change(ctx, c.service.Renew, "Subscription renewed")
}

type changeFunc func(ctx context.Context, userId uuid.UUID, req *dto.SubscriptionChangeRequest) (*dto.SubscriptionChangeResponse, error)

func (c *subscriptionController) change(ctx *fiber.Ctx, apply changeFunc, message string) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	var req dto.SubscriptionChangeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := apply(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	if res.Pending {
		return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Awaiting payment confirmation", res))
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}
