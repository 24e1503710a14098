package controller

import (
	"eventhub-accounting-be/internal/dto"
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/serverutils"
	"eventhub-accounting-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	DistributeRevenue(ctx *fiber.Ctx) error
	GetDistributions(ctx *fiber.Ctx) error
	GetRevenueSummary(ctx *fiber.Ctx) error
	ResetUsageCounters(ctx *fiber.Ctx) error
	ExpireSubscriptions(ctx *fiber.Ctx) error
	ReconcileWallet(ctx *fiber.Ctx) error
}

type adminController struct {
	service service.IAdminService
}

func NewAdminController(service service.IAdminService) IAdminController {
	return &adminController{service: service}
}

func (c *adminController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/admin", jwtMiddleware, serverutils.RequireRole(string(entity.UserRoleAdmin)))

	// Revenue
	h.Post("/revenue/distribute", c.DistributeRevenue)
	h.Get("/revenue", c.GetDistributions)
	h.Get("/revenue/summary", c.GetRevenueSummary)

	// Subscriptions
	h.Post("/subscriptions/reset-counters", c.ResetUsageCounters)
	h.Post("/subscriptions/expire", c.ExpireSubscriptions)

	// Ledger
	h.Get("/wallets/:id/reconcile", c.ReconcileWallet)
}

// @Summary Run one revenue distribution cycle now
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.DistributionRunResponse
// @Router /api/admin/revenue/distribute [post]
func (c *adminController) DistributeRevenue(ctx *fiber.Ctx) error {
	res, err := c.service.DistributeRevenue(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Distribution cycle finished", res))
}

// @Summary List revenue distributions
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param period query string false "today, week, month, year or all"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.RevenueListResponse
// @Router /api/admin/revenue [get]
func (c *adminController) GetDistributions(ctx *fiber.Ctx) error {
	var req dto.RevenueListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.GetDistributions(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Revenue distributions", res))
}

func (c *adminController) GetRevenueSummary(ctx *fiber.Ctx) error {
	res, err := c.service.GetRevenueSummary(ctx.UserContext(), ctx.Query("period"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Revenue summary", res))
}

func (c *adminController) ResetUsageCounters(ctx *fiber.Ctx) error {
	res, err := c.service.ResetUsageCounters(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Usage counters reset", res))
}

func (c *adminController) ExpireSubscriptions(ctx *fiber.Ctx) error {
	res, err := c.service.ExpireSubscriptions(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Expired subscriptions deactivated", res))
}

// @Summary Replay a wallet's log against its stored balance
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Wallet ID"
// @Success 200 {object} ledger.Reconciliation
// @Router /api/admin/wallets/{id}/reconcile [get]
func (c *adminController) ReconcileWallet(ctx *fiber.Ctx) error {
	walletId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid wallet ID"))
	}

	res, err := c.service.ReconcileWallet(ctx.UserContext(), walletId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Wallet reconciliation", res))
}
