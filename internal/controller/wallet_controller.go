package controller

import (
	"eventhub-accounting-be/internal/dto"
	"eventhub-accounting-be/internal/pkg/serverutils"
	"eventhub-accounting-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWalletController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	GetWallet(ctx *fiber.Ctx) error
	GetTransactions(ctx *fiber.Ctx) error
}

type walletController struct {
	service service.WalletService
}

func NewWalletController(service service.WalletService) IWalletController {
	return &walletController{service: service}
}

func (c *walletController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/wallet", jwtMiddleware)
	h.Get("/", c.GetWallet)
	h.Get("/transactions", c.GetTransactions)
}

// @Summary Get the caller's wallet
// @Tags Wallet
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.WalletResponse
// @Router /api/wallet [get]
func (c *walletController) GetWallet(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetWallet(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Wallet retrieved", res))
}

// @Summary List wallet transactions, oldest first
// @Tags Wallet
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} dto.WalletTransactionListResponse
// @Router /api/wallet/transactions [get]
func (c *walletController) GetTransactions(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	var req dto.WalletTransactionListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.GetTransactions(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Wallet transactions", res))
}
