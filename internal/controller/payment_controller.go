package controller

import (
	"eventhub-accounting-be/internal/pkg/serverutils"
	"eventhub-accounting-be/internal/service"
	"eventhub-accounting-be/pkg/payment"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router)
	Webhook(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
}

func NewPaymentController(service service.IPaymentService) IPaymentController {
	return &paymentController{service: service}
}

func (c *paymentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/payment")
	h.Post("/midtrans/notification", c.Webhook)
}

// Webhook receives gateway status callbacks. Any non-2xx answer makes the
// gateway retry, so only failures that may succeed later return an error.
// @Summary Midtrans payment notification
// @Tags Payment
// @Accept json
// @Produce json
// @Router /api/payment/midtrans/notification [post]
func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	var req payment.Notification
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	if err := c.service.HandleNotification(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("OK", nil))
}
