package controller

import (
	"eventhub-accounting-be/internal/dto"
	"eventhub-accounting-be/internal/pkg/serverutils"
	"eventhub-accounting-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBookingController interface {
	RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler)
	Checkout(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type bookingController struct {
	service service.BookingService
}

func NewBookingController(service service.BookingService) IBookingController {
	return &bookingController{service: service}
}

func (c *bookingController) RegisterRoutes(r fiber.Router, jwtMiddleware fiber.Handler) {
	h := r.Group("/bookings", jwtMiddleware)
	h.Post("/checkout", c.Checkout)
	h.Post("/cancel", c.Cancel)
}

// Checkout books tickets and collects payment in one transaction. Card
// charges awaiting confirmation answer 202 with the gateway order id.
// @Summary Book tickets
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CheckoutRequest true "Checkout"
// @Success 201 {object} dto.CheckoutResponse
// @Router /api/bookings/checkout [post]
func (c *bookingController) Checkout(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CheckoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.Checkout(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	if res.Pending {
		return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Awaiting payment confirmation", res))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Booking confirmed", res))
}

// @Summary Cancel tickets of a booking and refund to the wallet
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CancelRequest true "Cancellation"
// @Success 200 {object} dto.CancelResponse
// @Router /api/bookings/cancel [post]
func (c *bookingController) Cancel(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserId(ctx)
	if err != nil {
		return err
	}

	var req dto.CancelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.Cancel(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Tickets cancelled", res))
}
