package controller

import (
	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/pkg/serverutils"
	"visionvoice-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPaymentController interface {
	RegisterRoutes(r fiber.Router, sessionMW fiber.Handler)
	Checkout(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
}

type paymentController struct {
	service service.IPaymentService
}

func NewPaymentController(service service.IPaymentService) IPaymentController {
	return &paymentController{service: service}
}

func (c *paymentController) RegisterRoutes(r fiber.Router, sessionMW fiber.Handler) {
	h := r.Group("/payments")
	// The webhook is authenticated by its signature, not a session
	h.Post("/notification", c.Webhook)
	h.Post("/checkout", sessionMW, c.Checkout)
}

func (c *paymentController) Checkout(ctx *fiber.Ctx) error {
	session := ctx.Locals(serverutils.SessionLocalKey).(*entity.UserSession)

	var req dto.CheckoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Checkout(ctx.Context(), session, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout created", res))
}

func (c *paymentController) Webhook(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.service.HandleNotification(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Notification processed", nil))
}
