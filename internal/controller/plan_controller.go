package controller

import (
	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/pkg/serverutils"
	"visionvoice-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPlanController interface {
	RegisterRoutes(r fiber.Router, sessionMW fiber.Handler)
	GetPlans(ctx *fiber.Ctx) error
	SelectPlan(ctx *fiber.Ctx) error
	GetUsage(ctx *fiber.Ctx) error
}

type planController struct {
	tiers    service.ITierService
	users    service.IUserService
	sessions service.ISessionService
	workflow service.IWorkflowService
}

func NewPlanController(tiers service.ITierService, users service.IUserService, sessions service.ISessionService, workflow service.IWorkflowService) IPlanController {
	return &planController{
		tiers:    tiers,
		users:    users,
		sessions: sessions,
		workflow: workflow,
	}
}

func (c *planController) RegisterRoutes(r fiber.Router, sessionMW fiber.Handler) {
	h := r.Group("/plans")
	h.Get("/", c.GetPlans)
	h.Post("/select", sessionMW, c.SelectPlan)

	r.Get("/usage", sessionMW, c.GetUsage)
}

// GetPlans lists the tier catalog. Anonymous access is fine; the current
// flag is only set when a session token is supplied.
func (c *planController) GetPlans(ctx *fiber.Ctx) error {
	var current entity.TierID
	if session, ok := ctx.Locals(serverutils.SessionLocalKey).(*entity.UserSession); ok && session.HasTier() {
		current = *session.Tier
	}

	tiers := c.tiers.Tiers()
	res := make([]dto.TierResponse, 0, len(tiers))
	for _, t := range tiers {
		features := make([]string, 0, len(t.Features))
		for _, f := range t.Features {
			features = append(features, string(f))
		}
		res = append(res, dto.TierResponse{
			ID:          string(t.ID),
			Name:        t.Name,
			MonthlyCost: t.MonthlyCost,
			UploadLimit: t.UploadLimit,
			Features:    features,
			IsCurrent:   t.ID == current,
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("Plans", res))
}

func (c *planController) SelectPlan(ctx *fiber.Ctx) error {
	session := ctx.Locals(serverutils.SessionLocalKey).(*entity.UserSession)

	var req dto.SelectTierRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.users.SelectTier(ctx.Context(), session, entity.TierID(req.Tier)); err != nil {
		return err
	}
	if err := c.sessions.Save(ctx.Context(), session); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Plan selected", sessionResponse(session)))
}

func (c *planController) GetUsage(ctx *fiber.Ctx) error {
	session := ctx.Locals(serverutils.SessionLocalKey).(*entity.UserSession)

	res, err := c.workflow.UsageStatus(session)
	// The usage check may have reset an expired window; persist that.
	if saveErr := c.sessions.Save(ctx.Context(), session); saveErr != nil && err == nil {
		err = saveErr
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Usage", res))
}
