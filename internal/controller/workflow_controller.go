package controller

import (
	"encoding/json"
	"io"

	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/pkg/serverutils"
	"visionvoice-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// 10MB upload ceiling, enforced before the bucket write
const maxUploadBytes = 10 * 1024 * 1024

type IWorkflowController interface {
	RegisterRoutes(r fiber.Router, sessionMW fiber.Handler)
	Upload(ctx *fiber.Ctx) error
}

type workflowController struct {
	workflow service.IWorkflowService
	sessions service.ISessionService
}

func NewWorkflowController(workflow service.IWorkflowService, sessions service.ISessionService) IWorkflowController {
	return &workflowController{
		workflow: workflow,
		sessions: sessions,
	}
}

func (c *workflowController) RegisterRoutes(r fiber.Router, sessionMW fiber.Handler) {
	r.Post("/uploads", sessionMW, c.Upload)
}

// Upload accepts a multipart form: an "image" file plus an optional
// "options" JSON part selecting the transforms.
func (c *workflowController) Upload(ctx *fiber.Ctx) error {
	session := ctx.Locals(serverutils.SessionLocalKey).(*entity.UserSession)

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "image file is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "image exceeds the 10MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	var opts dto.UploadOptions
	if raw := ctx.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid options payload")
		}
	}
	if err := serverutils.ValidateRequest(opts); err != nil {
		return err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := c.workflow.ProcessUpload(ctx.Context(), session, image, contentType, opts)
	// The session mutated even on failure (window reset, quota spent on a
	// degraded run); persist whatever happened.
	if saveErr := c.sessions.Save(ctx.Context(), session); saveErr != nil && err == nil {
		err = saveErr
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Upload processed", result))
}
