package controller

import (
	"visionvoice-be/internal/dto"
	"visionvoice-be/internal/entity"
	"visionvoice-be/internal/pkg/serverutils"
	"visionvoice-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router, sessionMW fiber.Handler)
	Login(ctx *fiber.Ctx) error
	DevLogin(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
	Session(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type authController struct {
	oauth    service.IOAuthService
	sessions service.ISessionService
	users    service.IUserService
}

func NewAuthController(oauth service.IOAuthService, sessions service.ISessionService, users service.IUserService) IAuthController {
	return &authController{
		oauth:    oauth,
		sessions: sessions,
		users:    users,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router, sessionMW fiber.Handler) {
	h := r.Group("/auth")
	h.Get("/login", c.Login)
	h.Post("/dev-login", c.DevLogin)

	h.Get("/callback", sessionMW, c.Callback)
	h.Get("/session", sessionMW, c.Session)
	h.Post("/logout", sessionMW, c.Logout)
}

// Login creates a fresh session and hands back the provider authorization
// URL together with the session token the client must carry from now on.
func (c *authController) Login(ctx *fiber.Ctx) error {
	session, token, err := c.sessions.Create(ctx.Context())
	if err != nil {
		return err
	}

	authURL, err := c.oauth.BeginLogin(session)
	if err != nil {
		return err
	}

	if err := c.sessions.Save(ctx.Context(), session); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Login started", dto.LoginURLResponse{
		AuthorizationURL: authURL,
		SessionToken:     token,
	}))
}

// DevLogin issues an already-authenticated session; the service refuses it
// unless development mode is on.
func (c *authController) DevLogin(ctx *fiber.Ctx) error {
	session, token, err := c.sessions.CreateDev(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Development session created", fiber.Map{
		"session_token": token,
		"session":       sessionResponse(session),
	}))
}

func (c *authController) Callback(ctx *fiber.Ctx) error {
	session := ctx.Locals(serverutils.SessionLocalKey).(*entity.UserSession)

	code := ctx.Query("code")
	state := ctx.Query("state")

	result, err := c.oauth.HandleCallback(ctx.Context(), session, code, state)
	// Save regardless: a failed callback still mutated the session (nonce
	// cleared, replay guard recorded, auth reset).
	if saveErr := c.sessions.Save(ctx.Context(), session); saveErr != nil && err == nil {
		err = saveErr
	}
	if err != nil {
		return err
	}

	if !result.Replayed {
		if err := c.users.SyncOnLogin(ctx.Context(), session); err != nil {
			return err
		}
		if err := c.sessions.Save(ctx.Context(), session); err != nil {
			return err
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Login completed", result))
}

func (c *authController) Session(ctx *fiber.Ctx) error {
	session := ctx.Locals(serverutils.SessionLocalKey).(*entity.UserSession)
	return ctx.JSON(serverutils.SuccessResponse("Session", sessionResponse(session)))
}

// Logout destroys the local session and points the client at the provider's
// end-session page.
func (c *authController) Logout(ctx *fiber.Ctx) error {
	session := ctx.Locals(serverutils.SessionLocalKey).(*entity.UserSession)

	// Resolve the provider URL before destroying anything; a misconfigured
	// provider must not leave the session half torn down.
	logoutURL, err := c.oauth.LogoutURL()
	if err != nil {
		return err
	}

	if err := c.sessions.Destroy(ctx.Context(), session); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Logged out", dto.LogoutResponse{
		LogoutURL: logoutURL,
	}))
}

func sessionResponse(session *entity.UserSession) dto.SessionResponse {
	res := dto.SessionResponse{
		Authenticated: session.Authenticated,
		UploadCount:   session.UploadCount,
	}
	if session.Identity != nil {
		res.Identity = &dto.IdentityDTO{
			Subject: session.Identity.Subject,
			Name:    session.Identity.Name,
			Email:   session.Identity.Email,
		}
	}
	if session.Tier != nil {
		tier := string(*session.Tier)
		res.Tier = &tier
	}
	return res
}
