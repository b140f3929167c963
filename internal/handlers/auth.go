package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/virendra-maker/urmaxx-clone/internal/logging"
	"github.com/virendra-maker/urmaxx-clone/internal/middleware"
	"github.com/virendra-maker/urmaxx-clone/internal/models"
	"github.com/virendra-maker/urmaxx-clone/internal/procedures"
	"github.com/virendra-maker/urmaxx-clone/internal/services"
	"github.com/virendra-maker/urmaxx-clone/internal/utils"
)

const loginMethodPassword = "password"

// Me handles GET /api/trpc/auth.me
// @Summary Current caller
// @Description Returns the caller's resolved identity, or null when anonymous
// @Tags auth
// @Produce json
// @Success 200 {object} utils.ResultResponseStruct
// @Router /trpc/auth.me [get]
func (h *ProcedureHandler) Me(c *fiber.Ctx) error {
	return utils.ResultResponse(c, h.Procs.Me(c.UserContext(), middleware.CallerFrom(c)))
}

// Logout handles POST /api/trpc/auth.logout
// @Summary Sign out
// @Description Clears the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} utils.ResultResponseStruct
// @Router /trpc/auth.logout [post]
func (h *ProcedureHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return utils.ResultResponse(c, h.Procs.Logout(c.UserContext(), middleware.CallerFrom(c)))
}

// Login handles POST /api/trpc/admin.login
// @Summary Admin sign in
// @Description Verifies an admin credential and sets the session cookie
// @Tags admin
// @Accept json
// @Produce json
// @Param body body procedures.LoginInput true "Credential"
// @Success 200 {object} utils.ResultResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Router /trpc/admin.login [post]
func (h *ProcedureHandler) Login(c *fiber.Ctx) error {
	var in procedures.LoginInput
	if err := bodyInput(c, &in); err != nil {
		return err
	}

	res, err := h.Procs.Login(c.UserContext(), in)
	if err != nil {
		return err
	}

	if err := h.startSession(c, res.Admin.Username); err != nil {
		return err
	}
	return utils.ResultResponse(c, res)
}

// startSession records the admin sign-in and sets the signed session cookie
func (h *ProcedureHandler) startSession(c *fiber.Ctx, username string) error {
	if !h.Sessions.Enabled() {
		log := logging.Component("http")
		log.Warn().Str("username", username).
			Msg("admin signed in but JWT_SECRET is not set, no session issued")
		return nil
	}

	openID := procedures.AdminOpenIDPrefix + username
	role := models.RoleAdmin
	method := loginMethodPassword
	if _, err := h.Procs.RecordSignIn(c.UserContext(), services.UserUpsert{
		OpenID:      openID,
		Name:        &username,
		LoginMethod: &method,
		Role:        &role,
	}); err != nil {
		return err
	}

	token, err := h.Sessions.Issue(openID, username)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.Sessions.TTL()),
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}
