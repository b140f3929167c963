package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/virendra-maker/urmaxx-clone/internal/middleware"
	"github.com/virendra-maker/urmaxx-clone/internal/procedures"
	"github.com/virendra-maker/urmaxx-clone/internal/utils"
)

// Logs handles GET /api/trpc/admin.logs
// @Summary Admin activity log
// @Description Most recent catalog mutations, newest first
// @Tags admin
// @Produce json
// @Param input query string false "JSON input, e.g. {\"limit\":50}"
// @Success 200 {object} utils.ResultResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /trpc/admin.logs [get]
func (h *ProcedureHandler) Logs(c *fiber.Ctx) error {
	var in procedures.LogsInput
	if err := queryInput(c, &in); err != nil {
		return err
	}

	logs, err := h.Procs.Logs(c.UserContext(), middleware.CallerFrom(c), in)
	if err != nil {
		return err
	}
	return utils.ResultResponse(c, logs)
}
