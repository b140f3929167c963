package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/virendra-maker/urmaxx-clone/internal/procedures"
	"github.com/virendra-maker/urmaxx-clone/internal/session"
	"github.com/virendra-maker/urmaxx-clone/internal/utils"
)

// ProcedureHandler maps the procedures onto /trpc/<namespace>.<name>
type ProcedureHandler struct {
	Procs      *procedures.Procedures
	Sessions   *session.Manager
	CookieName string
}

// Routes registers every procedure on r. loginGuards run before admin.login.
func (h *ProcedureHandler) Routes(r fiber.Router, loginGuards ...fiber.Handler) {
	trpc := r.Group("/trpc")

	trpc.Get("/auth.me", h.Me)
	trpc.Post("/auth.logout", h.Logout)

	trpc.Get("/apks.getAll", h.GetAll)
	trpc.Get("/apks.getById", h.GetByID)
	trpc.Post("/apks.create", h.Create)
	trpc.Post("/apks.update", h.Update)
	trpc.Post("/apks.delete", h.Delete)

	login := append(append([]fiber.Handler{}, loginGuards...), h.Login)
	trpc.Post("/admin.login", login...)
	trpc.Get("/admin.logs", h.Logs)

	trpc.All("/*", func(c *fiber.Ctx) error {
		path := strings.TrimPrefix(c.Params("*"), "/")
		return utils.NotFoundResponse(c, fmt.Sprintf("No \"%s\"-procedure on path \"%s\"", strings.ToLower(c.Method()), path))
	})
}
