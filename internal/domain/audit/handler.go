package audit

import (
	"github.com/labstack/echo/v4"

	"github.com/lino07w/sistema-clinica-sub000/internal/platform/auth"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/response"
	"github.com/lino07w/sistema-clinica-sub000/pkg/pagination"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/auditoria", h.List, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{
		"actor_id":    c.QueryParam("actor_id"),
		"action":      c.QueryParam("action"),
		"entity_type": c.QueryParam("entity_type"),
		"from":        c.QueryParam("from"),
		"to":          c.QueryParam("to"),
	}
	entries, total, err := h.repo.List(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return response.OK(c, "audit log", pagination.NewPage(entries, total, pg.Limit, pg.Offset))
}
