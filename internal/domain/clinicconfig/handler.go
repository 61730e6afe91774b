package clinicconfig

import (
	"github.com/labstack/echo/v4"

	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/auth"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/configuracion", h.Get)
	api.PUT("/configuracion", h.Update, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) Get(c echo.Context) error {
	cfg, err := h.svc.Get(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, "clinic configuration", cfg)
}

func (h *Handler) Update(c echo.Context) error {
	var cfg Config
	if err := c.Bind(&cfg); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.Update(c.Request().Context(), &cfg); err != nil {
		return err
	}
	return response.OK(c, "clinic configuration updated", cfg)
}
