package users

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/auth"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/response"
	"github.com/lino07w/sistema-clinica-sub000/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	usuarios := api.Group("/usuarios", auth.RequireRole(auth.RoleAdmin))
	usuarios.GET("", h.List)
	usuarios.GET("/:id", h.Get)
	usuarios.POST("", h.Create)
	usuarios.PUT("/:id", h.Update)
	usuarios.DELETE("/:id", h.Delete)
	usuarios.POST("/:id/aprobar", h.Approve)
	usuarios.POST("/:id/rechazar", h.Reject)
	usuarios.PUT("/:id/estado", h.SetStatus)
}

type createUserRequest struct {
	Email    string  `json:"email"`
	Username *string `json:"username"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	DNI      string  `json:"dni"`
	Phone    *string `json:"phone"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	u, err := h.svc.Create(c.Request().Context(), CreateParams{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Role:     auth.Role(req.Role),
		DNI:      req.DNI,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return response.Created(c, "user created", u)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, "user", u)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{
		"role":   c.QueryParam("role"),
		"status": c.QueryParam("status"),
		"name":   c.QueryParam("name"),
	}
	users, total, err := h.svc.List(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return response.OK(c, "users", pagination.NewPage(users, total, pg.Limit, pg.Offset))
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
	Role     *string `json:"role"`
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	params := UpdateParams{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
	}
	if req.Role != nil {
		role := auth.Role(*req.Role)
		params.Role = &role
	}
	u, err := h.svc.Update(c.Request().Context(), id, params)
	if err != nil {
		return err
	}
	return response.OK(c, "user updated", u)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return response.OK(c, "user deleted", nil)
}

func (h *Handler) Approve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	u, err := h.svc.Approve(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, "user approved", u)
}

func (h *Handler) Reject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	u, err := h.svc.Reject(c.Request().Context(), id, req.Reason)
	if err != nil {
		return err
	}
	return response.OK(c, "user rejected", u)
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	u, err := h.svc.SetStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return response.OK(c, "user status updated", u)
}
