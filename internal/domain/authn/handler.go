package authn

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

// RegisterRoutes mounts the public authentication endpoints.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/verify", h.Verify)
	authGroup.POST("/forgot-password", h.ForgotPassword)
	authGroup.POST("/reset-password/:token", h.ResetPassword)
}

func (h *Handler) Login(c echo.Context) error {
	var req struct {
		UsernameOrEmail string `json:"usernameOrEmail"`
		Password        string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.UsernameOrEmail == "" || req.Password == "" {
		return apperr.Validation("usernameOrEmail and password are required")
	}

	u, token, err := h.svc.Login(c.Request().Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		return err
	}
	return response.OK(c, "login successful", echo.Map{
		"token": token,
		"user":  u,
	})
}

func (h *Handler) Register(c echo.Context) error {
	var req struct {
		Email    string  `json:"email"`
		Username *string `json:"username"`
		Password string  `json:"password"`
		Name     string  `json:"name"`
		Role     string  `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	u, err := h.svc.Register(c.Request().Context(), RegisterParams{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Role:     auth.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return response.Created(c, "registration received, awaiting approval", u)
}

func (h *Handler) Verify(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	u, err := h.svc.Verify(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}
	return response.OK(c, "token valid", u)
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return response.OK(c, "if the account exists, a reset email has been sent", nil)
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.ResetPassword(c.Request().Context(), c.Param("token"), req.Password); err != nil {
		return err
	}
	return response.OK(c, "password updated", nil)
}
