package identity

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
	// Patients are visible to staff; only admin and reception manage them.
	pacientes := api.Group("/pacientes")
	pacientes.GET("", h.ListPatients, auth.RequireRole(auth.RoleAdmin, auth.RoleReceptionist, auth.RoleDoctor))
	pacientes.GET("/:id", h.GetPatient, auth.RequireRole(auth.RoleAdmin, auth.RoleReceptionist, auth.RoleDoctor))
	pacientes.POST("", h.CreatePatient, auth.RequireRole(auth.RoleAdmin, auth.RoleReceptionist))
	pacientes.PUT("/:id", h.UpdatePatient, auth.RequireRole(auth.RoleAdmin, auth.RoleReceptionist))
	pacientes.DELETE("/:id", h.DeletePatient, auth.RequireRole(auth.RoleAdmin))

	// Doctors are readable by any authenticated user; only admin manages them.
	medicos := api.Group("/medicos")
	medicos.GET("", h.ListDoctors)
	medicos.GET("/:id", h.GetDoctor)
	medicos.POST("", h.CreateDoctor, auth.RequireRole(auth.RoleAdmin))
	medicos.PUT("/:id", h.UpdateDoctor, auth.RequireRole(auth.RoleAdmin))
	medicos.DELETE("/:id", h.DeleteDoctor, auth.RequireRole(auth.RoleAdmin))
}

// -- Patient Handlers --

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return err
	}
	return response.Created(c, "patient created", p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, "patient", p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{
		"name":   c.QueryParam("name"),
		"dni":    c.QueryParam("dni"),
		"active": c.QueryParam("active"),
	}
	patients, total, err := h.svc.SearchPatients(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return response.OK(c, "patients", pagination.NewPage(patients, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var p Patient
	if err := c.Bind(&p); err != nil {
		return apperr.Validation("invalid request body")
	}
	p.ID = id
	if err := h.svc.UpdatePatient(c.Request().Context(), &p); err != nil {
		return err
	}
	return response.OK(c, "patient updated", p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return err
	}
	return response.OK(c, "patient deleted", nil)
}

// -- Doctor Handlers --

func (h *Handler) CreateDoctor(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.CreateDoctor(c.Request().Context(), &d); err != nil {
		return err
	}
	return response.Created(c, "doctor created", d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, "doctor", d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{
		"name":      c.QueryParam("name"),
		"specialty": c.QueryParam("specialty"),
		"active":    c.QueryParam("active"),
	}
	doctors, total, err := h.svc.SearchDoctors(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return response.OK(c, "doctors", pagination.NewPage(doctors, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return apperr.Validation("invalid request body")
	}
	d.ID = id
	if err := h.svc.UpdateDoctor(c.Request().Context(), &d); err != nil {
		return err
	}
	return response.OK(c, "doctor updated", d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return err
	}
	return response.OK(c, "doctor deleted", nil)
}
