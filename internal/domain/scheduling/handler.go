package scheduling

import (
	"time"

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
	citas := api.Group("/citas")
	citas.GET("", h.List)
	citas.GET("/stats", h.Stats)
	citas.GET("/:id", h.Get)
	citas.POST("", h.Create, auth.RequireRole(auth.RoleAdmin, auth.RoleReceptionist))
	citas.PUT("/:id", h.Update, auth.RequireRole(auth.RoleAdmin, auth.RoleReceptionist, auth.RoleDoctor))
	citas.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin, auth.RoleReceptionist))
}

// appointmentRequest is the wire shape for create and update. Date travels as
// YYYY-MM-DD; pointers distinguish absent fields on partial updates.
type appointmentRequest struct {
	PatientID *uuid.UUID `json:"patient_id"`
	DoctorID  *uuid.UUID `json:"doctor_id"`
	Date      *string    `json:"date"`
	Time      *string    `json:"time"`
	Reason    *string    `json:"reason"`
	Status    *string    `json:"status"`
	Notes     *string    `json:"notes"`
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid appointment",
			apperr.FieldError{Field: "date", Message: "date must be YYYY-MM-DD"})
	}
	return d, nil
}

func (h *Handler) Create(c echo.Context) error {
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	a := Appointment{}
	if req.PatientID != nil {
		a.PatientID = *req.PatientID
	}
	if req.DoctorID != nil {
		a.DoctorID = *req.DoctorID
	}
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			return err
		}
		a.Date = d
	}
	if req.Time != nil {
		a.Time = *req.Time
	}
	if req.Reason != nil {
		a.Reason = *req.Reason
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
	a.Notes = req.Notes

	if err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return err
	}
	return response.Created(c, "appointment created", a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	a, err := h.svc.Get(c.Request().Context(), p.Scope(), id)
	if err != nil {
		return err
	}
	return response.OK(c, "appointment", a)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	p, _ := auth.PrincipalFromContext(c.Request().Context())

	var f Filter
	if v := c.QueryParam("date"); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return err
		}
		f.Date = &d
	}
	if v := c.QueryParam("status"); v != "" {
		f.Status = v
	}
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperr.Validation("invalid patient_id")
		}
		f.PatientID = &id
	}
	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperr.Validation("invalid doctor_id")
		}
		f.DoctorID = &id
	}

	appts, total, err := h.svc.List(c.Request().Context(), p.Scope(), f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return response.OK(c, "appointments", pagination.NewPage(appts, total, pg.Limit, pg.Offset))
}

func (h *Handler) Stats(c echo.Context) error {
	p, _ := auth.PrincipalFromContext(c.Request().Context())
	st, err := h.svc.Stats(c.Request().Context(), p.Scope())
	if err != nil {
		return err
	}
	return response.OK(c, "appointment stats", st)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	p, _ := auth.PrincipalFromContext(c.Request().Context())

	var params UpdateParams
	if p.Role == auth.RoleDoctor {
		// Doctors may only move the status; every other submitted field is
		// dropped before it reaches the service.
		params = UpdateParams{Status: req.Status}
	} else {
		params = UpdateParams{
			PatientID: req.PatientID,
			DoctorID:  req.DoctorID,
			Time:      req.Time,
			Reason:    req.Reason,
			Status:    req.Status,
			Notes:     req.Notes,
		}
		if req.Date != nil {
			d, err := parseDate(*req.Date)
			if err != nil {
				return err
			}
			params.Date = &d
		}
	}

	a, err := h.svc.Update(c.Request().Context(), p.Scope(), id, params)
	if err != nil {
		return err
	}
	return response.OK(c, "appointment updated", a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return response.OK(c, "appointment deleted", nil)
}
