package medicalrecord

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
	historial := api.Group("/historial", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
	historial.GET("", h.List)
	historial.GET("/:id", h.Get)
	historial.POST("", h.Create)
	historial.PUT("/:id", h.Update)
	historial.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))
}

type recordRequest struct {
	PatientID    *uuid.UUID `json:"patient_id"`
	DoctorID     *uuid.UUID `json:"doctor_id"`
	Date         *string    `json:"date"`
	Diagnosis    *string    `json:"diagnosis"`
	Treatment    *string    `json:"treatment"`
	Prescription *string    `json:"prescription"`
	Attachments  []string   `json:"attachments"`
	Notes        *string    `json:"notes"`
}

func parseRecordDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid medical record",
			apperr.FieldError{Field: "date", Message: "date must be YYYY-MM-DD"})
	}
	return d, nil
}

func (h *Handler) Create(c echo.Context) error {
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	rec := Record{
		Treatment:    req.Treatment,
		Prescription: req.Prescription,
		Attachments:  req.Attachments,
		Notes:        req.Notes,
	}
	if req.PatientID != nil {
		rec.PatientID = *req.PatientID
	}
	if req.DoctorID != nil {
		rec.DoctorID = *req.DoctorID
	}
	if req.Diagnosis != nil {
		rec.Diagnosis = *req.Diagnosis
	}
	if req.Date != nil {
		d, err := parseRecordDate(*req.Date)
		if err != nil {
			return err
		}
		rec.Date = d
	}

	if err := h.svc.Create(c.Request().Context(), &rec); err != nil {
		return err
	}
	return response.Created(c, "medical record created", rec)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, "medical record", rec)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{
		"patient_id": c.QueryParam("patient_id"),
		"doctor_id":  c.QueryParam("doctor_id"),
	}
	records, total, err := h.svc.List(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return response.OK(c, "medical records", pagination.NewPage(records, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if req.PatientID != nil {
		rec.PatientID = *req.PatientID
	}
	if req.DoctorID != nil {
		rec.DoctorID = *req.DoctorID
	}
	if req.Diagnosis != nil {
		rec.Diagnosis = *req.Diagnosis
	}
	if req.Date != nil {
		d, err := parseRecordDate(*req.Date)
		if err != nil {
			return err
		}
		rec.Date = d
	}
	if req.Treatment != nil {
		rec.Treatment = req.Treatment
	}
	if req.Prescription != nil {
		rec.Prescription = req.Prescription
	}
	if req.Attachments != nil {
		rec.Attachments = req.Attachments
	}
	if req.Notes != nil {
		rec.Notes = req.Notes
	}

	if err := h.svc.Update(c.Request().Context(), rec); err != nil {
		return err
	}
	return response.OK(c, "medical record updated", rec)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return response.OK(c, "medical record deleted", nil)
}
