package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

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
	facturas := api.Group("/facturas", auth.RequireRole(auth.RoleAdmin, auth.RoleReceptionist))
	facturas.GET("", h.List)
	facturas.GET("/resumen", h.Summarize)
	facturas.GET("/:id", h.Get)
	facturas.POST("", h.Create)
	facturas.PUT("/:id", h.Update)
	facturas.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin))
}

// invoiceRequest is the wire shape for create and update. Amount arrives as a
// string so clients never round it through a float.
type invoiceRequest struct {
	PatientID   *uuid.UUID `json:"patient_id"`
	PatientName string     `json:"patient_name"`
	Concept     string     `json:"concept"`
	Amount      string     `json:"amount"`
	Date        string     `json:"date"`
	Status      string     `json:"status"`
}

func (req *invoiceRequest) toInvoice() (*Invoice, error) {
	inv := &Invoice{
		PatientID:   req.PatientID,
		PatientName: req.PatientName,
		Concept:     req.Concept,
		Status:      req.Status,
	}
	if req.Amount != "" {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return nil, apperr.Validation("invalid invoice",
				apperr.FieldError{Field: "amount", Message: "amount must be a decimal number"})
		}
		inv.Amount = amount
	}
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, apperr.Validation("invalid invoice",
				apperr.FieldError{Field: "date", Message: "date must be YYYY-MM-DD"})
		}
		inv.Date = d
	}
	return inv, nil
}

func (h *Handler) Create(c echo.Context) error {
	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	inv, err := req.toInvoice()
	if err != nil {
		return err
	}
	if err := h.svc.Create(c.Request().Context(), inv); err != nil {
		return err
	}
	return response.Created(c, "invoice created", inv)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	inv, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, "invoice", inv)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{
		"status":       c.QueryParam("status"),
		"patient_id":   c.QueryParam("patient_id"),
		"patient_name": c.QueryParam("patient_name"),
	}
	invoices, total, err := h.svc.List(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return response.OK(c, "invoices", pagination.NewPage(invoices, total, pg.Limit, pg.Offset))
}

func (h *Handler) Summarize(c echo.Context) error {
	sum, err := h.svc.Summarize(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, "invoice summary", sum)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	inv, err := req.toInvoice()
	if err != nil {
		return err
	}
	inv.ID = id
	if err := h.svc.Update(c.Request().Context(), inv); err != nil {
		return err
	}
	return response.OK(c, "invoice updated", inv)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return response.OK(c, "invoice deleted", nil)
}
