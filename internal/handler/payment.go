package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ArmaniKE/clinic-back/internal/model"
	"github.com/ArmaniKE/clinic-back/internal/repository"
)

func paymentResp(p model.Payment) echo.Map {
	return echo.Map{
		"id":             p.ID,
		"patient_id":     p.PatientID,
		"appointment_id": p.AppointmentID,
		"amount":         p.Amount,
		"method":         p.Method,
		"status":         p.Status,
		"paid_at":        p.PaidAt,
	}
}

// PaymentHandler serves the billing ledger: admin CRUD plus the patient's
// own history.
type PaymentHandler struct {
	Payments *repository.PaymentRepo
}

// List returns payments, optionally filtered by ?patient_id=. Admin only.
func (h *PaymentHandler) List(c echo.Context) error {
	var filter *uint64
	if q := c.QueryParam("patient_id"); q != "" {
		pid, err := strconv.ParseUint(q, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid patient_id"})
		}
		filter = &pid
	}
	out, err := h.Payments.List(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list payments"})
	}
	if out == nil {
		out = []repository.PaymentDetail{}
	}
	return c.JSON(http.StatusOK, out)
}

// ListForPatient returns one patient's payment history. A patient may only
// read their own; admins may read any.
func (h *PaymentHandler) ListForPatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if getRole(c) == model.RolePatient && userID != id {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	out, err := h.Payments.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list payments"})
	}
	if out == nil {
		out = []repository.PaymentDetail{}
	}
	return c.JSON(http.StatusOK, out)
}

type paymentRequest struct {
	PatientID     uint64  `json:"patient_id"`
	AppointmentID *uint64 `json:"appointment_id"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	Status        string  `json:"status"`
}

// Create records a payment. Method defaults to cash, status to pending;
// paid_at is stamped only when the payment arrives already completed.
func (h *PaymentHandler) Create(c echo.Context) error {
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PatientID == 0 || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "patient_id and a positive amount are required"})
	}
	if req.Method == "" {
		req.Method = "cash"
	}
	if req.Status == "" {
		req.Status = model.PaymentPending
	}
	p, err := h.Payments.Create(c.Request().Context(), req.PatientID, req.AppointmentID, req.Amount, req.Method, req.Status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create payment"})
	}
	return c.JSON(http.StatusCreated, paymentResp(p))
}

// Update rewrites amount, method and status, recomputing paid_at from the
// new status.
func (h *PaymentHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Amount <= 0 || req.Method == "" || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount, method and status are required"})
	}
	p, err := h.Payments.Update(c.Request().Context(), id, req.Amount, req.Method, req.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update payment"})
	}
	return c.JSON(http.StatusOK, paymentResp(p))
}

// Delete removes a payment. Deleting an unknown id still reports ok.
func (h *PaymentHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Payments.Delete(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete payment"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
