package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ArmaniKE/clinic-back/internal/model"
	"github.com/ArmaniKE/clinic-back/internal/notify"
	"github.com/ArmaniKE/clinic-back/internal/queue"
	"github.com/ArmaniKE/clinic-back/internal/repository"
)

// AppointmentHandler serves the booking endpoints. Writes fan out to the
// notifier after commit; a notification failure never fails the request.
type AppointmentHandler struct {
	Appts    *repository.AppointmentRepo
	Users    *repository.UserRepo
	Services *repository.ServiceRepo
	Notifier *notify.Notifier
}

type createAppointmentRequest struct {
	DoctorID  uint64 `json:"doctor_id"`
	ServiceID uint64 `json:"service_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Reason    string `json:"reason"`
}

// Create books a slot for the authenticated patient.
func (h *AppointmentHandler) Create(c echo.Context) error {
	patientID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req createAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.DoctorID == 0 || req.ServiceID == 0 || req.Date == "" || req.Time == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "doctor_id, service_id, date and time are required"})
	}
	if !validSlot(req.Date, req.Time) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD and time HH:MM"})
	}

	ctx := c.Request().Context()
	appt, err := h.Appts.Create(ctx, patientID, req.DoctorID, req.ServiceID, req.Date, req.Time, strings.TrimSpace(req.Reason))
	if err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already taken"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create appointment"})
	}

	resp := toApptResp(appt)
	h.Notifier.AppointmentCreated(resp, h.createdJob(c, appt))
	return c.JSON(http.StatusCreated, resp)
}

// createdJob resolves the contact details for the confirmation email. Any
// lookup failure leaves the recipient empty, which skips the email.
func (h *AppointmentHandler) createdJob(c echo.Context, appt model.Appointment) queue.EmailJob {
	ctx := c.Request().Context()
	job := queue.EmailJob{Date: appt.Date, Time: appt.Time}

	patient, err := h.Users.GetByID(ctx, appt.PatientID)
	if err != nil {
		return job
	}
	job.To = patient.Email
	job.Name = patient.FullName

	if doc, err := h.Users.GetByID(ctx, appt.DoctorID); err == nil {
		job.DoctorName = doc.FullName
	}
	if svc, err := h.Services.GetByID(ctx, appt.ServiceID); err == nil {
		job.ServiceName = svc.Name
	}
	return job
}

type updateAppointmentRequest struct {
	Date   *string `json:"date"`
	Time   *string `json:"time"`
	Reason *string `json:"reason"`
	Status *string `json:"status"`
}

// Update applies a partial edit. Patients may reschedule their own
// appointments but never touch status; doctors manage status on their own
// schedule; admins edit anything.
func (h *AppointmentHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role := getRole(c)

	var req updateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	cur, err := h.Appts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load appointment"})
	}

	switch role {
	case model.RolePatient:
		if cur.PatientID != userID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		if req.Status != nil {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "patients cannot change status"})
		}
	case model.RoleDoctor:
		if cur.DoctorID != userID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}

	if req.Status != nil {
		if !model.ValidStatus(*req.Status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		// Cancelled is terminal; the row stays as history.
		if cur.Status == model.StatusCancelled && *req.Status != model.StatusCancelled {
			return c.JSON(http.StatusConflict, echo.Map{"error": "appointment already cancelled"})
		}
	}
	if req.Date != nil && !validSlot(*req.Date, "00:00") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if req.Time != nil && !validSlot("2000-01-01", *req.Time) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be HH:MM"})
	}

	appt, err := h.Appts.UpdatePartial(ctx, id, repository.AppointmentUpdate{
		Date:   req.Date,
		Time:   req.Time,
		Reason: req.Reason,
		Status: req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoFields):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
		case errors.Is(err, repository.ErrSlotTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already taken"})
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update appointment"})
		}
	}

	resp := toApptResp(appt)
	h.Notifier.AppointmentUpdated(resp)
	return c.JSON(http.StatusOK, resp)
}

// Cancel soft-cancels an appointment. The row survives with
// status=cancelled; cancelling twice reports not found.
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role := getRole(c)

	ctx := c.Request().Context()
	cur, err := h.Appts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load appointment"})
	}
	if role == model.RolePatient && cur.PatientID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if role == model.RoleDoctor && cur.DoctorID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	appt, err := h.Appts.SoftCancel(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyCancelled):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment already cancelled"})
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not cancel appointment"})
		}
	}

	resp := toApptResp(appt)
	h.Notifier.AppointmentCancelled(resp, h.cancelledJob(c, appt))
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "appointment": resp})
}

// cancelledJob builds the email that tells the doctor their slot freed up.
func (h *AppointmentHandler) cancelledJob(c echo.Context, appt model.Appointment) queue.EmailJob {
	ctx := c.Request().Context()
	job := queue.EmailJob{Date: appt.Date, Time: appt.Time}

	doc, err := h.Users.GetByID(ctx, appt.DoctorID)
	if err != nil {
		return job
	}
	job.To = doc.Email
	job.Name = doc.FullName

	if patient, err := h.Users.GetByID(ctx, appt.PatientID); err == nil {
		job.PatientName = patient.FullName
	}
	return job
}

// ListMine returns the authenticated patient's appointments.
func (h *AppointmentHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	out, err := h.Appts.ListByPatient(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list appointments"})
	}
	if out == nil {
		out = []repository.AppointmentDetail{}
	}
	return c.JSON(http.StatusOK, out)
}

// ListForDoctor returns the schedule of one doctor. A doctor may only read
// their own schedule; admins may read any.
func (h *AppointmentHandler) ListForDoctor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if getRole(c) == model.RoleDoctor && userID != id {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	out, err := h.Appts.ListByDoctor(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list appointments"})
	}
	if out == nil {
		out = []repository.AppointmentDetail{}
	}
	return c.JSON(http.StatusOK, out)
}

// List returns appointments with an optional patient_id filter. Patients
// are pinned to their own rows regardless of the query string.
func (h *AppointmentHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var filter *uint64
	if getRole(c) == model.RolePatient {
		filter = &userID
	} else if q := c.QueryParam("patient_id"); q != "" {
		pid, err := strconv.ParseUint(q, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid patient_id"})
		}
		filter = &pid
	}

	out, err := h.Appts.List(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list appointments"})
	}
	if out == nil {
		out = []repository.AppointmentDetail{}
	}
	return c.JSON(http.StatusOK, out)
}

// ListAll returns every appointment for the admin view.
func (h *AppointmentHandler) ListAll(c echo.Context) error {
	out, err := h.Appts.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list appointments"})
	}
	if out == nil {
		out = []repository.AppointmentDetail{}
	}
	return c.JSON(http.StatusOK, out)
}
