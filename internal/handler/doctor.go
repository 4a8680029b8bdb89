package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArmaniKE/clinic-back/internal/model"
	"github.com/ArmaniKE/clinic-back/internal/repository"
)

func doctorResp(d model.Doctor) echo.Map {
	return echo.Map{
		"id":             d.ID,
		"user_id":        d.UserID,
		"specialization": d.Specialization,
		"room":           d.Room,
		"notes":          d.Notes,
	}
}

// DoctorHandler serves the doctor directory and its admin CRUD.
type DoctorHandler struct {
	Doctors *repository.DoctorRepo
}

// List is the public directory, no auth required.
func (h *DoctorHandler) List(c echo.Context) error {
	out, err := h.Doctors.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list doctors"})
	}
	if out == nil {
		out = []repository.DoctorDetail{}
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one doctor profile with notes.
func (h *DoctorHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	d, err := h.Doctors.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "doctor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load doctor"})
	}
	return c.JSON(http.StatusOK, d)
}

type doctorRequest struct {
	UserID         uint64  `json:"user_id"`
	Specialization *string `json:"specialization"`
	Room           *string `json:"room"`
	Notes          *string `json:"notes"`
}

// Create attaches a doctor profile to an existing user.
func (h *DoctorHandler) Create(c echo.Context) error {
	var req doctorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	d, err := h.Doctors.Create(c.Request().Context(), req.UserID, req.Specialization, req.Room, req.Notes)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create doctor"})
	}
	return c.JSON(http.StatusCreated, doctorResp(d))
}

// Update rewrites the profile columns. The :id here is the doctor's user
// id, matching how the appointment rows reference doctors.
func (h *DoctorHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req doctorRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	d, err := h.Doctors.UpdateByUserID(c.Request().Context(), id, req.Specialization, req.Room)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "doctor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update doctor"})
	}
	return c.JSON(http.StatusOK, doctorResp(d))
}

// Delete removes the doctor, their appointments and their user account.
func (h *DoctorHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Doctors.DeleteCascadeByUserID(c.Request().Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "doctor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete doctor"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
