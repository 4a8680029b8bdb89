package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArmaniKE/clinic-back/internal/model"
	"github.com/ArmaniKE/clinic-back/internal/repository"
)

func patientResp(p model.Patient) echo.Map {
	var birth *string
	if p.BirthDate != nil {
		s := p.BirthDate.Format("2006-01-02")
		birth = &s
	}
	return echo.Map{
		"id":         p.ID,
		"user_id":    p.UserID,
		"birth_date": birth,
		"address":    p.Address,
	}
}

// PatientHandler serves the patient roster (admin) and the self-profile
// endpoints (patient).
type PatientHandler struct {
	Patients *repository.PatientRepo
	Users    *repository.UserRepo
}

// List returns the full roster. Admin only.
func (h *PatientHandler) List(c echo.Context) error {
	out, err := h.Patients.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list patients"})
	}
	if out == nil {
		out = []repository.PatientDetail{}
	}
	return c.JSON(http.StatusOK, out)
}

type patientRequest struct {
	UserID    uint64  `json:"user_id"`
	BirthDate *string `json:"birth_date"`
	Address   *string `json:"address"`
}

// Create attaches a patient profile to an existing user.
func (h *PatientHandler) Create(c echo.Context) error {
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "birth_date must be YYYY-MM-DD"})
	}
	p, err := h.Patients.Create(c.Request().Context(), req.UserID, birthDate, req.Address)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create patient"})
	}
	return c.JSON(http.StatusCreated, patientResp(p))
}

// Update rewrites the profile columns for the given user id.
func (h *PatientHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "birth_date must be YYYY-MM-DD"})
	}
	p, err := h.Patients.UpdateByUserID(c.Request().Context(), id, birthDate, req.Address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update patient"})
	}
	return c.JSON(http.StatusOK, patientResp(p))
}

// Delete removes the patient, their appointments and their user account.
func (h *PatientHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Patients.DeleteCascadeByUserID(c.Request().Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete patient"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Me returns the authenticated patient's own profile. A missing profile
// row is provisioned empty on first read so the endpoint never 404s for a
// valid account.
func (h *PatientHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	p, err := h.Patients.GetByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		if err := h.Patients.Upsert(ctx, userID, nil, nil); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load profile"})
		}
		p, err = h.Patients.GetByUserID(ctx, userID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load profile"})
	}
	return c.JSON(http.StatusOK, p)
}

type updateMeRequest struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"`
	Address   *string `json:"address"`
}

// UpdateMe merges the supplied fields into the patient's account and
// profile. Omitted fields keep their current values.
func (h *PatientHandler) UpdateMe(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateMeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "birth_date must be YYYY-MM-DD"})
	}

	ctx := c.Request().Context()
	if err := h.Users.MergeProfile(ctx, userID, req.FullName, req.Phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update profile"})
	}
	if err := h.Patients.Upsert(ctx, userID, birthDate, req.Address); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update profile"})
	}

	p, err := h.Patients.GetByUserID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load profile"})
	}
	return c.JSON(http.StatusOK, p)
}
