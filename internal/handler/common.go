package handler // handler defines http handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ArmaniKE/clinic-back/internal/model"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64. The JWT middleware stores the raw claim, which arrives as a
// float64 after JSON decoding, so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole returns the role claim stored by the JWT middleware.
func getRole(c echo.Context) string {
	if r, ok := c.Get("role").(string); ok {
		return r
	}
	return ""
}

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// parseDate converts an optional YYYY-MM-DD string into a *time.Time.
func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// validSlot reports whether date and time-of-day strings are well formed
// (YYYY-MM-DD and HH:MM).
func validSlot(date, timeOfDay string) bool {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return false
	}
	if _, err := time.Parse("15:04", timeOfDay); err != nil {
		return false
	}
	return true
}

// apptResp is the wire shape of one appointment row, shared by the booking
// endpoints and the push channel payloads.
type apptResp struct {
	ID        uint64 `json:"id"`
	PatientID uint64 `json:"patient_id"`
	DoctorID  uint64 `json:"doctor_id"`
	ServiceID uint64 `json:"service_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
}

func toApptResp(a model.Appointment) apptResp {
	return apptResp{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		ServiceID: a.ServiceID,
		Date:      a.Date,
		Time:      a.Time,
		Reason:    a.Reason,
		Status:    a.Status,
	}
}
